package command

import (
	"github.com/harfangapps/respd/backend"
	"github.com/harfangapps/respd/resp"
)

// Unrecognized is any command whose name does not match one of the five
// supported verbs. It is deliberately not an error: the server silently
// accepts it and replies OK, matching a client that probes for commands
// this store does not implement (e.g. a client handshake command).
type Unrecognized struct{}

// Execute implements Command.
func (Unrecognized) Execute(b *backend.Backend) resp.Frame {
	return okFrame
}
