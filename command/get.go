package command

import (
	"github.com/harfangapps/respd/backend"
	"github.com/harfangapps/respd/resp"
)

// Get retrieves the Frame stored under key, or Null if absent.
type Get struct {
	Key string
}

// Execute implements Command.
func (c Get) Execute(b *backend.Backend) resp.Frame {
	if v, ok := b.Get(c.Key); ok {
		return v
	}
	return resp.Null{}
}

func parseGet(arr resp.Array) (Command, error) {
	key, ok := bulkStringArg(arr, 1)
	if !ok {
		return nil, invalidCommand("GET command must have a key")
	}
	return Get{Key: key}, nil
}
