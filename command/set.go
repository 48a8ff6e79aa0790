package command

import (
	"github.com/harfangapps/respd/backend"
	"github.com/harfangapps/respd/resp"
)

// Set stores value under key, overwriting whatever was there.
type Set struct {
	Key   string
	Value resp.Frame
}

// Execute implements Command.
func (c Set) Execute(b *backend.Backend) resp.Frame {
	b.Set(c.Key, c.Value)
	return okFrame
}

func parseSet(arr resp.Array) (Command, error) {
	key, ok := bulkStringArg(arr, 1)
	if !ok {
		return nil, invalidCommand("SET command must have a key")
	}
	val := arg(arr, 2)
	if val == nil {
		return nil, invalidCommand("SET command must have a value")
	}
	return Set{Key: key, Value: val}, nil
}
