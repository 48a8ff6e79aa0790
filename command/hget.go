package command

import (
	"github.com/harfangapps/respd/backend"
	"github.com/harfangapps/respd/resp"
)

// HGet retrieves the Frame stored under (key, field), or Null if absent.
type HGet struct {
	Key   string
	Field string
}

// Execute implements Command.
func (c HGet) Execute(b *backend.Backend) resp.Frame {
	if v, ok := b.HGet(c.Key, c.Field); ok {
		return v
	}
	return resp.Null{}
}

func parseHGet(arr resp.Array) (Command, error) {
	key, ok := bulkStringArg(arr, 1)
	if !ok {
		return nil, invalidCommand("HGET command must have a key")
	}
	field, ok := bulkStringArg(arr, 2)
	if !ok {
		return nil, invalidCommand("HGET command must have a field")
	}
	return HGet{Key: key, Field: field}, nil
}
