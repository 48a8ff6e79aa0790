package command

import (
	"github.com/harfangapps/respd/backend"
	"github.com/harfangapps/respd/resp"
)

// HSet stores value under (key, field). A HSet against an absent outer key
// implicitly creates the inner mapping.
type HSet struct {
	Key   string
	Field string
	Value resp.Frame
}

// Execute implements Command.
func (c HSet) Execute(b *backend.Backend) resp.Frame {
	b.HSet(c.Key, c.Field, c.Value)
	return okFrame
}

func parseHSet(arr resp.Array) (Command, error) {
	key, ok := bulkStringArg(arr, 1)
	if !ok {
		return nil, invalidCommand("HSET command must have a key")
	}
	field, ok := bulkStringArg(arr, 2)
	if !ok {
		return nil, invalidCommand("HSET command must have a field")
	}
	val := arg(arr, 3)
	if val == nil {
		return nil, invalidCommand("HSET command must have a value")
	}
	return HSet{Key: key, Field: field, Value: val}, nil
}
