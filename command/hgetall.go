package command

import (
	"github.com/harfangapps/respd/backend"
	"github.com/harfangapps/respd/resp"
)

// HGetAll returns every (field, value) pair stored under key, flattened
// into an alternating Array: field1, value1, field2, value2, ... Fields
// are sorted ascending by UTF-8 byte ordering so repeated calls against an
// unmodified key produce identical output. An absent outer key yields an
// empty Array.
type HGetAll struct {
	Key string
}

// Execute implements Command.
func (c HGetAll) Execute(b *backend.Backend) resp.Frame {
	fields := b.HGetAll(c.Key)

	out := make(resp.Array, 0, len(fields)*2)
	for _, kv := range fields {
		out = append(out, resp.BulkString(kv.Field), kv.Value)
	}
	return out
}

func parseHGetAll(arr resp.Array) (Command, error) {
	key, ok := bulkStringArg(arr, 1)
	if !ok {
		return nil, invalidCommand("HGETALL command must have a key")
	}
	return HGetAll{Key: key}, nil
}
