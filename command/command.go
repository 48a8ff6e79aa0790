// Package command implements the typed command model parsed from a RESP
// Array-of-BulkStrings request Frame, and the executor that evaluates each
// command against a backend.Backend to produce a reply Frame.
package command

import (
	"fmt"
	"strings"

	"github.com/harfangapps/respd/backend"
	"github.com/harfangapps/respd/resp"
)

// okFrame is the canonical SimpleString("OK") reply, constructed once and
// reused for every successful write.
var okFrame = resp.SimpleString("OK")

// Command is a parsed, typed view of a request Frame: constructed from an
// incoming Array, consumed by one Execute call, then discarded.
type Command interface {
	Execute(b *backend.Backend) resp.Frame
}

// ErrorKind classifies a CommandError the way the wire-level CommandError
// taxonomy does.
type ErrorKind int

const (
	// InvalidCommand means the Frame is not an Array of BulkStrings, the
	// command name is not a BulkString, or a required positional element
	// is missing.
	InvalidCommand ErrorKind = iota
	// InvalidArguments is reserved for type mismatches on value positions.
	InvalidArguments
)

// CommandError reports why a request Frame could not be parsed into a
// Command.
type CommandError struct {
	Kind ErrorKind
	Msg  string
}

func (e *CommandError) Error() string {
	return e.Msg
}

func invalidCommand(format string, args ...interface{}) *CommandError {
	return &CommandError{Kind: InvalidCommand, Msg: fmt.Sprintf(format, args...)}
}

// Parse builds a Command from a request Frame. Only a Frame that is an
// Array whose first element is a BulkString is eligible; anything else
// reports InvalidCommand. An unrecognized command name is not an error: it
// produces an Unrecognized command, which replies OK.
func Parse(f resp.Frame) (Command, error) {
	arr, ok := f.(resp.Array)
	if !ok {
		return nil, invalidCommand("Command must be an array")
	}
	if len(arr) == 0 {
		return nil, invalidCommand("Command must have a BulkString as the first argument")
	}
	name, ok := arr[0].(resp.BulkString)
	if !ok {
		return nil, invalidCommand("Command must have a BulkString as the first argument")
	}

	switch strings.ToUpper(string(name)) {
	case "GET":
		return parseGet(arr)
	case "SET":
		return parseSet(arr)
	case "HGET":
		return parseHGet(arr)
	case "HSET":
		return parseHSet(arr)
	case "HGETALL":
		return parseHGetAll(arr)
	default:
		return Unrecognized{}, nil
	}
}

// arg returns the i'th element of arr, or nil if out of range.
func arg(arr resp.Array, i int) resp.Frame {
	if i >= len(arr) {
		return nil
	}
	return arr[i]
}

// bulkStringArg returns the i'th element of arr as a string, requiring it
// to be a BulkString.
func bulkStringArg(arr resp.Array, i int) (string, bool) {
	f := arg(arr, i)
	if f == nil {
		return "", false
	}
	bs, ok := f.(resp.BulkString)
	if !ok {
		return "", false
	}
	return string(bs), true
}
