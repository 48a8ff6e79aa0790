// Package server implements the per-connection read/decode/execute/encode/
// write loop and the accept-loop process wiring around it.
package server

import (
	"context"
	"expvar"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/harfangapps/respd/backend"
	"github.com/harfangapps/respd/command"
	"github.com/harfangapps/respd/common"
	"github.com/harfangapps/respd/resp"
)

// various states of the Server
const (
	none = iota
	started
	closed
)

// Server listens for incoming connections and serves the command set
// against a shared Backend. One Server instance is meant to be started
// once; a second start attempt fails.
type Server struct {
	// The address the server listens on.
	Addr net.Addr

	// The store every connection reads and writes against. If nil, a
	// fresh empty Backend is created when the server starts.
	Backend *backend.Backend

	// Write timeout before returning a network error on a write attempt.
	// Zero disables the deadline.
	WriteTimeout time.Duration

	// If not nil, this is an expvar map that accumulates command
	// execution counters.
	Stats *expvar.Map

	// The channel to send errors to. If nil, the errors are logged.
	// If the send would block, the error is dropped. It is the
	// responsibility of the caller to close the channel once the Server
	// is stopped.
	ErrChan chan<- error

	server common.RetryServer

	mu    sync.Mutex
	state int
}

// ListenAndServe starts the server on the specified Addr.
//
// This call is blocking, it returns only when an error is encountered. As
// such, it always returns a non-nil error.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen(s.Addr.Network(), s.Addr.String())
	if err != nil {
		return errors.Wrap(err, "listen error")
	}
	return s.serve(ctx, l)
}

func (s *Server) serve(ctx context.Context, l net.Listener) error {
	s.mu.Lock()
	switch s.state {
	case none:
		// all good, keep going
	case started:
		s.mu.Unlock()
		return errors.New("server already started")
	case closed:
		s.mu.Unlock()
		return errors.New("server closed")
	}

	if s.Backend == nil {
		s.Backend = backend.New()
	}
	s.server.Dispatch = s.serveConn
	s.server.ErrChan = s.ErrChan
	s.server.Listener = l
	s.state = started
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = closed
		s.mu.Unlock()
	}()

	return s.server.Serve(ctx)
}

func (s *Server) serveConn(ctx context.Context, d common.Doner, conn net.Conn) {
	wg := &sync.WaitGroup{}
	ctx, cancel := context.WithCancel(ctx)
	done := ctx.Done()

	defer func() {
		conn.Close() // close the serviced connection
		cancel()     // required to release resources
		wg.Wait()    // wait for readWriteLoop goroutine to exit
		d.Done()     // signal the server that this connection is done
	}()

	wg.Add(1)
	go s.readWriteLoop(cancel, wg, conn)

	// block waiting for the stop signal
	<-done
}

// readWriteLoop processes commands sequentially on conn: read bytes, frame
// them, parse and execute one command at a time, write the reply, repeat.
// It never runs two commands from the same connection concurrently.
func (s *Server) readWriteLoop(cancel func(), d common.Doner, conn net.Conn) {
	defer func() {
		cancel()
		d.Done()
	}()

	fr := resp.NewFramer()
	readBuf := make([]byte, 4096)

	for {
		frame, err := nextFrame(fr, conn, readBuf)
		if err != nil {
			if err == io.EOF {
				return
			}
			err = errors.Wrap(err, "decode request error")
			common.HandleError(err, s.ErrChan)
			return
		}

		res := s.execute(frame)

		if s.WriteTimeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout)); err != nil {
				err = errors.Wrap(err, "set write deadline")
				common.HandleError(err, s.ErrChan)
				return
			}
		}
		if _, err := conn.Write(res.Encode()); err != nil {
			err = errors.Wrap(err, "write response error")
			common.HandleError(err, s.ErrChan)
			return
		}
	}
}

// nextFrame pulls bytes from conn into fr until a complete Frame is
// available. It returns io.EOF verbatim whenever the peer closes, including
// when a partial frame is still buffered; any other error is a malformed
// frame or a transport failure, both of which are unrecoverable for this
// connection.
func nextFrame(fr *resp.Framer, conn net.Conn, readBuf []byte) (resp.Frame, error) {
	for {
		f, err := fr.Next()
		if err != nil {
			return nil, err
		}
		if f != nil {
			return f, nil
		}

		n, err := conn.Read(readBuf)
		if n > 0 {
			fr.Feed(readBuf[:n])
		}
		if err != nil {
			return nil, err
		}
	}
}

// execute parses frame as a Command and runs it against the backend. A
// frame that does not parse as a known command shape replies with a
// SimpleError and keeps the connection open, since the framer's buffer
// offset is still in sync with the wire.
func (s *Server) execute(frame resp.Frame) resp.Frame {
	if s.Stats != nil {
		s.Stats.Add("commands_executed", 1)
		s.Stats.Add("commands_inprogress", 1)
		defer s.Stats.Add("commands_inprogress", -1)
		if name := verbName(frame); name != "" {
			s.Stats.Add("commands_executed_"+strings.ToLower(name), 1)
		}
	}

	cmd, err := command.Parse(frame)
	if err != nil {
		return resp.SimpleError("ERR " + err.Error())
	}
	return cmd.Execute(s.Backend)
}

// verbName extracts the command name from a request Frame for metrics
// purposes, without duplicating command.Parse's validation. Returns ""
// for anything that isn't shaped like a command request.
func verbName(frame resp.Frame) string {
	arr, ok := frame.(resp.Array)
	if !ok || len(arr) == 0 {
		return ""
	}
	name, ok := arr[0].(resp.BulkString)
	if !ok {
		return ""
	}
	return strings.ToUpper(string(name))
}
