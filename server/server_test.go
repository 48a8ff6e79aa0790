package server

import (
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/harfangapps/respd/backend"
	"github.com/harfangapps/respd/internal/testutils"
)

var tcpAddr = &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 8000}

func TestStartCancelledAndRestart(t *testing.T) {
	closeChan := make(chan struct{})
	listener := &testutils.MockListener{
		AcceptFunc: func(i int) (net.Conn, error) {
			<-closeChan
			return nil, io.EOF
		},
		CloseChan: closeChan,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := &Server{Addr: tcpAddr}
	start := time.Now()
	if err := srv.serve(ctx, listener); errors.Cause(err) != io.EOF {
		t.Errorf("want %v, got %v", io.EOF, err)
	}

	dur := time.Since(start)
	want := time.Duration(0)
	if dur < want || dur > (want+(10*time.Millisecond)) {
		t.Errorf("want duration of %v, got %v", want, dur)
	}

	if n := listener.CloseCalls(); n != 2 {
		t.Errorf("want Listener.Close to be called twice, got %d", n)
	}

	// start again
	if err := srv.serve(ctx, listener); errors.Cause(err) == nil {
		t.Errorf("want error, got nil")
	} else if !strings.Contains(err.Error(), "server closed") {
		t.Errorf("want error to contain `server closed`, got %v", err)
	}
}

func TestStartAlreadyStarted(t *testing.T) {
	closeChan := make(chan struct{})
	listener := &testutils.MockListener{
		AcceptFunc: func(i int) (net.Conn, error) {
			<-closeChan
			return nil, io.EOF
		},
		CloseChan: closeChan,
	}

	timeout := 100 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	srv := &Server{Addr: tcpAddr}
	wg := &sync.WaitGroup{}
	wg.Add(1)
	start := time.Now()
	go func() {
		if err := srv.serve(ctx, listener); errors.Cause(err) != io.EOF {
			t.Errorf("want %v, got %v", io.EOF, err)
		}
		wg.Done()
	}()

	<-time.After(10 * time.Millisecond)
	if err := srv.serve(ctx, listener); err == nil {
		t.Errorf("want error, got nil")
	} else if !strings.Contains(err.Error(), "already started") {
		t.Errorf("want error to contain `already started`, got %v", err)
	}

	wg.Wait()
}

// TestExecuteCommandRoundTrip drives one full SET/GET exchange through a
// mocked connection, mirroring scenario S1 at the connection-handler level.
func TestExecuteCommandRoundTrip(t *testing.T) {
	req := []byte("*3\r\n$3\r\nSET\r\n$5\r\nhello\r\n$5\r\nworld\r\n" +
		"*2\r\n$3\r\nGET\r\n$5\r\nhello\r\n")
	want := "+OK\r\n$5\r\nworld\r\n"

	buf := &testutils.SyncBuffer{}
	closeConn := make(chan struct{})
	reader := strings.NewReader(string(req))
	conn := &testutils.MockConn{
		ReadFunc: func(i int, b []byte) (int, error) {
			if reader.Len() > 0 {
				return reader.Read(b)
			}
			<-closeConn
			return 0, io.EOF
		},
		WriteFunc: func(i int, b []byte) (int, error) {
			return buf.Write(b)
		},
		CloseChan: closeConn,
	}

	closeChan := make(chan struct{})
	listener := &testutils.MockListener{
		AcceptFunc: func(i int) (net.Conn, error) {
			if i == 0 {
				return conn, nil
			}
			<-closeChan
			return nil, io.EOF
		},
		CloseChan: closeChan,
	}

	timeout := 100 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	srv := &Server{Addr: tcpAddr, Backend: backend.New()}
	if err := srv.serve(ctx, listener); errors.Cause(err) != io.EOF {
		t.Errorf("want %v, got %v", io.EOF, err)
	}

	if s := buf.String(); s != want {
		t.Errorf("want response %q, got %q", want, s)
	}
}

// TestUnrecognizedCommandRepliesOK mirrors S8's first reply: an
// unrecognized verb gets a silent OK, not an error.
func TestUnrecognizedCommandRepliesOK(t *testing.T) {
	req := []byte("*1\r\n$4\r\nPING\r\n")
	want := "+OK\r\n"

	buf := &testutils.SyncBuffer{}
	closeConn := make(chan struct{})
	reader := strings.NewReader(string(req))
	conn := &testutils.MockConn{
		ReadFunc: func(i int, b []byte) (int, error) {
			if reader.Len() > 0 {
				return reader.Read(b)
			}
			<-closeConn
			return 0, io.EOF
		},
		WriteFunc: func(i int, b []byte) (int, error) {
			return buf.Write(b)
		},
		CloseChan: closeConn,
	}

	closeChan := make(chan struct{})
	listener := &testutils.MockListener{
		AcceptFunc: func(i int) (net.Conn, error) {
			if i == 0 {
				return conn, nil
			}
			<-closeChan
			return nil, io.EOF
		},
		CloseChan: closeChan,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	srv := &Server{Addr: tcpAddr, Backend: backend.New()}
	srv.serve(ctx, listener)

	if s := buf.String(); s != want {
		t.Errorf("want response %q, got %q", want, s)
	}
}

// TestCommandErrorRepliesAndKeepsConnectionOpen exercises the resolved
// connection-level reply policy: a CommandError (not a malformed frame)
// gets a SimpleError reply, and a following valid command still executes.
func TestCommandErrorRepliesAndKeepsConnectionOpen(t *testing.T) {
	req := []byte("*1\r\n$3\r\nGET\r\n" + // GET with no key: CommandError
		"*1\r\n$4\r\nPING\r\n") // still processed afterwards

	buf := &testutils.SyncBuffer{}
	closeConn := make(chan struct{})
	reader := strings.NewReader(string(req))
	conn := &testutils.MockConn{
		ReadFunc: func(i int, b []byte) (int, error) {
			if reader.Len() > 0 {
				return reader.Read(b)
			}
			<-closeConn
			return 0, io.EOF
		},
		WriteFunc: func(i int, b []byte) (int, error) {
			return buf.Write(b)
		},
		CloseChan: closeConn,
	}

	closeChan := make(chan struct{})
	listener := &testutils.MockListener{
		AcceptFunc: func(i int) (net.Conn, error) {
			if i == 0 {
				return conn, nil
			}
			<-closeChan
			return nil, io.EOF
		},
		CloseChan: closeChan,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	srv := &Server{Addr: tcpAddr, Backend: backend.New()}
	srv.serve(ctx, listener)

	got := buf.String()
	if !strings.HasPrefix(got, "-ERR") {
		t.Errorf("want error reply prefix, got %q", got)
	}
	if !strings.HasSuffix(got, "+OK\r\n") {
		t.Errorf("want connection to stay open and process PING, got %q", got)
	}
}

func TestWriteErrorTerminatesConnection(t *testing.T) {
	closeConn := make(chan struct{})
	theErr := errors.New("write failed")
	conn := &testutils.MockConn{
		ReadFunc: func(i int, b []byte) (int, error) {
			if i == 0 {
				r := strings.NewReader("*1\r\n$4\r\nPING\r\n")
				return r.Read(b)
			}
			<-closeConn
			return 0, io.EOF
		},
		WriteFunc: func(i int, b []byte) (int, error) {
			if i == 0 {
				return 0, theErr
			}
			<-closeConn
			return 0, io.EOF
		},
		CloseChan: closeConn,
	}

	closeChan := make(chan struct{})
	listener := &testutils.MockListener{
		AcceptFunc: func(i int) (net.Conn, error) {
			if i == 0 {
				return conn, nil
			}
			<-closeChan
			return nil, io.EOF
		},
		CloseChan: closeChan,
	}

	timeout := 100 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	errChan := make(chan error, 1)
	srv := &Server{Addr: tcpAddr, Backend: backend.New(), ErrChan: errChan}
	wg := &sync.WaitGroup{}
	wg.Add(1)
	go func() {
		var n int
		for err := range errChan {
			n++
			if errors.Cause(err) != theErr {
				t.Errorf("want %v, got %v", theErr, err)
			}
		}
		if n != 1 {
			t.Errorf("want 1 error, got %d", n)
		}
		wg.Done()
	}()

	if err := srv.serve(ctx, listener); errors.Cause(err) != io.EOF {
		t.Errorf("want %v, got %v", io.EOF, err)
	}
	close(errChan)
	wg.Wait()

	if n := conn.CloseCalls(); n != 1 {
		t.Errorf("want conn.Close to be called once, got %d", n)
	}
}
