package main

import (
	"context"
	"expvar"
	"flag"
	"net"

	"go.uber.org/zap"

	"github.com/harfangapps/respd/backend"
	"github.com/harfangapps/respd/common"
	"github.com/harfangapps/respd/server"
)

// git rev-parse --short HEAD
var gitHash string

// git describe --tags
var version string

func main() {
	addrFlag := flag.String("addr", "127.0.0.1:6379", "address to listen on")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	common.Logger = sugar

	sugar.Infow("starting", "git_hash", gitHash, "version", version, "addr", *addrFlag)

	tcpAddr, err := net.ResolveTCPAddr("tcp", *addrFlag)
	if err != nil {
		sugar.Fatalw("invalid listen address", "error", err)
	}

	srv := &server.Server{
		Addr:    tcpAddr,
		Backend: backend.New(),
		Stats:   expvar.NewMap("respd"),
	}

	if err := srv.ListenAndServe(context.Background()); err != nil {
		sugar.Fatalw("server exited", "error", err)
	}
}
