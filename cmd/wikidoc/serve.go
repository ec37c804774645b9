package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	wikichi "github.com/fwojciec/wikidoc/chi"
)

// shutdownTimeout bounds how long in-flight requests may finish.
const shutdownTimeout = 5 * time.Second

// Run executes the serve command. It blocks until the context is done.
func (c *ServeCmd) Run(deps *Dependencies) error {
	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: cannot listen on %s: %v\n", c.Addr, err)
		return err
	}

	logger := slog.New(slog.NewTextHandler(deps.Stderr, nil))
	srv := &http.Server{
		Handler:           wikichi.NewServer(deps.Crawls, deps.Records, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(deps.Stdout, "Serving crawls on http://%s\n", ln.Addr())

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-deps.Ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
