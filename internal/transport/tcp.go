package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// Handler serves one accepted connection. The stream is closed after the
// handler returns.
type Handler func(ctx context.Context, s *Stream) error

// ListenAndServe accepts TCP connections on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h Handler, opts ...Option) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return Serve(ctx, ln, h, opts...)
}

// Serve runs h for every connection accepted on ln, each in its own
// goroutine. It closes ln when ctx is cancelled and waits for running
// handlers before returning.
func Serve(ctx context.Context, ln net.Listener, h Handler, opts ...Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("listening", "addr", ln.Addr().String())

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		peer := conn.RemoteAddr().String()
		streamOpts := append([]Option{WithName(peer)}, opts...)
		s := NewStream(conn, streamOpts...)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.Close()

			slog.Info("client connected", "peer", peer)
			if err := h(ctx, s); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("client handler failed", "peer", peer, "error", err)
			}
			slog.Info("client disconnected", "peer", peer)
		}()
	}
}
