package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/w-h-a/factfinder/server"
)

type httpServer struct {
	options server.Options
	srv     *http.Server
	mtx     sync.RWMutex
	addr    string
}

func (s *httpServer) Start() error {
	ln, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	s.addr = ln.Addr().String()
	s.mtx.Unlock()

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *httpServer) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.options.ShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// Address reports the bound listener address once Start has run, and the
// configured address before that.
func (s *httpServer) Address() string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if len(s.addr) > 0 {
		return s.addr
	}

	return s.options.Address
}

func NewServer(opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	if options.Handler == nil {
		panic("handler is required")
	}

	handler := options.Handler

	if ms, ok := MiddlewareFrom(options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if d, ok := ReadHeaderTimeoutFrom(options.Context); ok {
		srv.ReadHeaderTimeout = d
	}

	return &httpServer{
		options: options,
		srv:     srv,
	}
}
