package http

import (
	"context"
	"net/http"
	"time"

	"vendora/internal/service"
)

type Server struct {
	srv *http.Server
}

func NewServer(addr string, svc service.VTUService, jwtSecret string) *Server {
	mux := http.NewServeMux()
	h := NewHandler(svc, jwtSecret)
	h.Register(mux)

	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			// Long enough for two 15s vendor attempts plus commit.
			WriteTimeout: 45 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	return s.srv.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
