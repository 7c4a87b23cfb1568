package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Start runs the HTTP server and the push fan-out until an interrupt or
// terminate signal arrives, then shuts down with a timeout.
func (s *Server) Start() {
	fanoutCtx, stopFanout := context.WithCancel(context.Background())
	if err := s.fanout.Start(fanoutCtx, s.bus); err != nil {
		stopFanout()
		s.E.Logger.Fatalf("starting push fan-out: %v", err)
	}

	go func() {
		if err := s.E.Start(s.Cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			s.E.Logger.Fatalf("shutting down the server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopFanout()
	if err := s.bus.Close(); err != nil {
		s.E.Logger.Errorf("closing message bus: %v", err)
	}
	s.DB.Close(ctx)
	if err := s.E.Shutdown(ctx); err != nil {
		s.E.Logger.Fatal(err)
	}
}
