package web

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	mux       *http.ServeMux
	recommend *RecommendHandler
	playlist  *PlaylistHandler
	command   *CommandHandler
	health    *HealthHandler
}

// NewServer creates a web server wiring the given handlers. command and
// health are optional.
func NewServer(recommend *RecommendHandler, playlist *PlaylistHandler, command *CommandHandler, health *HealthHandler) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		recommend: recommend,
		playlist:  playlist,
		command:   command,
		health:    health,
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/recommendations/stream", s.recommend.HandleStream)
	s.mux.HandleFunc("/api/recommendations", s.recommend.HandleRecommend)
	s.mux.HandleFunc("/api/playlist/stream", s.playlist.HandleStream)
	s.mux.HandleFunc("/api/playlist", s.playlist.HandleGenerate)
	if s.command != nil {
		s.mux.HandleFunc("/api/command", s.command.HandleCommand)
	}
	if s.health != nil {
		s.mux.Handle("/api/health", s.health)
	}
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins listening on addr with graceful shutdown. On SIGINT/SIGTERM
// it waits up to 10s for in-flight requests to complete, so deferred
// cleanup (session store, catalog clients) runs reliably.
func (s *Server) Start(addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Printf("[Web] Received signal %v, shutting down gracefully...", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[Web] Graceful shutdown error: %v", err)
		}
	}()

	log.Printf("[Web] Melodia server running at http://localhost%s", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		log.Println("[Web] Server stopped gracefully")
		return nil
	}
	return err
}
