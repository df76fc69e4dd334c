package ui

import (
	"io/fs"
	"log"
	"net/http"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	staticFS, err := fs.Sub(s.embeddedFiles, "ui/static")
	if err != nil {
		log.Printf("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	log.Printf("[Static] Serving static files from embedded FS at /static")
	s.router.StaticFS("/static", http.FS(staticFS))
}
