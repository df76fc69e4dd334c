package ui

import (
	"html/template"
	"log"
	"net/http"

	"playerscout/internal/api"
	"playerscout/ui/middleware"

	"github.com/gin-gonic/gin"
)

const (
	indexTemplate  = "index.html"
	playerFragment = "fragments/player.html"
)

// PageHandler renders the server-side HTML
type PageHandler struct {
	templates *template.Template
}

func NewPageHandler(templates *template.Template) *PageHandler {
	return &PageHandler{templates: templates}
}

// HandleIndex opens a fresh session and sends the browser to its page
func (h *PageHandler) HandleIndex(sessions *api.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Create()
		c.Redirect(http.StatusSeeOther, "/sessions/"+s.ID)
	}
}

func (h *PageHandler) HandleSessionPage(sessions *api.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		snap, v := sessions.View(s)
		h.render(c, indexTemplate, gin.H{
			"SessionID": s.ID,
			"Snapshot":  snap,
			"View":      v,
		})
	}
}

// HandlePlayerFragment re-renders the result panel; the page swaps it in on every event
func (h *PageHandler) HandlePlayerFragment(sessions *api.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, v := sessions.View(middleware.SessionFrom(c))
		h.render(c, playerFragment, v)
	}
}

func (h *PageHandler) render(c *gin.Context, name string, data interface{}) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		log.Printf("[Render] Template %s failed: %v", name, err)
		c.String(http.StatusInternalServerError, "Error rendering page")
	}
}
