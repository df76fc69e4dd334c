package ui

import (
	"log"
	"net/http"

	"playerscout/internal/api"
	"playerscout/internal/errors"
	"playerscout/internal/search"
	"playerscout/ui/middleware"

	"github.com/gin-gonic/gin"
)

// SessionHandler serves the JSON commands behind the search page
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type searchRequest struct {
	Query string `json:"query" form:"query"`
}

func sessionState(sessions *api.Sessions, s *api.Session) gin.H {
	snap, v := sessions.View(s)
	return gin.H{
		"session_id": s.ID,
		"snapshot":   snap,
		"view":       v,
	}
}

func respondError(c *gin.Context, err *errors.AppError) {
	c.JSON(errors.HTTPStatus(err), gin.H{"error": err.Message, "code": err.Code})
}

func (h *SessionHandler) HandleCreate(sessions *api.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Create()
		c.JSON(http.StatusCreated, gin.H{"session_id": s.ID})
	}
}

func (h *SessionHandler) HandleGet(sessions *api.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, sessionState(sessions, middleware.SessionFrom(c)))
	}
}

func (h *SessionHandler) HandleSearch(sessions *api.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)

		var req searchRequest
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, errors.InvalidInput("invalid request body"))
			return
		}
		if search.NormalizeQuery(req.Query) == "" {
			respondError(c, errors.InvalidInput("query is required"))
			return
		}
		if !s.Workflow.Submit(req.Query) {
			log.Printf("[API] Session %s: search rejected, one is already pending", s.ID)
			respondError(c, errors.Conflict("a search is already pending"))
			return
		}
		c.JSON(http.StatusAccepted, sessionState(sessions, s))
	}
}

func (h *SessionHandler) HandleClear(sessions *api.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		s.Workflow.Clear()
		c.JSON(http.StatusOK, sessionState(sessions, s))
	}
}

func (h *SessionHandler) HandleReveal(sessions *api.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		if !s.Workflow.RevealAnalysis() {
			respondError(c, errors.Conflict("no analysis available for the current result"))
			return
		}
		c.JSON(http.StatusAccepted, sessionState(sessions, s))
	}
}

func (h *SessionHandler) HandleDelete(sessions *api.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		if err := sessions.Delete(s.ID); err != nil {
			c.JSON(errors.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
