package middleware

import (
	"log"
	"net/http"

	"playerscout/internal/api"
	"playerscout/internal/errors"

	"github.com/gin-gonic/gin"
)

const sessionKey = "scout.session"

// SessionStore resolves a session by ID
type SessionStore interface {
	Get(id string) (*api.Session, error)
}

// LoadSession resolves the :id path parameter into a live session, aborting with
// 400 or 404 when it is malformed or expired
func LoadSession(store SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		session, err := store.Get(id)
		if err != nil {
			log.Printf("[LoadSession] %s %s: %v", c.Request.Method, c.FullPath(), err)
			message := err.Error()
			if appErr, ok := errors.As(err); ok {
				message = appErr.Message
			}
			c.AbortWithStatusJSON(errors.HTTPStatus(err), gin.H{"error": message})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// SessionFrom returns the session loaded by LoadSession
func SessionFrom(c *gin.Context) *api.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*api.Session); ok {
			return s
		}
	}
	return nil
}

// LoadSessionPage is LoadSession for HTML pages: an unknown or expired session
// redirects to fallback, which starts a new one
func LoadSessionPage(store SessionStore, fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Get(c.Param("id"))
		if err != nil {
			c.Redirect(http.StatusSeeOther, fallback)
			c.Abort()
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}
