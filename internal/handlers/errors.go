package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ride-admin-backend/internal/services"
)

// respondError maps service errors to status codes. Unexpected errors are
// logged and reported without detail.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var nerr *services.NotFoundError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.As(err, &nerr):
		c.JSON(http.StatusNotFound, gin.H{"error": nerr.Error()})
	default:
		c.Error(err)
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", c.GetString("requestId"),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// absoluteURL rebuilds the request URL with scheme and host, preferring the
// configured public base URL when there is one.
func absoluteURL(c *gin.Context, baseURL string) *url.URL {
	u := *c.Request.URL
	if baseURL != "" {
		if base, err := url.Parse(baseURL); err == nil && base.Host != "" {
			u.Scheme = base.Scheme
			u.Host = base.Host
			u.Path = strings.TrimRight(base.Path, "/") + c.Request.URL.Path
			return &u
		}
	}
	u.Scheme = "http"
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}
	u.Host = c.Request.Host
	return &u
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := services.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return 0, false
	}
	return id, true
}
