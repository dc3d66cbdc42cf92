package api

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/andocmdo/eink-display-control-panel/log"
	"github.com/andocmdo/eink-display-control-panel/server"
)

var logger = log.GetLogger("Api")

//go:embed templates/*.html
var templateFS embed.FS

// Handlers holds references to server components
type Handlers struct {
	server *server.Server
}

// NewHandlers creates a new Handlers instance with server reference
func NewHandlers(srv *server.Server) *Handlers {
	return &Handlers{server: srv}
}

// loadTemplates parses the page and fragment templates
func loadTemplates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// respondStorageError logs a store failure and answers 500
func respondStorageError(c *gin.Context, err error, message string) {
	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	RespondInternalError(c, message)
}
