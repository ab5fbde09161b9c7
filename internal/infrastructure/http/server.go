// Package http provides the HTTP server infrastructure.
// Framework/driver layer, the outermost circle.
package http

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/Milo82/construction-ai-assistant/internal/domain/ports"
	"github.com/Milo82/construction-ai-assistant/internal/domain/usecases"
	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

const (
	EndPointIndex      = "/"
	EndPointHealth     = "/api/health"
	EndPointSession    = "/api/session"
	EndPointCredential = "/api/credential"
	EndPointDocuments  = "/api/documents"
	EndPointFolder     = "/api/documents/folder"
	EndPointChat       = "/api/chat"
	EndPointMetrics    = "/metrics"

	sessionCookie = "session_id"
	sessionKey    = "session"
)

// Options wires the server to the usecases.
type Options struct {
	Addr     string
	Registry ports.SessionRegistry
	Ingest   *usecases.IngestUseCase
	Converse *usecases.ConverseUseCase
	// Folder is nil when no shared documents directory is configured.
	Folder *usecases.SharedFolder
	// Metrics is served at /metrics when set.
	Metrics http.Handler
	// MaxMultipartMemory bounds in-memory buffering of uploads; larger files
	// spill to temporary files. It is not a size limit.
	MaxMultipartMemory int64
}

// Server is the HTTP server for the assistant UI and API.
type Server struct {
	opts   Options
	router *gin.Engine
}

// NewServer creates a new HTTP server.
func NewServer(opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.SetHTMLTemplate(tmpl)
	if opts.MaxMultipartMemory > 0 {
		router.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	s := &Server{opts: opts, router: router}

	router.StaticFS("/static", http.FS(staticContent))
	router.GET(EndPointHealth, s.handleHealth)
	if opts.Metrics != nil {
		router.GET(EndPointMetrics, gin.WrapH(opts.Metrics))
	}

	withSession := router.Group("/")
	withSession.Use(s.sessionMiddleware())
	{
		withSession.GET(EndPointIndex, s.handleIndex)
		withSession.GET(EndPointSession, s.handleGetSession)
		withSession.DELETE(EndPointSession, s.handleEndSession)
		withSession.POST(EndPointCredential, s.handleSetCredential)
		withSession.POST(EndPointDocuments, s.handleUpload)
		withSession.POST(EndPointFolder, s.handleIngestFolder)
		withSession.POST(EndPointChat, s.handleChat)
	}

	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:        s.opts.Addr,
		Handler:     s.router,
		ReadTimeout: 60 * time.Second,
		// No write timeout: a chat request blocks until the provider answers.
	}

	log.WithField("addr", s.opts.Addr).Info("server.start")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("http.request")
	}
}
