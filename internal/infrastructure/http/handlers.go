package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Milo82/construction-ai-assistant/internal/adapters/loader"
	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/Milo82/construction-ai-assistant/internal/domain/usecases"
	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

const uploadTip = "💡 Try uploading a PDF or text file first!"

// TurnResponse is one transcript entry.
type TurnResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionResponse is the state the shell renders.
type SessionResponse struct {
	HasCredential bool           `json:"has_credential"`
	Notice        string         `json:"notice,omitempty"`
	CorpusSet     bool           `json:"corpus_set"`
	DocumentCount int            `json:"document_count"`
	Tip           string         `json:"tip,omitempty"`
	FolderEnabled bool           `json:"folder_enabled"`
	Transcript    []TurnResponse `json:"transcript"`
}

// CredentialRequest sets or, when empty, clears the session API key.
type CredentialRequest struct {
	APIKey string `json:"api_key"`
}

// FailedFile is a file that could not be ingested.
type FailedFile struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// UploadResponse reports the outcome of one ingestion batch.
type UploadResponse struct {
	Summary       string       `json:"summary"`
	Uploaded      int          `json:"uploaded"`
	Succeeded     []string     `json:"succeeded"`
	Failed        []FailedFile `json:"failed"`
	DocumentCount int          `json:"document_count"`
}

// ChatRequest carries one user question.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is a successful reply with its cost line.
type ChatResponse struct {
	Reply        string `json:"reply"`
	Cost         string `json:"cost"`
	CostDisplay  string `json:"cost_display"`
	ContextLabel string `json:"context_label"`
	Summary      string `json:"summary"`
}

// sessionMiddleware resolves the session cookie and serialises actions within
// one session. A missing, expired or unknown ID gets a new server-issued
// session and cookie.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *entities.Session
		if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
			sess, _ = s.opts.Registry.Get(id)
		}
		if sess == nil {
			sess = s.opts.Registry.Create()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, sess.ID, 0, "/", "", false, true)
		}

		sess.Lock()
		defer sess.Unlock()

		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *entities.Session {
	return c.MustGet(sessionKey).(*entities.Session)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Accept": strings.Join(loader.SupportedExtensions(), ","),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.opts.Registry.Count(),
	})
}

func (s *Server) handleGetSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.sessionView(currentSession(c)))
}

func (s *Server) sessionView(sess *entities.Session) SessionResponse {
	_, hasKey := sess.Credential()
	_, count, corpusSet := sess.Corpus()

	resp := SessionResponse{
		HasCredential: hasKey,
		CorpusSet:     corpusSet,
		DocumentCount: count,
		FolderEnabled: s.opts.Folder != nil,
		Transcript:    []TurnResponse{},
	}
	if !hasKey {
		resp.Notice = entities.GatingNotice
	}
	if !corpusSet {
		resp.Tip = uploadTip
	}
	for _, t := range sess.Transcript() {
		resp.Transcript = append(resp.Transcript, TurnResponse{Role: string(t.Role), Content: t.Content})
	}
	return resp
}

func (s *Server) handleEndSession(c *gin.Context) {
	sess := currentSession(c)
	s.opts.Registry.End(sess.ID)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSetCredential(c *gin.Context) {
	var req CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sess := currentSession(c)
	sess.SetCredential(strings.TrimSpace(req.APIKey))
	c.JSON(http.StatusOK, s.sessionView(sess))
}

func (s *Server) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected multipart form with field 'files'"})
		return
	}

	docs := make([]entities.UploadedDocument, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		docs = append(docs, documentFromPart(fh))
	}

	sess := currentSession(c)
	result := s.opts.Ingest.Ingest(c.Request.Context(), sess, docs)
	c.JSON(http.StatusOK, uploadResponse(sess, result))
}

func (s *Server) handleIngestFolder(c *gin.Context) {
	if s.opts.Folder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No shared documents folder is configured"})
		return
	}

	sess := currentSession(c)
	result := s.opts.Ingest.Ingest(c.Request.Context(), sess, s.opts.Folder.Snapshot())
	c.JSON(http.StatusOK, uploadResponse(sess, result))
}

func uploadResponse(sess *entities.Session, result usecases.BatchIngestResult) UploadResponse {
	_, count, _ := sess.Corpus()
	resp := UploadResponse{
		Summary:       result.Summary(),
		Uploaded:      result.Uploaded,
		Succeeded:     []string{},
		Failed:        []FailedFile{},
		DocumentCount: count,
	}
	for _, d := range result.Succeeded {
		resp.Succeeded = append(resp.Succeeded, d.Name)
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, FailedFile{Name: f.Name, Error: f.Error()})
	}
	return resp
}

// documentFromPart keeps an unreadable part in the batch so it is counted
// and reported like any other failed file.
func documentFromPart(fh *multipart.FileHeader) entities.UploadedDocument {
	data, err := readPart(fh)
	if err != nil {
		return entities.UploadedDocument{Name: fh.Filename, ReadErr: err}
	}
	return loader.Document(fh.Filename, data)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message must not be empty"})
		return
	}

	sess := currentSession(c)
	reply, err := s.opts.Converse.Respond(c.Request.Context(), sess, req.Message)
	if err != nil {
		if errors.Is(err, entities.ErrCredentialMissing) {
			c.JSON(http.StatusPreconditionRequired, gin.H{"error": entities.GatingNotice})
			return
		}
		log.WithError(err).WithField("session", sess.ID).Error("chat.failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Reply:        reply.Turn.Content,
		Cost:         reply.Cost.String(),
		CostDisplay:  usecases.FormatCost(reply.Cost),
		ContextLabel: reply.ContextLabel,
		Summary:      reply.Summary(),
	})
}
