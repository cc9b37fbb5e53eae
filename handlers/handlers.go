package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/extract"
	"github.com/CVSRohit/PodcastGen/models"
	"github.com/CVSRohit/PodcastGen/services"
	"github.com/CVSRohit/PodcastGen/storage"
)

const sessionKey = "sessionID"

// previewLength is how much extracted text is echoed back to the caller.
const previewLength = 500

type Handlers struct {
	services  *services.Services
	storage   *storage.Storage
	maxUpload int64
	logger    *zap.Logger
}

func New(svc *services.Services, store *storage.Storage, maxUploadBytes int64, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		services:  svc,
		storage:   store,
		maxUpload: maxUploadBytes,
		logger:    logger,
	}
}

// StartSession creates a session id on first visit and returns it.
func (h *Handlers) StartSession(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get(sessionKey) == nil {
		session.Set(sessionKey, storage.NewSessionID())
		if err := session.Save(); err != nil {
			h.logger.Error("save session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save session"})
			return
		}
	}
	id := session.Get(sessionKey).(string)
	ps := h.storage.Get(id)
	c.JSON(http.StatusOK, gin.H{
		"message":        "Session ready.",
		"session_id":     id,
		"has_api_key":    ps.APIKey != "",
		"has_source":     ps.SourceText != "",
		"has_dialogue":   ps.Dialogue != nil,
		"has_podcast":    ps.Audio != nil,
		"voices":         h.services.Voices(),
		"speakers":       ps.Speakers,
		"podcast_source": ps.SourceName,
	})
}

// EndSession forgets the session's state and removes its podcast file.
func (h *Handlers) EndSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var stale string
	h.storage.Update(id, func(ps *models.PodcastSession) {
		stale = releaseAudio(ps)
	})
	h.removePodcast(stale)
	h.storage.Delete(id)

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.logger.Error("save session", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session ended.", "active_sessions": h.storage.Len()})
}

// EvictIdle drops sessions not updated within maxAge, removing their podcast
// files, and returns how many were dropped.
func (h *Handlers) EvictIdle(maxAge time.Duration) int {
	evicted := h.storage.Evict(time.Now().Add(-maxAge))
	for i := range evicted {
		h.removePodcast(releaseAudio(&evicted[i]))
	}
	if len(evicted) > 0 {
		h.logger.Info("idle sessions evicted", zap.Int("count", len(evicted)), zap.Int("active_sessions", h.storage.Len()))
	}
	return len(evicted)
}

// sessionID returns the caller's session id, answering 400 when there is none.
func (h *Handlers) sessionID(c *gin.Context) (string, bool) {
	id, ok := sessions.Default(c).Get(sessionKey).(string)
	if !ok || id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No sessions found"})
		return "", false
	}
	return id, true
}

type credentialsRequest struct {
	APIKey string `json:"api_key" form:"api_key"`
}

// SetCredentials stores the caller's API key server side. The key never
// travels back in a response or in the cookie.
func (h *Handlers) SetCredentials(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil || strings.TrimSpace(req.APIKey) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrMissingCredential.Error()})
		return
	}
	h.storage.Update(id, func(ps *models.PodcastSession) {
		ps.APIKey = strings.TrimSpace(req.APIKey)
	})
	c.JSON(http.StatusOK, gin.H{"message": "API key saved."})
}

type extractRequest struct {
	URL string `json:"url" form:"url"`
}

// Extract reads a multipart "file" upload (PDF) or a "url" field and keeps
// the extracted text in the session.
func (h *Handlers) Extract(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	src, err := h.source(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text, err := h.services.Extract(c.Request.Context(), src)
	if err != nil {
		respondError(c, err)
		return
	}
	if strings.TrimSpace(text) == "" {
		h.storage.Update(id, func(ps *models.PodcastSession) {
			ps.SourceName = src.String()
			ps.SourceText = ""
		})
		respondError(c, models.ErrNoText)
		return
	}

	var stale string
	h.storage.Update(id, func(ps *models.PodcastSession) {
		ps.SourceName = src.String()
		ps.SourceText = text
		ps.Dialogue = nil
		stale = releaseAudio(ps)
	})
	h.removePodcast(stale)
	preview := text
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	c.JSON(http.StatusOK, gin.H{
		"source":     src.String(),
		"characters": len(text),
		"preview":    preview,
	})
}

func (h *Handlers) source(c *gin.Context) (extract.Source, error) {
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		data, err := readUpload(fh)
		if err != nil {
			return extract.Source{}, err
		}
		return extract.Source{Name: fh.Filename, PDF: data}, nil
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		return extract.Source{}, err
	}

	var req extractRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		return extract.Source{}, err
	}
	if strings.TrimSpace(req.URL) == "" {
		return extract.Source{}, errors.New("a PDF file or a url is required")
	}
	return extract.Source{URL: strings.TrimSpace(req.URL)}, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
