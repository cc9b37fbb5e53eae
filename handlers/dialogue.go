package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/models"
	"github.com/CVSRohit/PodcastGen/services"
)

type dialogueRequest struct {
	Audience  string `json:"audience" form:"audience"`
	HostName  string `json:"host_name" form:"host_name"`
	GuestName string `json:"guest_name" form:"guest_name"`
}

// GenerateDialogue turns the session's extracted text into a dialogue.
func (h *Handlers) GenerateDialogue(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req dialogueRequest
	if err := c.ShouldBind(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ps := h.storage.Get(id)
	apiKey, err := h.services.ResolveAPIKey(ps.APIKey)
	if err != nil {
		respondError(c, err)
		return
	}
	speakers := models.Speakers{
		HostName:  strings.TrimSpace(req.HostName),
		GuestName: strings.TrimSpace(req.GuestName),
	}
	d, err := h.services.GenerateDialogue(c.Request.Context(), services.GenerateRequest{
		Text:     ps.SourceText,
		Audience: req.Audience,
		Speakers: speakers,
	}, apiKey)
	if err != nil {
		respondError(c, err)
		return
	}

	var stale string
	h.storage.Update(id, func(ps *models.PodcastSession) {
		ps.Audience = req.Audience
		ps.Speakers = speakers
		ps.Dialogue = &d
		stale = releaseAudio(ps)
	})
	h.removePodcast(stale)
	h.logger.Info("dialogue stored", zap.String("session", id), zap.Int("turns", d.Len()))
	c.JSON(http.StatusOK, d)
}

// GetDialogue returns the current dialogue as JSON, or as editable
// "Role: content" lines when the caller asks for text/plain.
func (h *Handlers) GetDialogue(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	ps := h.storage.Get(id)
	if ps.Dialogue == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no dialogue generated yet"})
		return
	}
	if c.Query("format") == "text" || c.NegotiateFormat(gin.MIMEJSON, gin.MIMEPlain) == gin.MIMEPlain {
		c.String(http.StatusOK, models.FormatDialogue(*ps.Dialogue))
		return
	}
	c.JSON(http.StatusOK, ps.Dialogue)
}

// UpdateDialogue replaces the dialogue with the caller's edited text.
func (h *Handlers) UpdateDialogue(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := models.ParseDialogue(string(body))
	if err != nil {
		respondError(c, err)
		return
	}
	if d.Len() == 0 {
		respondError(c, models.ErrEmptyDialogue)
		return
	}
	var stale string
	h.storage.Update(id, func(ps *models.PodcastSession) {
		ps.Dialogue = &d
		stale = releaseAudio(ps)
	})
	h.removePodcast(stale)
	c.JSON(http.StatusOK, d)
}
