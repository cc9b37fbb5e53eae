package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/models"
	"github.com/CVSRohit/PodcastGen/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// CreatePodcast synthesizes the session's dialogue and answers with the
// resulting PodcastAudio.
func (h *Handlers) CreatePodcast(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	podcast, err := h.synthesize(c, id, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, podcast)
}

// PodcastAudio serves the last synthesized podcast.
func (h *Handlers) PodcastAudio(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	ps := h.storage.Get(id)
	if ps.Audio == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no podcast synthesized yet"})
		return
	}
	if _, err := os.Stat(ps.Audio.Path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "podcast file is gone"})
		return
	}
	c.Header("Content-Type", "audio/mpeg")
	c.File(ps.Audio.Path)
}

type wsMessage struct {
	Type    string                  `json:"type"`
	Event   *services.ProgressEvent `json:"event,omitempty"`
	Podcast *models.PodcastAudio    `json:"podcast,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// PodcastSocket runs synthesis over a websocket, sending one "progress"
// message per turn boundary followed by a "done" or "error" message.
func (h *Handlers) PodcastSocket(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	progress := func(e services.ProgressEvent) {
		if err := conn.WriteJSON(wsMessage{Type: "progress", Event: &e}); err != nil {
			h.logger.Warn("write progress", zap.Error(err))
		}
	}
	podcast, err := h.synthesize(c, id, progress)
	msg := wsMessage{Type: "done", Podcast: podcast}
	if err != nil {
		msg = wsMessage{Type: "error", Error: err.Error()}
	}
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("write result", zap.Error(err))
		return
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Handlers) synthesize(c *gin.Context, id string, progress services.Progress) (*models.PodcastAudio, error) {
	ps := h.storage.Get(id)
	if ps.Dialogue == nil || ps.Dialogue.Len() == 0 {
		return nil, &models.SynthesisError{Turn: -1, Err: models.ErrEmptyDialogue}
	}
	apiKey, err := h.services.ResolveAPIKey(ps.APIKey)
	if err != nil {
		return nil, &models.SynthesisError{Turn: -1, Err: err}
	}

	podcast, err := h.services.Synthesize(c.Request.Context(), *ps.Dialogue, apiKey, progress)
	if err != nil {
		return nil, err
	}

	var previous string
	h.storage.Update(id, func(ps *models.PodcastSession) {
		previous = releaseAudio(ps)
		ps.Audio = podcast
	})
	h.removePodcast(previous)
	return podcast, nil
}

// releaseAudio drops the session's podcast reference and returns the file
// it pointed to. Every caller must pass the result to removePodcast.
func releaseAudio(ps *models.PodcastSession) string {
	if ps.Audio == nil {
		return ""
	}
	path := ps.Audio.Path
	ps.Audio = nil
	return path
}

func (h *Handlers) removePodcast(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("remove podcast", zap.String("path", path), zap.Error(err))
	}
}
