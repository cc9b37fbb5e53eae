package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CVSRohit/PodcastGen/models"
)

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var extractErr *models.ExtractionError
	switch {
	case errors.Is(err, models.ErrMissingCredential),
		errors.Is(err, models.ErrUnsupportedSource),
		errors.Is(err, models.ErrUnknownRole),
		errors.Is(err, models.ErrEmptyDialogue):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNoText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &extractErr):
		if extractErr.Kind == models.ExtractParse {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	}

	var genErr *models.GenerationError
	var synthErr *models.SynthesisError
	if errors.As(err, &genErr) || errors.As(err, &synthErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
