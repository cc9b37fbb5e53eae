// Package extract turns an uploaded PDF or a web page into plain text.
package extract

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/models"
)

// Source is either PDF bytes or a URL, never both.
type Source struct {
	Name string
	PDF  []byte
	URL  string
}

func (s Source) String() string {
	switch {
	case s.URL != "":
		return s.URL
	case s.Name != "":
		return s.Name
	default:
		return "pdf"
	}
}

type Options struct {
	URLStrategy  string
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int
}

// Extractor dispatches a Source to the PDF or URL strategy.
type Extractor struct {
	opts   Options
	logger *zap.Logger
}

func NewExtractor(opts Options, logger *zap.Logger) *Extractor {
	return &Extractor{opts: opts, logger: logger}
}

// Extract returns the source's plain text. An empty string with a nil error
// means the source parsed but carried no text.
func (e *Extractor) Extract(ctx context.Context, src Source) (string, error) {
	start := time.Now()
	var (
		text string
		err  error
	)
	switch {
	case len(src.PDF) > 0 && src.URL != "":
		err = &models.ExtractionError{Source: src.String(), Kind: models.ExtractUnsupported,
			Err: fmt.Errorf("%w: both pdf and url given", models.ErrUnsupportedSource)}
	case len(src.PDF) > 0:
		text, err = PDFText(src.PDF)
		if err != nil {
			err = &models.ExtractionError{Source: src.String(), Kind: models.ExtractParse, Err: err}
		}
	case src.URL != "":
		text, err = e.urlText(ctx, src.URL)
	default:
		err = &models.ExtractionError{Source: src.String(), Kind: models.ExtractUnsupported, Err: models.ErrUnsupportedSource}
	}
	if err != nil {
		e.logger.Error("extraction failed", zap.String("source", src.String()), zap.Error(err))
		return "", err
	}

	e.logger.Info("extraction finished",
		zap.String("source", src.String()),
		zap.Int("text_length", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}
