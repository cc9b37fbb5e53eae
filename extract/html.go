package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/models"
)

const (
	StrategyParagraphs = "paragraphs"
	StrategyArticle    = "article"
)

func (e *Extractor) urlText(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &models.ExtractionError{Source: rawURL, Kind: models.ExtractUnsupported,
			Err: fmt.Errorf("%w: invalid url %q", models.ErrUnsupportedSource, rawURL)}
	}

	body, err := e.fetch(ctx, rawURL)
	if err != nil {
		return "", &models.ExtractionError{Source: rawURL, Kind: models.ExtractFetch, Err: err}
	}

	var text string
	if e.opts.URLStrategy == StrategyArticle {
		text, err = ArticleText(body, u)
	} else {
		text, err = ParagraphText(body)
	}
	if err != nil {
		return "", &models.ExtractionError{Source: rawURL, Kind: models.ExtractParse, Err: err}
	}
	return text, nil
}

// fetch performs a single GET. Any non-2xx status is an error.
func (e *Extractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	opts := []colly.CollectorOption{colly.StdlibContext(ctx)}
	if e.opts.UserAgent != "" {
		opts = append(opts, colly.UserAgent(e.opts.UserAgent))
	}
	if e.opts.MaxBodyBytes > 0 {
		opts = append(opts, colly.MaxBodySize(e.opts.MaxBodyBytes))
	}
	c := colly.NewCollector(opts...)
	if e.opts.Timeout > 0 {
		c.SetRequestTimeout(e.opts.Timeout)
	}

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		e.logger.Debug("page fetched",
			zap.String("url", rawURL),
			zap.Int("status", r.StatusCode),
			zap.Int("bytes", len(r.Body)),
		)
	})

	var status int
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(rawURL); err != nil {
		if status != 0 {
			return nil, fmt.Errorf("GET %s: status %d: %w", rawURL, status, err)
		}
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	return body, nil
}

// ParagraphText joins the text of every <p> element in document order.
func ParagraphText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, s.Text())
	})
	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}

// ArticleText extracts the main article body for pages that do not use
// paragraph markup.
func ArticleText(body []byte, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}
