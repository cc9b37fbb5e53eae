package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/models"
)

// buildPDF writes a minimal document with one text line per page.
func buildPDF(pages ...string) []byte {
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	fontObj := 3 + 2*len(pages)
	var kids []string
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+2*i))
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))

	for i, text := range pages {
		pageObj := 3 + 2*i
		content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, pageObj+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPDFTextPageOrder(t *testing.T) {
	text, err := PDFText(buildPDF("First page", "Second page"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := strings.Index(text, "First page")
	second := strings.Index(text, "Second page")
	if first < 0 || second < 0 {
		t.Fatalf("missing page text in %q", text)
	}
	if first > second {
		t.Errorf("pages out of order: %q", text)
	}
	if text != strings.TrimSpace(text) {
		t.Errorf("text not trimmed: %q", text)
	}
}

func TestPDFWithoutText(t *testing.T) {
	doc := buildPDF("")

	text, err := PDFText(doc)
	if err != nil || text != "" {
		t.Fatalf("expected empty text and no error, got %q, %v", text, err)
	}

	text, err = NewExtractor(Options{}, zap.NewNop()).Extract(context.Background(), Source{Name: "blank.pdf", PDF: doc})
	if err != nil || text != "" {
		t.Errorf("expected empty text and no error, got %q, %v", text, err)
	}
}

func TestExtractPDFErrors(t *testing.T) {
	e := NewExtractor(Options{}, zap.NewNop())

	_, err := e.Extract(context.Background(), Source{Name: "junk.pdf", PDF: []byte("not a pdf at all")})
	var ee *models.ExtractionError
	if !errors.As(err, &ee) || ee.Kind != models.ExtractParse {
		t.Fatalf("expected parse ExtractionError, got %v", err)
	}

	_, err = e.Extract(context.Background(), Source{})
	if !errors.Is(err, models.ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}

	_, err = e.Extract(context.Background(), Source{PDF: []byte("x"), URL: "http://example.com"})
	if !errors.Is(err, models.ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource for ambiguous source, got %v", err)
	}
}

func TestParagraphText(t *testing.T) {
	testCases := []struct {
		name string
		html string
		want string
	}{
		{"Paragraphs", `<html><body><h1>Title</h1><p>First</p><div><p>Second <b>bold</b></p></div></body></html>`, "First\nSecond bold"},
		{"NoParagraphs", `<html><body><div>Only divs</div></body></html>`, ""},
		{"Whitespace", `<p>  padded  </p>`, "padded"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParagraphText([]byte(tc.html))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExtractURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/article":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, `<html><body><p>Go is fast.</p><p>Go is simple.</p></body></html>`)
		case "/empty":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, `<html><body><img src="x.png"></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	e := NewExtractor(Options{URLStrategy: StrategyParagraphs, UserAgent: "test", Timeout: 5 * time.Second}, zap.NewNop())

	text, err := e.Extract(context.Background(), Source{URL: srv.URL + "/article"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Go is fast.\nGo is simple." {
		t.Errorf("unexpected text %q", text)
	}

	text, err = e.Extract(context.Background(), Source{URL: srv.URL + "/empty"})
	if err != nil {
		t.Fatalf("empty page must not be an error, got %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}

	_, err = e.Extract(context.Background(), Source{URL: srv.URL + "/missing"})
	var ee *models.ExtractionError
	if !errors.As(err, &ee) || ee.Kind != models.ExtractFetch {
		t.Fatalf("expected fetch ExtractionError, got %v", err)
	}

	_, err = e.Extract(context.Background(), Source{URL: "ftp://example.com/file"})
	if !errors.Is(err, models.ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}
}
