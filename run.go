package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/CVSRohit/PodcastGen/extract"
	"github.com/CVSRohit/PodcastGen/models"
	"github.com/CVSRohit/PodcastGen/services"
)

var runFlags struct {
	pdf        string
	url        string
	audience   string
	host       string
	guest      string
	apiKey     string
	script     string
	saveScript string
	out        string
	skipSynth  bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and write the podcast to a file",
	Long: `Extract text from a PDF or URL, generate a dialogue and synthesize it.

The dialogue can be saved with --save-script, edited by hand, and fed back
with --script to skip generation.

Example:
  podcastgen run --url https://go.dev/blog/go1.23 --audience "backend engineers" \
      --host Alex --guest Sam --out episode.mp3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return runPipeline(cmd.Context(), a, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.pdf, "pdf", "", "path to a PDF file")
	f.StringVar(&runFlags.url, "url", "", "web page URL")
	f.StringVar(&runFlags.audience, "audience", "", "who the podcast is for")
	f.StringVar(&runFlags.host, "host", "", "host name")
	f.StringVar(&runFlags.guest, "guest", "", "guest name")
	f.StringVar(&runFlags.apiKey, "api-key", "", "API key (defaults to the provider's environment variable)")
	f.StringVar(&runFlags.script, "script", "", "use an edited dialogue file instead of generating one")
	f.StringVar(&runFlags.saveScript, "save-script", "", "write the dialogue as editable text")
	f.StringVarP(&runFlags.out, "out", "o", "podcast.mp3", "output MP3 file")
	f.BoolVar(&runFlags.skipSynth, "no-audio", false, "stop after the dialogue")
	runCmd.MarkFlagsMutuallyExclusive("pdf", "url", "script")
}

func runPipeline(ctx context.Context, a *app, stdout, stderr io.Writer) error {
	apiKey, err := a.services.ResolveAPIKey(runFlags.apiKey)
	if err != nil {
		return err
	}

	var d models.Dialogue
	if runFlags.script != "" {
		data, err := os.ReadFile(runFlags.script)
		if err != nil {
			return err
		}
		if d, err = models.ParseDialogue(string(data)); err != nil {
			return fmt.Errorf("%s: %w", runFlags.script, err)
		}
	} else {
		if d, err = generate(ctx, a, apiKey); err != nil {
			return err
		}
	}
	fmt.Fprintln(stdout, renderDialogue(d))

	if runFlags.saveScript != "" {
		if err := os.WriteFile(runFlags.saveScript, []byte(models.FormatDialogue(d)+"\n"), 0o644); err != nil {
			return err
		}
	}
	if runFlags.skipSynth {
		return nil
	}

	podcast, err := a.services.Synthesize(ctx, d, apiKey, func(e services.ProgressEvent) {
		if e.Done {
			fmt.Fprintf(stderr, "%s %d/%d %s\n", styles.dim.Render("voiced"), e.Turn+1, e.Total, e.Role)
		}
	})
	if err != nil {
		return err
	}
	if err := copyFile(runFlags.out, podcast.Path); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s %s (%s)\n", styles.title.Render("Saved"), runFlags.out, podcast.Duration.Round(time.Second))
	return nil
}

func generate(ctx context.Context, a *app, apiKey string) (models.Dialogue, error) {
	src := extract.Source{URL: runFlags.url}
	if runFlags.pdf != "" {
		data, err := os.ReadFile(runFlags.pdf)
		if err != nil {
			return models.Dialogue{}, err
		}
		src = extract.Source{Name: runFlags.pdf, PDF: data}
	}
	if src.URL == "" && len(src.PDF) == 0 {
		return models.Dialogue{}, errors.New("one of --pdf, --url or --script is required")
	}

	text, err := a.services.Extract(ctx, src)
	if err != nil {
		return models.Dialogue{}, err
	}
	if strings.TrimSpace(text) == "" {
		return models.Dialogue{}, models.ErrNoText
	}

	return a.services.GenerateDialogue(ctx, services.GenerateRequest{
		Text:     text,
		Audience: runFlags.audience,
		Speakers: models.Speakers{HostName: runFlags.host, GuestName: runFlags.guest},
	}, apiKey)
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
