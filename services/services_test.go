package services

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/llm"
	"github.com/CVSRohit/PodcastGen/models"
	"github.com/CVSRohit/PodcastGen/prompt"
	"github.com/CVSRohit/PodcastGen/storage"
)

type fakeModel struct {
	resp   string
	err    error
	calls  int
	prompt string
	params llm.Params
}

func (f *fakeModel) Complete(_ context.Context, _ string, prompt string, p llm.Params) (string, error) {
	f.calls++
	f.prompt = prompt
	f.params = p
	return f.resp, f.err
}

type speechCall struct {
	voice string
	text  string
}

// fakeSpeech answers each call with a clip of n frames, n being the
// 1-based call number, so clip order is visible in the output.
type fakeSpeech struct {
	calls  []speechCall
	failAt int
}

func (f *fakeSpeech) Synthesize(_ context.Context, _ string, voice, text string) ([]byte, error) {
	f.calls = append(f.calls, speechCall{voice: voice, text: text})
	n := len(f.calls)
	if f.failAt > 0 && n == f.failAt {
		return nil, errors.New("speech backend unavailable")
	}
	return mp3Clip(n), nil
}

func mp3Clip(frames int) []byte {
	var b []byte
	for i := 0; i < frames; i++ {
		f := make([]byte, 417)
		copy(f, []byte{0xFF, 0xFB, 0x90, 0x64})
		b = append(b, f...)
	}
	return b
}

type fixture struct {
	svc       *Services
	model     *fakeModel
	speech    *fakeSpeech
	outputDir string
	scratch   string
}

func newFixture(t *testing.T, defaultKey string) *fixture {
	t.Helper()
	tmpl, err := prompt.Default()
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		model:     &fakeModel{},
		speech:    &fakeSpeech{},
		outputDir: t.TempDir(),
		scratch:   t.TempDir(),
	}
	ws, err := storage.NewWorkspace(f.outputDir, f.scratch)
	if err != nil {
		t.Fatal(err)
	}
	f.svc = NewServices(Options{
		Model:      f.model,
		Params:     llm.Params{Model: "gpt-4o-mini", MaxOutputTokens: 1000, Temperature: 0.7},
		Prompt:     tmpl,
		Speech:     f.speech,
		Voices:     models.Voices{Host: "echo", Guest: "shimmer"},
		Workspace:  ws,
		DefaultKey: defaultKey,
		Logger:     zap.NewNop(),
	})
	return f
}

func entries(t *testing.T, dir string) []string {
	t.Helper()
	es, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range es {
		names = append(names, e.Name())
	}
	return names
}

func TestResolveAPIKey(t *testing.T) {
	f := newFixture(t, "env-key")
	if k, _ := f.svc.ResolveAPIKey(" session-key "); k != "session-key" {
		t.Errorf("expected session key, got %q", k)
	}
	if k, _ := f.svc.ResolveAPIKey(""); k != "env-key" {
		t.Errorf("expected env key, got %q", k)
	}

	f = newFixture(t, "")
	if _, err := f.svc.ResolveAPIKey(""); !errors.Is(err, models.ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}

func TestParseResponse(t *testing.T) {
	speakers := models.Speakers{HostName: "Alex", GuestName: "Sam"}
	testCases := []struct {
		name string
		text string
		want []models.Turn
	}{
		{
			name: "PlainPrefixes",
			text: "Host: Welcome to the show.\nGuest:   Glad to be here. \nHost: Let's go.",
			want: []models.Turn{
				{Role: models.Host, Content: "Welcome to the show."},
				{Role: models.Guest, Content: "Glad to be here."},
				{Role: models.Host, Content: "Let's go."},
			},
		},
		{
			name: "UnknownLinesDropped",
			text: "# SummarizeToday\n\nHost: Hi\n(music)\nNarrator: nope\nGuest: Hello",
			want: []models.Turn{
				{Role: models.Host, Content: "Hi"},
				{Role: models.Guest, Content: "Hello"},
			},
		},
		{
			name: "MarkdownVariants",
			text: "**Host:** Bold one\n**Guest**: Bold two\n**Host: Open bold",
			want: []models.Turn{
				{Role: models.Host, Content: "Bold one"},
				{Role: models.Guest, Content: "Bold two"},
				{Role: models.Host, Content: "Open bold"},
			},
		},
		{
			name: "SpeakerNames",
			text: "Alex: From the host\n**Sam:** From the guest",
			want: []models.Turn{
				{Role: models.Host, Content: "From the host"},
				{Role: models.Guest, Content: "From the guest"},
			},
		},
		{
			name: "ConsecutiveSameRole",
			text: "Guest: One\r\nGuest: Two",
			want: []models.Turn{
				{Role: models.Guest, Content: "One"},
				{Role: models.Guest, Content: "Two"},
			},
		},
		{
			name: "Nothing",
			text: "I cannot help with that.",
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseResponse(tc.text, speakers)
			if !reflect.DeepEqual(got.Turns, tc.want) {
				t.Errorf("expected %+v, got %+v", tc.want, got.Turns)
			}
		})
	}
}

func TestParseResponseRoundTrip(t *testing.T) {
	d := models.Dialogue{Turns: []models.Turn{
		{Role: models.Host, Content: "Hi"},
		{Role: models.Guest, Content: "Hello: there"},
		{Role: models.Host, Content: "Bye"},
	}}
	got := ParseResponse(models.FormatDialogue(d), models.Speakers{})
	if !reflect.DeepEqual(got, d) {
		t.Errorf("expected %+v, got %+v", d, got)
	}
}

func TestGenerateDialogue(t *testing.T) {
	f := newFixture(t, "")
	f.model.resp = "Intro music\nHost: Hi Sam\nGuest: Hi Alex"

	d, err := f.svc.GenerateDialogue(context.Background(), GenerateRequest{
		Text:     "Some article text.",
		Audience: "CEO of an AI company",
		Speakers: models.Speakers{HostName: "Alex", GuestName: "Sam"},
	}, "sk-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Len() != 2 || d.Turns[0].Role != models.Host || d.Turns[1].Content != "Hi Alex" {
		t.Errorf("unexpected dialogue %+v", d)
	}
	if f.model.calls != 1 {
		t.Errorf("expected one model call, got %d", f.model.calls)
	}
	if f.model.params.MaxOutputTokens != 1000 || f.model.params.Temperature != 0.7 {
		t.Errorf("unexpected params %+v", f.model.params)
	}
	for _, want := range []string{"Some article text.", "CEO of an AI company", "Alex", "Sam", "750"} {
		if !strings.Contains(f.model.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateDialogueErrors(t *testing.T) {
	testCases := []struct {
		name      string
		apiKey    string
		text      string
		resp      string
		modelErr  error
		wantIs    error
		wantCalls int
	}{
		{"MissingCredential", "", "text", "", nil, models.ErrMissingCredential, 0},
		{"EmptySource", "sk", "   ", "", nil, models.ErrNoText, 0},
		{"EmptyResponse", "sk", "text", "  ", nil, models.ErrUnexpectedResponse, 1},
		{"Transport", "sk", "text", "", context.DeadlineExceeded, context.DeadlineExceeded, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "")
			f.model.resp = tc.resp
			f.model.err = tc.modelErr

			_, err := f.svc.GenerateDialogue(context.Background(), GenerateRequest{Text: tc.text}, tc.apiKey)
			var ge *models.GenerationError
			if !errors.As(err, &ge) {
				t.Fatalf("expected GenerationError, got %v", err)
			}
			if !errors.Is(err, tc.wantIs) {
				t.Errorf("expected %v, got %v", tc.wantIs, err)
			}
			if f.model.calls != tc.wantCalls {
				t.Errorf("expected %d model calls, got %d", tc.wantCalls, f.model.calls)
			}
		})
	}
}

func TestSynthesizeOrder(t *testing.T) {
	f := newFixture(t, "")
	d := models.Dialogue{Turns: []models.Turn{
		{Role: models.Host, Content: "Hi"},
		{Role: models.Guest, Content: "Hello"},
		{Role: models.Host, Content: "Bye"},
	}}

	var events []ProgressEvent
	podcast, err := f.svc.Synthesize(context.Background(), d, "sk-test", func(e ProgressEvent) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCalls := []speechCall{{"echo", "Hi"}, {"shimmer", "Hello"}, {"echo", "Bye"}}
	if !reflect.DeepEqual(f.speech.calls, wantCalls) {
		t.Errorf("expected calls %+v, got %+v", wantCalls, f.speech.calls)
	}

	if len(podcast.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(podcast.Segments))
	}
	var offset int64
	for i, seg := range podcast.Segments {
		if seg.Index != i || seg.Role != d.Turns[i].Role {
			t.Errorf("segment %d: unexpected %+v", i, seg)
		}
		if seg.Frames != i+1 {
			t.Errorf("segment %d: expected %d frames, got %d", i, i+1, seg.Frames)
		}
		if seg.Offset != offset {
			t.Errorf("segment %d: expected offset %d, got %d", i, offset, seg.Offset)
		}
		offset += seg.Bytes
	}

	info, err := os.Stat(podcast.Path)
	if err != nil {
		t.Fatalf("podcast file missing: %v", err)
	}
	if info.Size() != offset || offset != 6*417 {
		t.Errorf("expected %d bytes, file has %d", offset, info.Size())
	}
	if len(events) != 6 || !events[5].Done || events[5].Turn != 2 || events[0].Done {
		t.Errorf("unexpected progress events %+v", events)
	}
	if names := entries(t, f.scratch); len(names) != 0 {
		t.Errorf("scratch not cleaned: %v", names)
	}
}

func TestSynthesizeTurnFailureLeavesNoOutput(t *testing.T) {
	f := newFixture(t, "")
	f.speech.failAt = 2
	d := models.Dialogue{Turns: []models.Turn{
		{Role: models.Host, Content: "Hi"},
		{Role: models.Guest, Content: "Hello"},
		{Role: models.Host, Content: "Bye"},
	}}

	podcast, err := f.svc.Synthesize(context.Background(), d, "sk-test", nil)
	if podcast != nil {
		t.Errorf("expected no podcast, got %+v", podcast)
	}
	var se *models.SynthesisError
	if !errors.As(err, &se) || se.Turn != 1 || se.Role != models.Guest {
		t.Fatalf("expected SynthesisError for turn 1, got %v", err)
	}
	if len(f.speech.calls) != 2 {
		t.Errorf("expected the run to stop after the failing turn, got %d calls", len(f.speech.calls))
	}
	if names := entries(t, f.outputDir); len(names) != 0 {
		t.Errorf("expected empty output dir, got %v", names)
	}
	if names := entries(t, f.scratch); len(names) != 0 {
		t.Errorf("scratch not cleaned: %v", names)
	}
}

func TestSynthesizePreconditions(t *testing.T) {
	f := newFixture(t, "")
	d := models.Dialogue{Turns: []models.Turn{{Role: models.Host, Content: "Hi"}}}

	if _, err := f.svc.Synthesize(context.Background(), d, "", nil); !errors.Is(err, models.ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
	if _, err := f.svc.Synthesize(context.Background(), models.Dialogue{}, "sk", nil); !errors.Is(err, models.ErrEmptyDialogue) {
		t.Errorf("expected ErrEmptyDialogue, got %v", err)
	}
	if len(f.speech.calls) != 0 {
		t.Errorf("expected no speech calls, got %d", len(f.speech.calls))
	}

	bad := models.Dialogue{Turns: []models.Turn{{Role: "Narrator", Content: "x"}}}
	if _, err := f.svc.Synthesize(context.Background(), bad, "sk", nil); !errors.Is(err, models.ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole, got %v", err)
	}
}

type garbageSpeech struct{}

func (garbageSpeech) Synthesize(context.Context, string, string, string) ([]byte, error) {
	return []byte("<html>error</html>"), nil
}

func TestSynthesizeRejectsNonAudio(t *testing.T) {
	f := newFixture(t, "")
	f.svc.speech = garbageSpeech{}
	d := models.Dialogue{Turns: []models.Turn{{Role: models.Host, Content: "Hi"}}}

	_, err := f.svc.Synthesize(context.Background(), d, "sk", nil)
	if !errors.Is(err, models.ErrUnexpectedResponse) {
		t.Fatalf("expected ErrUnexpectedResponse, got %v", err)
	}
	if names := entries(t, f.outputDir); len(names) != 0 {
		t.Errorf("expected empty output dir, got %v", names)
	}
}
