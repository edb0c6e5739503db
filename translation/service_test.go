package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"edulingua/errors"
	"edulingua/models"
	"edulingua/provider"

	"github.com/rs/zerolog"
)

// stubProvider counts calls and delegates to per-method hooks. Methods
// without a hook fail the request so tests notice unexpected traffic.
type stubProvider struct {
	chatCalls       int
	streamCalls     int
	transcribeCalls int

	chatFunc       func(req provider.ChatRequest) ([]byte, error)
	streamFunc     func(req provider.ChatRequest, onChunk func(string)) (string, error)
	transcribeFunc func(req provider.TranscribeRequest) (*provider.Transcription, error)
}

func (s *stubProvider) ChatJSON(_ context.Context, req provider.ChatRequest) ([]byte, error) {
	s.chatCalls++
	if s.chatFunc == nil {
		return nil, errors.Provider("stub.ChatJSON", nil, "no chat stub configured")
	}
	return s.chatFunc(req)
}

func (s *stubProvider) ChatStream(_ context.Context, req provider.ChatRequest, onChunk func(string)) (string, error) {
	s.streamCalls++
	if s.streamFunc == nil {
		return "", errors.Provider("stub.ChatStream", nil, "no stream stub configured")
	}
	return s.streamFunc(req, onChunk)
}

func (s *stubProvider) Transcribe(_ context.Context, req provider.TranscribeRequest) (*provider.Transcription, error) {
	s.transcribeCalls++
	if s.transcribeFunc == nil {
		return nil, errors.Provider("stub.Transcribe", nil, "no transcribe stub configured")
	}
	return s.transcribeFunc(req)
}

func newTestService(p provider.Provider) Service {
	return NewService(p, Config{Model: "gpt-4o"}, zerolog.Nop())
}

func TestTranslateTextRejectsEmptyInput(t *testing.T) {
	stub := &stubProvider{}
	svc := newTestService(stub)

	tests := []struct {
		name string
		req  models.TranslationRequest
	}{
		{"empty text", models.TranslationRequest{Text: "", TargetLanguage: "es"}},
		{"whitespace text", models.TranslationRequest{Text: "   \n\t", TargetLanguage: "es"}},
		{"empty target", models.TranslationRequest{Text: "hello", TargetLanguage: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.TranslateText(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.IsKind(err, errors.KindValidation) {
				t.Errorf("error kind = %v, want validation", err)
			}
		})
	}

	if stub.chatCalls != 0 {
		t.Errorf("provider called %d times for invalid input, want 0", stub.chatCalls)
	}
}

func TestTranslateTextSuccess(t *testing.T) {
	stub := &stubProvider{
		chatFunc: func(req provider.ChatRequest) ([]byte, error) {
			if req.SchemaName != "translation_response" {
				t.Errorf("schema name = %q, want translation_response", req.SchemaName)
			}
			if !strings.Contains(req.System, "Spanish") {
				t.Errorf("system prompt missing target language name: %q", req.System)
			}
			return []byte(`{"translatedText":"hola","detectedLanguage":"English","confidence":1.7,"wordCount":-2}`), nil
		},
	}
	svc := newTestService(stub)

	result, err := svc.TranslateText(context.Background(), models.TranslationRequest{
		Text:           "hello",
		SourceLanguage: "en",
		TargetLanguage: "es",
	})
	if err != nil {
		t.Fatalf("TranslateText: %v", err)
	}

	if result.TranslatedText != "hola" {
		t.Errorf("TranslatedText = %q, want hola", result.TranslatedText)
	}
	if result.Confidence != 1 {
		t.Errorf("Confidence = %v, want clamped to 1", result.Confidence)
	}
	if result.WordCount != 0 {
		t.Errorf("WordCount = %d, want clamped to 0", result.WordCount)
	}
	if result.SourceLanguage != "English" || result.TargetLanguage != "Spanish" {
		t.Errorf("languages = %q -> %q, want English -> Spanish", result.SourceLanguage, result.TargetLanguage)
	}
	if result.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestTranslateTextUnknownLanguagePassthrough(t *testing.T) {
	stub := &stubProvider{
		chatFunc: func(req provider.ChatRequest) ([]byte, error) {
			if !strings.Contains(req.System, "tlh") {
				t.Errorf("system prompt should carry unknown code verbatim: %q", req.System)
			}
			return []byte(`{"translatedText":"x","detectedLanguage":"English","confidence":0.9,"wordCount":1}`), nil
		},
	}
	svc := newTestService(stub)

	result, err := svc.TranslateText(context.Background(), models.TranslationRequest{
		Text:           "hello",
		TargetLanguage: "tlh",
	})
	if err != nil {
		t.Fatalf("TranslateText: %v", err)
	}
	if result.TargetLanguage != "tlh" {
		t.Errorf("TargetLanguage = %q, want pass-through tlh", result.TargetLanguage)
	}
}

func TestTranslateTextProviderFailure(t *testing.T) {
	stub := &stubProvider{
		chatFunc: func(provider.ChatRequest) ([]byte, error) {
			return nil, errors.Provider("stub", nil, "upstream down")
		},
	}
	svc := newTestService(stub)

	_, err := svc.TranslateText(context.Background(), models.TranslationRequest{Text: "hi", TargetLanguage: "es"})
	if !errors.IsKind(err, errors.KindProvider) {
		t.Errorf("error kind = %v, want provider", err)
	}
}

func TestTranslateTextEmptyProviderResult(t *testing.T) {
	stub := &stubProvider{
		chatFunc: func(provider.ChatRequest) ([]byte, error) {
			return []byte(`{"translatedText":"","detectedLanguage":"English","confidence":1,"wordCount":0}`), nil
		},
	}
	svc := newTestService(stub)

	_, err := svc.TranslateText(context.Background(), models.TranslationRequest{Text: "hi", TargetLanguage: "es"})
	if !errors.IsKind(err, errors.KindProvider) {
		t.Errorf("error kind = %v, want provider for empty translation", err)
	}
}

func TestTranslateTextOptionsInPrompt(t *testing.T) {
	var system string
	stub := &stubProvider{
		chatFunc: func(req provider.ChatRequest) ([]byte, error) {
			system = req.System
			return []byte(`{"translatedText":"x","detectedLanguage":"English","confidence":1,"wordCount":1}`), nil
		},
	}
	svc := newTestService(stub)

	_, err := svc.TranslateText(context.Background(), models.TranslationRequest{
		Text:           "hello",
		TargetLanguage: "fr",
		Options: models.TranslationOptions{
			Tone:      "casual",
			Formality: "informal",
			Subject:   "chemistry",
		},
	})
	if err != nil {
		t.Fatalf("TranslateText: %v", err)
	}

	for _, want := range []string{"casual tone", "informal", "chemistry"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q: %q", want, system)
		}
	}
}

func TestTranslateTextStreamOrdering(t *testing.T) {
	stub := &stubProvider{
		streamFunc: func(_ provider.ChatRequest, onChunk func(string)) (string, error) {
			for _, c := range []string{"Ho", "la", " mundo"} {
				onChunk(c)
			}
			return "Hola mundo", nil
		},
	}
	svc := newTestService(stub)

	var chunks []string
	full, err := svc.TranslateTextStream(context.Background(), models.TranslationRequest{
		Text:           "hello world",
		TargetLanguage: "es",
	}, func(c string) { chunks = append(chunks, c) })
	if err != nil {
		t.Fatalf("TranslateTextStream: %v", err)
	}

	if full != "Hola mundo" {
		t.Errorf("full text = %q, want Hola mundo", full)
	}
	if joined := strings.Join(chunks, ""); joined != full {
		t.Errorf("concatenated chunks = %q, want %q", joined, full)
	}
}

func TestTranslateTextStreamRejectsEmptyInput(t *testing.T) {
	stub := &stubProvider{}
	svc := newTestService(stub)

	_, err := svc.TranslateTextStream(context.Background(), models.TranslationRequest{Text: "  "}, nil)
	if !errors.IsKind(err, errors.KindValidation) {
		t.Errorf("error kind = %v, want validation", err)
	}
	if stub.streamCalls != 0 {
		t.Errorf("provider called %d times for invalid input, want 0", stub.streamCalls)
	}
}

func TestDetectLanguageEmptyInput(t *testing.T) {
	stub := &stubProvider{}
	svc := newTestService(stub)

	result := svc.DetectLanguage(context.Background(), "   ")
	if result != models.UnknownDetection() {
		t.Errorf("DetectLanguage(blank) = %+v, want unknown sentinel", result)
	}
	if stub.chatCalls != 0 {
		t.Errorf("provider called %d times for blank input, want 0", stub.chatCalls)
	}
}

func TestDetectLanguageDegradesOnFailure(t *testing.T) {
	tests := []struct {
		name string
		stub *stubProvider
	}{
		{
			"provider error",
			&stubProvider{chatFunc: func(provider.ChatRequest) ([]byte, error) {
				return nil, errors.Provider("stub", nil, "boom")
			}},
		},
		{
			"malformed json",
			&stubProvider{chatFunc: func(provider.ChatRequest) ([]byte, error) {
				return []byte("not json"), nil
			}},
		},
		{
			"missing language code",
			&stubProvider{chatFunc: func(provider.ChatRequest) ([]byte, error) {
				return []byte(`{"language":"","languageCode":"","confidence":0.5,"script":"Latin"}`), nil
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newTestService(tt.stub).DetectLanguage(context.Background(), "some text")
			if result != models.UnknownDetection() {
				t.Errorf("DetectLanguage = %+v, want unknown sentinel", result)
			}
		})
	}
}

func TestDetectLanguageSuccess(t *testing.T) {
	stub := &stubProvider{
		chatFunc: func(req provider.ChatRequest) ([]byte, error) {
			return []byte(`{"language":"Spanish","languageCode":"es","confidence":0.97,"script":"Latin"}`), nil
		},
	}
	svc := newTestService(stub)

	result := svc.DetectLanguage(context.Background(), "hola mundo")
	if result.LanguageCode != "es" || result.Language != "Spanish" {
		t.Errorf("DetectLanguage = %+v, want Spanish/es", result)
	}
	if result.Confidence != 0.97 {
		t.Errorf("Confidence = %v, want 0.97", result.Confidence)
	}
}

func TestDetectLanguageTruncatesSample(t *testing.T) {
	var user string
	stub := &stubProvider{
		chatFunc: func(req provider.ChatRequest) ([]byte, error) {
			user = req.User
			return []byte(`{"language":"English","languageCode":"en","confidence":1,"script":"Latin"}`), nil
		},
	}
	svc := newTestService(stub)

	svc.DetectLanguage(context.Background(), strings.Repeat("a", 2000))
	if len(user) > 600 {
		t.Errorf("detection prompt not truncated, len = %d", len(user))
	}
}

func TestDetectLanguageTruncatesOnRuneBoundary(t *testing.T) {
	var user string
	stub := &stubProvider{
		chatFunc: func(req provider.ChatRequest) ([]byte, error) {
			user = req.User
			return []byte(`{"language":"Chinese","languageCode":"zh","confidence":1,"script":"Han"}`), nil
		},
	}
	svc := newTestService(stub)

	// 3-byte runes with a byte length not divisible by 3, so a byte cut
	// at 500 would land mid-rune. A split rune survives the %q quoting
	// as a \xNN escape in the prompt.
	svc.DetectLanguage(context.Background(), strings.Repeat("世", 400))
	if strings.Contains(user, `\x`) {
		t.Errorf("detection prompt contains a split rune: %q", user)
	}
	if !utf8.ValidString(user) {
		t.Error("detection prompt is not valid UTF-8")
	}
}

func TestTranslateAudioTranscriptionFailureShortCircuits(t *testing.T) {
	stub := &stubProvider{
		transcribeFunc: func(provider.TranscribeRequest) (*provider.Transcription, error) {
			return nil, errors.Provider("stub", nil, "whisper down")
		},
	}
	svc := newTestService(stub)

	_, err := svc.TranslateAudio(context.Background(), "talk.mp3", strings.NewReader("audio"), "es")
	if !errors.IsKind(err, errors.KindProvider) {
		t.Errorf("error kind = %v, want provider", err)
	}
	if stub.chatCalls != 0 {
		t.Errorf("translation attempted after failed transcription: %d chat calls", stub.chatCalls)
	}
}

func TestTranslateAudioSuccess(t *testing.T) {
	stub := &stubProvider{
		transcribeFunc: func(req provider.TranscribeRequest) (*provider.Transcription, error) {
			return &provider.Transcription{Text: "hello world", Language: "english", Duration: 4.5}, nil
		},
		chatFunc: func(provider.ChatRequest) ([]byte, error) {
			return []byte(`{"translatedText":"hola mundo","detectedLanguage":"English","confidence":0.9,"wordCount":2}`), nil
		},
	}
	svc := newTestService(stub)

	result, err := svc.TranslateAudio(context.Background(), "talk.mp3", strings.NewReader("audio"), "es")
	if err != nil {
		t.Fatalf("TranslateAudio: %v", err)
	}

	if result.OriginalText != "hello world" || result.TranslatedText != "hola mundo" {
		t.Errorf("texts = %q / %q", result.OriginalText, result.TranslatedText)
	}
	if result.Duration != 4.5 {
		t.Errorf("Duration = %v, want 4.5", result.Duration)
	}
	if result.TargetLanguage != "es" {
		t.Errorf("TargetLanguage = %q, want es", result.TargetLanguage)
	}
}

func echoCueTranslations(t *testing.T, prefix string) func(provider.ChatRequest) ([]byte, error) {
	t.Helper()
	return func(req provider.ChatRequest) ([]byte, error) {
		// Count the "[n] text" lines in the batch prompt and answer one
		// translation per cue. Every cue line is newline-preceded.
		n := strings.Count(req.User, "\n[")
		translations := make([]string, n)
		for i := range translations {
			translations[i] = fmt.Sprintf("%s-%d", prefix, i+1)
		}
		out, err := json.Marshal(map[string][]string{"translations": translations})
		if err != nil {
			t.Fatalf("marshal stub response: %v", err)
		}
		return out, nil
	}
}

func TestGenerateSubtitlesProgress(t *testing.T) {
	stub := &stubProvider{
		transcribeFunc: func(provider.TranscribeRequest) (*provider.Transcription, error) {
			return &provider.Transcription{
				Text:     "one two",
				Language: "english",
				Duration: 8,
				Segments: []provider.TranscriptionSegment{
					{Start: 0, End: 4, Text: " one "},
					{Start: 4, End: 8, Text: "two"},
				},
			}, nil
		},
		chatFunc: echoCueTranslations(t, "tr"),
	}
	svc := newTestService(stub)

	var reports []models.SubtitleProgress
	set, err := svc.GenerateSubtitles(context.Background(), "lecture.mp4", strings.NewReader("media"),
		[]string{"es", "fr"},
		func(p models.SubtitleProgress) { reports = append(reports, p) })
	if err != nil {
		t.Fatalf("GenerateSubtitles: %v", err)
	}

	if len(reports) == 0 {
		t.Fatal("no progress reported")
	}
	last := 0
	for _, r := range reports {
		if r.Progress < last {
			t.Errorf("progress went backwards: %d after %d (%s)", r.Progress, last, r.Step)
		}
		if r.Progress > 100 {
			t.Errorf("progress exceeds 100: %d", r.Progress)
		}
		last = r.Progress
	}
	final := reports[len(reports)-1]
	if final.Step != "complete" || final.Progress != 100 {
		t.Errorf("final report = %+v, want complete/100", final)
	}

	wantSteps := []string{"transcribing", "formatting", "translating_es", "translating_fr", "complete"}
	if len(reports) != len(wantSteps) {
		t.Fatalf("got %d reports, want %d", len(reports), len(wantSteps))
	}
	for i, step := range wantSteps {
		if reports[i].Step != step {
			t.Errorf("report[%d].Step = %q, want %q", i, reports[i].Step, step)
		}
	}

	if len(set.Original) != 2 {
		t.Fatalf("got %d original cues, want 2", len(set.Original))
	}
	if set.Original[0].ID != 1 || set.Original[1].ID != 2 {
		t.Errorf("cue ids = %d, %d, want 1, 2", set.Original[0].ID, set.Original[1].ID)
	}
	if set.Original[0].Text != "one" {
		t.Errorf("cue text not trimmed: %q", set.Original[0].Text)
	}

	for _, lang := range []string{"es", "fr"} {
		track, ok := set.Translations[lang]
		if !ok {
			t.Fatalf("missing %s track", lang)
		}
		if len(track) != 2 {
			t.Fatalf("%s track has %d cues, want 2", lang, len(track))
		}
		// Timing is carried over from the original cues unchanged.
		for i := range track {
			if track[i].Start != set.Original[i].Start || track[i].End != set.Original[i].End {
				t.Errorf("%s cue %d timing drifted: %v-%v vs %v-%v",
					lang, i, track[i].Start, track[i].End, set.Original[i].Start, set.Original[i].End)
			}
		}
	}
}

func TestGenerateSubtitlesCueCountMismatch(t *testing.T) {
	stub := &stubProvider{
		transcribeFunc: func(provider.TranscribeRequest) (*provider.Transcription, error) {
			return &provider.Transcription{
				Text:     "a b c",
				Language: "english",
				Duration: 9,
				Segments: []provider.TranscriptionSegment{
					{Start: 0, End: 3, Text: "a"},
					{Start: 3, End: 6, Text: "b"},
					{Start: 6, End: 9, Text: "c"},
				},
			}, nil
		},
		chatFunc: func(provider.ChatRequest) ([]byte, error) {
			// Two translations for three cues.
			return []byte(`{"translations":["uno","dos"]}`), nil
		},
	}
	svc := newTestService(stub)

	set, err := svc.GenerateSubtitles(context.Background(), "clip.mp4", strings.NewReader("media"), []string{"es"}, nil)
	if err != nil {
		t.Fatalf("GenerateSubtitles: %v", err)
	}

	track := set.Translations["es"]
	if len(track) != 3 {
		t.Fatalf("track has %d cues, want 3", len(track))
	}
	if track[0].Text != "uno" || track[1].Text != "dos" {
		t.Errorf("translated cues = %q, %q", track[0].Text, track[1].Text)
	}
	if track[2].Text != "c" {
		t.Errorf("uncovered cue = %q, want original text c", track[2].Text)
	}
}

func TestGenerateSubtitlesNoSegments(t *testing.T) {
	stub := &stubProvider{
		transcribeFunc: func(provider.TranscribeRequest) (*provider.Transcription, error) {
			return &provider.Transcription{Text: "", Language: "english", Duration: 0}, nil
		},
	}
	svc := newTestService(stub)

	set, err := svc.GenerateSubtitles(context.Background(), "silent.mp4", strings.NewReader("media"), []string{"es"}, nil)
	if err != nil {
		t.Fatalf("GenerateSubtitles: %v", err)
	}
	if len(set.Original) != 0 {
		t.Errorf("got %d cues from empty transcription, want 0", len(set.Original))
	}
	// An empty cue track needs no provider translation call.
	if stub.chatCalls != 0 {
		t.Errorf("chat called %d times for empty track, want 0", stub.chatCalls)
	}
}

func TestGenerateSubtitlesTranslationFailure(t *testing.T) {
	stub := &stubProvider{
		transcribeFunc: func(provider.TranscribeRequest) (*provider.Transcription, error) {
			return &provider.Transcription{
				Text:     "a",
				Language: "english",
				Duration: 2,
				Segments: []provider.TranscriptionSegment{{Start: 0, End: 2, Text: "a"}},
			}, nil
		},
		chatFunc: func(provider.ChatRequest) ([]byte, error) {
			return nil, errors.Provider("stub", nil, "quota exceeded")
		},
	}
	svc := newTestService(stub)

	_, err := svc.GenerateSubtitles(context.Background(), "clip.mp4", strings.NewReader("media"), []string{"es"}, nil)
	if !errors.IsKind(err, errors.KindProvider) {
		t.Errorf("error kind = %v, want provider", err)
	}
}

func TestLanguageName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", "English"},
		{"es", "Spanish"},
		{"zh", "Chinese"},
		{"auto", "auto-detect"},
		{"xx", "xx"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := LanguageName(tt.code); got != tt.want {
			t.Errorf("LanguageName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
