// Package translation is the gateway for all LLM-backed language
// operations: text translation (plain and streaming), language
// detection, audio transcription and translation, and subtitle
// generation with timed segments.
package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"edulingua/errors"
	"edulingua/models"
	"edulingua/provider"

	"github.com/rs/zerolog"
)

type Config struct {
	// Model is the chat model used for translation and detection.
	Model string
}

type Service interface {
	TranslateText(ctx context.Context, req models.TranslationRequest) (*models.TranslationResult, error)
	TranslateTextStream(ctx context.Context, req models.TranslationRequest, onChunk func(string)) (string, error)

	// DetectLanguage never fails: empty input and provider errors both
	// degrade to the zero-confidence unknown sentinel. This asymmetry
	// with the sibling operations is deliberate; callers treat detection
	// as a soft hint and must check Confidence.
	DetectLanguage(ctx context.Context, text string) models.DetectionResult

	TranscribeAudio(ctx context.Context, fileName string, media io.Reader, languageHint string) (*models.TranscriptionResult, error)
	TranslateAudio(ctx context.Context, fileName string, media io.Reader, targetLanguage string) (*models.AudioTranslationResult, error)
	GenerateSubtitles(ctx context.Context, fileName string, media io.Reader, targetLanguages []string, onProgress func(models.SubtitleProgress)) (*models.SubtitleSet, error)
}

type service struct {
	provider provider.Provider
	config   Config
	logger   zerolog.Logger
}

func NewService(p provider.Provider, config Config, logger zerolog.Logger) Service {
	if config.Model == "" {
		config.Model = "gpt-4o"
	}
	return &service{
		provider: p,
		config:   config,
		logger:   logger.With().Str("component", "translation").Logger(),
	}
}

var translationSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"translatedText": {"type": "string"},
		"detectedLanguage": {"type": "string"},
		"confidence": {"type": "number"},
		"wordCount": {"type": "number"}
	},
	"required": ["translatedText", "detectedLanguage", "confidence", "wordCount"],
	"additionalProperties": false
}`)

var detectionSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"language": {"type": "string"},
		"languageCode": {"type": "string"},
		"confidence": {"type": "number"},
		"script": {"type": "string"}
	},
	"required": ["language", "languageCode", "confidence", "script"],
	"additionalProperties": false
}`)

var cueBatchSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"translations": {
			"type": "array",
			"items": {"type": "string"}
		}
	},
	"required": ["translations"],
	"additionalProperties": false
}`)

func (s *service) TranslateText(ctx context.Context, req models.TranslationRequest) (*models.TranslationResult, error) {
	const op = "TranslationService.TranslateText"

	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.InvalidInput(op, nil, "Text is required for translation")
	}
	if req.TargetLanguage == "" {
		return nil, errors.InvalidInput(op, nil, "Target language is required")
	}

	sourceLang := LanguageName(req.SourceLanguage)
	targetLang := LanguageName(req.TargetLanguage)

	raw, err := s.provider.ChatJSON(ctx, provider.ChatRequest{
		Model:       s.config.Model,
		System:      translationPrompt(sourceLang, targetLang, req.Options),
		User:        req.Text,
		Temperature: 0.3,
		MaxTokens:   4000,
		SchemaName:  "translation_response",
		Schema:      translationSchema,
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		TranslatedText   string  `json:"translatedText"`
		DetectedLanguage string  `json:"detectedLanguage"`
		Confidence       float64 `json:"confidence"`
		WordCount        int     `json:"wordCount"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, errors.Provider(op, err, "Malformed translation response")
	}
	if decoded.TranslatedText == "" {
		return nil, errors.Provider(op, nil, "Provider returned empty translation")
	}

	result := &models.TranslationResult{
		TranslatedText:   decoded.TranslatedText,
		DetectedLanguage: decoded.DetectedLanguage,
		Confidence:       clamp01(decoded.Confidence),
		WordCount:        max0(decoded.WordCount),
		SourceLanguage:   sourceLang,
		TargetLanguage:   targetLang,
		Timestamp:        time.Now(),
	}

	s.logger.Debug().
		Str("source", sourceLang).
		Str("target", targetLang).
		Int("word_count", result.WordCount).
		Msg("Translation completed")

	return result, nil
}

func (s *service) TranslateTextStream(ctx context.Context, req models.TranslationRequest, onChunk func(string)) (string, error) {
	const op = "TranslationService.TranslateTextStream"

	if strings.TrimSpace(req.Text) == "" {
		return "", errors.InvalidInput(op, nil, "Text is required for translation")
	}
	if req.TargetLanguage == "" {
		return "", errors.InvalidInput(op, nil, "Target language is required")
	}

	sourceLang := LanguageName(req.SourceLanguage)
	targetLang := LanguageName(req.TargetLanguage)

	system := fmt.Sprintf(
		"You are a professional educational translator. Translate from %s to %s maintaining educational context and accuracy.",
		sourceLang, targetLang,
	)

	// Chunks already delivered through onChunk are not rolled back on a
	// mid-stream error; the caller decides whether to discard them.
	return s.provider.ChatStream(ctx, provider.ChatRequest{
		Model:       s.config.Model,
		System:      system,
		User:        req.Text,
		Temperature: 0.3,
	}, onChunk)
}

func (s *service) DetectLanguage(ctx context.Context, text string) models.DetectionResult {
	const op = "TranslationService.DetectLanguage"

	if strings.TrimSpace(text) == "" {
		return models.UnknownDetection()
	}

	sample := text
	if len(sample) > 500 {
		cut := 500
		// Back up to a rune boundary so the sample never ends mid-rune.
		for cut > 0 && !utf8.RuneStart(sample[cut]) {
			cut--
		}
		sample = sample[:cut]
	}

	raw, err := s.provider.ChatJSON(ctx, provider.ChatRequest{
		Model:       s.config.Model,
		System:      "You are a language detection expert. Analyze the given text and identify its language.",
		User:        fmt.Sprintf("Detect the language of this text: %q", sample),
		Temperature: 0.1,
		MaxTokens:   200,
		SchemaName:  "language_detection",
		Schema:      detectionSchema,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Language detection degraded to unknown")
		return models.UnknownDetection()
	}

	var decoded models.DetectionResult
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded.LanguageCode == "" {
		s.logger.Warn().Err(err).Msg("Language detection response unusable")
		return models.UnknownDetection()
	}

	decoded.Confidence = clamp01(decoded.Confidence)
	return decoded
}

// TranscribeAudio assumes the media already passed the audio/video file
// policy; it does not re-validate.
func (s *service) TranscribeAudio(ctx context.Context, fileName string, media io.Reader, languageHint string) (*models.TranscriptionResult, error) {
	result, err := s.provider.Transcribe(ctx, provider.TranscribeRequest{
		FileName: fileName,
		Reader:   media,
		Language: languageHint,
	})
	if err != nil {
		return nil, err
	}

	segments := make([]models.Segment, len(result.Segments))
	for i, seg := range result.Segments {
		segments[i] = models.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}

	return &models.TranscriptionResult{
		Text:      result.Text,
		Language:  result.Language,
		Duration:  result.Duration,
		Segments:  segments,
		Timestamp: time.Now(),
	}, nil
}

// TranslateAudio transcribes then translates. If transcription fails the
// translation step is never attempted, and whichever stage fails first
// determines the returned error.
func (s *service) TranslateAudio(ctx context.Context, fileName string, media io.Reader, targetLanguage string) (*models.AudioTranslationResult, error) {
	transcription, err := s.TranscribeAudio(ctx, fileName, media, "")
	if err != nil {
		return nil, err
	}

	translated, err := s.TranslateText(ctx, models.TranslationRequest{
		Text:           transcription.Text,
		SourceLanguage: transcription.Language,
		TargetLanguage: targetLanguage,
	})
	if err != nil {
		return nil, err
	}

	return &models.AudioTranslationResult{
		OriginalText:   transcription.Text,
		TranslatedText: translated.TranslatedText,
		SourceLanguage: transcription.Language,
		TargetLanguage: targetLanguage,
		Duration:       transcription.Duration,
		Confidence:     translated.Confidence,
		Timestamp:      time.Now(),
	}, nil
}

func (s *service) GenerateSubtitles(ctx context.Context, fileName string, media io.Reader, targetLanguages []string, onProgress func(models.SubtitleProgress)) (*models.SubtitleSet, error) {
	report := newProgressReporter(onProgress)

	report("transcribing", 10)
	transcription, err := s.TranscribeAudio(ctx, fileName, media, "")
	if err != nil {
		return nil, err
	}

	report("formatting", 30)
	original := make([]models.SubtitleCue, len(transcription.Segments))
	for i, seg := range transcription.Segments {
		original[i] = models.SubtitleCue{
			ID:    i + 1,
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		}
	}

	translations := make(map[string][]models.SubtitleCue)
	for i, lang := range targetLanguages {
		progress := 30 + int(float64(i+1)/float64(len(targetLanguages))*60)
		report("translating_"+lang, progress)

		translated, err := s.translateCues(ctx, original, transcription.Language, lang)
		if err != nil {
			return nil, err
		}
		translations[lang] = translated
	}

	report("complete", 100)

	return &models.SubtitleSet{
		OriginalLanguage: transcription.Language,
		Original:         original,
		Translations:     translations,
		Duration:         transcription.Duration,
		Timestamp:        time.Now(),
	}, nil
}

// translateCues translates one cue track as a single batch, asking the
// provider for a JSON array with exactly one translation per cue. Cues
// the provider fails to cover keep their original text, so timing never
// drifts even when the translated line count mismatches.
func (s *service) translateCues(ctx context.Context, cues []models.SubtitleCue, sourceLang, targetLang string) ([]models.SubtitleCue, error) {
	const op = "TranslationService.translateCues"

	if len(cues) == 0 {
		return nil, nil
	}

	var user strings.Builder
	user.WriteString("Translate the following subtitle cues. Return a JSON object with a \"translations\" array holding the translated text for each cue, in the same order and count.\n\nInput cues:\n")
	for _, cue := range cues {
		fmt.Fprintf(&user, "[%d] %s\n", cue.ID, cue.Text)
	}
	fmt.Fprintf(&user, "\nReturn exactly %d translations.", len(cues))

	system := fmt.Sprintf(
		"You are a professional subtitle translator. Translate each cue from %s to %s. Keep translations concise enough to read in the cue's on-screen time.",
		LanguageName(sourceLang), LanguageName(targetLang),
	)

	raw, err := s.provider.ChatJSON(ctx, provider.ChatRequest{
		Model:       s.config.Model,
		System:      system,
		User:        user.String(),
		Temperature: 0.3,
		SchemaName:  "cue_translations",
		Schema:      cueBatchSchema,
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Translations []string `json:"translations"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, errors.Provider(op, err, "Malformed cue translation response")
	}

	if len(decoded.Translations) != len(cues) {
		s.logger.Warn().
			Int("expected", len(cues)).
			Int("got", len(decoded.Translations)).
			Str("target", targetLang).
			Msg("Cue translation count mismatch, keeping originals for the gap")
	}

	result := make([]models.SubtitleCue, len(cues))
	for i, cue := range cues {
		result[i] = cue
		if i < len(decoded.Translations) && decoded.Translations[i] != "" {
			result[i].Text = decoded.Translations[i]
		}
	}

	return result, nil
}

// newProgressReporter wraps the callback with the monotonicity
// guarantee: reported progress never decreases and never exceeds 100.
func newProgressReporter(onProgress func(models.SubtitleProgress)) func(string, int) {
	last := 0
	return func(step string, progress int) {
		if onProgress == nil {
			return
		}
		if progress < last {
			progress = last
		}
		if progress > 100 {
			progress = 100
		}
		last = progress
		onProgress(models.SubtitleProgress{Step: step, Progress: progress})
	}
}

func translationPrompt(sourceLang, targetLang string, opts models.TranslationOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"You are a professional educational translator specializing in academic content. "+
			"Translate the following text from %s to %s. "+
			"Maintain educational context, preserve formatting, and ensure accuracy for student comprehension. "+
			"If the source language is auto-detect, first identify the language then translate.",
		sourceLang, targetLang,
	)
	if opts.Tone != "" {
		fmt.Fprintf(&b, " Use a %s tone.", opts.Tone)
	}
	if opts.Formality != "" {
		fmt.Fprintf(&b, " Formality level: %s.", opts.Formality)
	}
	if opts.Subject != "" {
		fmt.Fprintf(&b, " The subject area is %s.", opts.Subject)
	}
	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
