package models

import "time"

// TranslationOptions tune the instruction given to the provider. All
// fields are optional free-form hints.
type TranslationOptions struct {
	Tone      string `json:"tone,omitempty"`
	Formality string `json:"formality,omitempty"`
	Subject   string `json:"subject,omitempty"`
}

type TranslationRequest struct {
	Text           string             `json:"text"`
	SourceLanguage string             `json:"source_language"`
	TargetLanguage string             `json:"target_language"`
	Options        TranslationOptions `json:"options"`
}

// TranslationResult is immutable once created; Timestamp is stamped when
// the provider call completes.
type TranslationResult struct {
	TranslatedText   string    `json:"translated_text"`
	DetectedLanguage string    `json:"detected_language"`
	Confidence       float64   `json:"confidence"`
	WordCount        int       `json:"word_count"`
	SourceLanguage   string    `json:"source_language"`
	TargetLanguage   string    `json:"target_language"`
	Timestamp        time.Time `json:"timestamp"`
}

// DetectionResult never carries an error; failed detection degrades to
// the sentinel returned by UnknownDetection.
type DetectionResult struct {
	Language     string  `json:"language"`
	LanguageCode string  `json:"language_code"`
	Confidence   float64 `json:"confidence"`
	Script       string  `json:"script"`
}

// UnknownDetection is the zero-confidence fallback used both for empty
// input and for provider failure. Callers must check Confidence before
// trusting LanguageCode.
func UnknownDetection() DetectionResult {
	return DetectionResult{
		Language:     "unknown",
		LanguageCode: "auto",
		Confidence:   0,
		Script:       "unknown",
	}
}

// Segment is a time-bounded slice of transcribed speech. Segments arrive
// from the provider sorted by start time and non-overlapping.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type TranscriptionResult struct {
	Text      string    `json:"text"`
	Language  string    `json:"language"`
	Duration  float64   `json:"duration"`
	Segments  []Segment `json:"segments"`
	Timestamp time.Time `json:"timestamp"`
}

type AudioTranslationResult struct {
	OriginalText   string    `json:"original_text"`
	TranslatedText string    `json:"translated_text"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	Duration       float64   `json:"duration"`
	Confidence     float64   `json:"confidence"`
	Timestamp      time.Time `json:"timestamp"`
}

// SubtitleCue is one numbered subtitle block. IDs are 1-based and
// sequential within a track.
type SubtitleCue struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SubtitleSet holds the original-language track plus one translated
// track per requested target language.
type SubtitleSet struct {
	OriginalLanguage string                   `json:"original_language"`
	Original         []SubtitleCue            `json:"original_subtitles"`
	Translations     map[string][]SubtitleCue `json:"translated_subtitles"`
	Duration         float64                  `json:"duration"`
	Timestamp        time.Time                `json:"timestamp"`
}

// Track returns the cue track for lang, falling back to the original
// track when lang matches the detected language or no translation exists.
func (s *SubtitleSet) Track(lang string) ([]SubtitleCue, bool) {
	if lang == "" || lang == s.OriginalLanguage {
		return s.Original, true
	}
	cues, ok := s.Translations[lang]
	return cues, ok
}

// SubtitleProgress is reported during subtitle generation. Progress is
// monotonically non-decreasing and ends at exactly 100.
type SubtitleProgress struct {
	Step     string `json:"step"`
	Progress int    `json:"progress"`
}

// FileValidationResult is a pure verdict; validation never errors.
type FileValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}
