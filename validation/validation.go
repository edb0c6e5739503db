package validation

import (
	"mime/multipart"
	"net/url"
	"strings"

	"edulingua/config"
	"edulingua/errors"
	"edulingua/media"
)

type Validator struct {
	config *config.Config
}

func NewValidator(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// ValidateTranslationInput checks the text/target precondition shared by
// the translate operations.
func (v *Validator) ValidateTranslationInput(text, targetLanguage string) error {
	const op = "Validator.ValidateTranslationInput"

	if strings.TrimSpace(text) == "" {
		return errors.InvalidInput(op, nil, "Text is required")
	}
	if targetLanguage == "" {
		return errors.InvalidInput(op, nil, "Target language is required")
	}

	return nil
}

// ValidateYouTubeURL performs URL validation before id extraction.
func (v *Validator) ValidateYouTubeURL(urlStr string) error {
	const op = "Validator.ValidateYouTubeURL"

	if urlStr == "" {
		return errors.InvalidURL(op, nil, "URL is required")
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return errors.InvalidURL(op, err, "Invalid URL format")
	}

	// Protocol validation
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.InvalidURL(op, nil, "URL must use HTTP or HTTPS")
	}

	// Domain validation
	host := parsedURL.Hostname()
	if !strings.Contains(host, "youtube.com") && !strings.Contains(host, "youtu.be") {
		return errors.InvalidURL(op, nil, "Only YouTube URLs are supported")
	}

	return nil
}

// ValidateUpload checks an uploaded file against the policy for purpose.
func (v *Validator) ValidateUpload(header *multipart.FileHeader, purpose media.Purpose) error {
	const op = "Validator.ValidateUpload"

	if header == nil {
		return errors.InvalidInput(op, nil, "File is required")
	}

	mimeType := header.Header.Get("Content-Type")
	if verdict := media.ValidateFile(mimeType, header.Size, purpose); !verdict.Valid {
		return errors.InvalidInput(op, nil, verdict.Error)
	}

	return nil
}
