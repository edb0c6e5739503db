// Package media is the ingest gateway: file policy validation, text
// extraction, YouTube URL resolution, download payloads, and processing
// job construction.
package media

import (
	"fmt"

	"edulingua/models"
)

type Purpose string

const (
	PurposeText  Purpose = "text"
	PurposeAudio Purpose = "audio"
	PurposeVideo Purpose = "video"
)

var supportedTextTypes = []string{
	"text/plain",
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/msword",
	"text/rtf",
	"text/html",
	"application/json",
}

// Audio and video share one allow-list: video containers are accepted as
// audio sources and vice versa. A deliberate simplification, not a bug.
var supportedMediaTypes = []string{
	"audio/mpeg",
	"audio/mp4",
	"audio/wav",
	"audio/webm",
	"audio/ogg",
	"video/mp4",
	"video/webm",
	"video/quicktime",
	"video/x-msvideo",
}

var maxFileSizes = map[Purpose]int64{
	PurposeText:  10 * 1024 * 1024,
	PurposeAudio: 25 * 1024 * 1024, // provider-side transcription limit
	PurposeVideo: 100 * 1024 * 1024,
}

func allowedTypes(purpose Purpose) []string {
	if purpose == PurposeText {
		return supportedTextTypes
	}
	return supportedMediaTypes
}

// ValidateFile checks a file's MIME type and size against the policy for
// the given purpose. It returns a verdict and never an error; a size
// exactly at the ceiling is valid.
func ValidateFile(mimeType string, size int64, purpose Purpose) models.FileValidationResult {
	maxSize, ok := maxFileSizes[purpose]
	if !ok {
		return models.FileValidationResult{Valid: false, Error: fmt.Sprintf("Unknown purpose: %s", purpose)}
	}

	if !containsType(allowedTypes(purpose), mimeType) {
		return models.FileValidationResult{
			Valid: false,
			Error: fmt.Sprintf("Unsupported file type: %s", mimeType),
		}
	}

	if size > maxSize {
		return models.FileValidationResult{
			Valid: false,
			Error: fmt.Sprintf("File too large: %dMB. Maximum allowed: %dMB",
				size/1024/1024, maxSize/1024/1024),
		}
	}

	return models.FileValidationResult{Valid: true}
}

func containsType(types []string, mimeType string) bool {
	for _, t := range types {
		if t == mimeType {
			return true
		}
	}
	return false
}

// FormatFileSize renders bytes as a human-readable size.
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGT"[exp])
}
