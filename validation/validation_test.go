package validation

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"edulingua/errors"
	"edulingua/media"
)

func TestValidateTranslationInput(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name    string
		text    string
		target  string
		wantErr bool
	}{
		{"valid", "hello", "es", false},
		{"empty text", "", "es", true},
		{"whitespace text", "  \t\n", "es", true},
		{"empty target", "hello", "", true},
		{"unknown target accepted", "hello", "xx", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateTranslationInput(tt.text, tt.target)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTranslationInput(%q, %q) error = %v, wantErr %v",
					tt.text, tt.target, err, tt.wantErr)
			}
			if err != nil && !errors.IsKind(err, errors.KindValidation) {
				t.Errorf("error kind = %v, want validation", err)
			}
		})
	}
}

func TestValidateYouTubeURL(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", false},
		{"http scheme", "http://youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"empty", "", true},
		{"ftp scheme", "ftp://youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"wrong host", "https://vimeo.com/12345678", true},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateYouTubeURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateYouTubeURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err != nil && !errors.IsKind(err, errors.KindInvalidURL) {
				t.Errorf("error kind = %v, want invalid_url", err)
			}
		})
	}
}

func uploadHeader(name, mimeType string, size int64) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", mimeType)
	return &multipart.FileHeader{Filename: name, Header: h, Size: size}
}

func TestValidateUpload(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name    string
		header  *multipart.FileHeader
		purpose media.Purpose
		wantErr bool
	}{
		{"nil header", nil, media.PurposeText, true},
		{"valid text upload", uploadHeader("notes.txt", "text/plain", 1024), media.PurposeText, false},
		{"valid audio upload", uploadHeader("talk.mp3", "audio/mpeg", 1024), media.PurposeAudio, false},
		{"oversized text upload", uploadHeader("big.txt", "text/plain", 11*1024*1024), media.PurposeText, true},
		{"wrong type for purpose", uploadHeader("notes.txt", "text/plain", 1024), media.PurposeAudio, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpload(tt.header, tt.purpose)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUpload error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
