package media

import (
	"io"

	"edulingua/errors"
)

// ExtractText pulls text content out of an uploaded document. Plain
// text, HTML, RTF, and JSON are read directly as UTF-8. PDF and Word
// types are recognized but fail loudly with an unsupported-format error
// until a real parser is wired in; they are never silently replaced with
// placeholder content.
func ExtractText(mimeType string, r io.Reader) (string, error) {
	const op = "Media.ExtractText"

	switch mimeType {
	case "text/plain", "text/html", "text/rtf", "application/json":
		data, err := io.ReadAll(r)
		if err != nil {
			return "", errors.Internal(op, err, "Failed to read file")
		}
		return string(data), nil

	case "application/pdf":
		return "", errors.UnsupportedFormat(op, nil, "PDF text extraction is not supported; upload a text file")

	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword":
		return "", errors.UnsupportedFormat(op, nil, "Word document extraction is not supported; upload a text file")

	default:
		return "", errors.InvalidInput(op, nil, "Unsupported file type: "+mimeType)
	}
}
