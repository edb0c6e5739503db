package handlers

import (
	"edulingua/errors"
	"edulingua/media"
	"edulingua/validation"

	"github.com/gofiber/fiber/v2"
)

type MediaHandler struct {
	validator *validation.Validator
}

func NewMediaHandler(validator *validation.Validator) *MediaHandler {
	return &MediaHandler{validator: validator}
}

// Validate checks a file description against the upload policy without
// requiring the bytes. The verdict is part of the response body, not an
// error: invalid files are a normal answer here.
func (h *MediaHandler) Validate(c *fiber.Ctx) error {
	const op = "MediaHandler.Validate"

	var req struct {
		Filename string `json:"filename"`
		MIMEType string `json:"mime_type"`
		Size     int64  `json:"size"`
		Purpose  string `json:"purpose"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errors.InvalidInput(op, err, "Invalid request body")
	}

	verdict := media.ValidateFile(req.MIMEType, req.Size, media.Purpose(req.Purpose))

	return c.JSON(fiber.Map{
		"success": true,
		"data":    verdict,
	})
}

func (h *MediaHandler) Extract(c *fiber.Ctx) error {
	const op = "MediaHandler.Extract"

	header, err := c.FormFile("file")
	if err != nil {
		return errors.InvalidInput(op, err, "File is required")
	}
	if err := h.validator.ValidateUpload(header, media.PurposeText); err != nil {
		return err
	}

	file, err := header.Open()
	if err != nil {
		return errors.Internal(op, err, "Failed to open uploaded file")
	}
	defer file.Close()

	text, err := media.ExtractText(header.Header.Get("Content-Type"), file)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"text":      text,
			"filename":  header.Filename,
			"file_size": media.FormatFileSize(header.Size),
		},
	})
}

func (h *MediaHandler) YouTube(c *fiber.Ctx) error {
	const op = "MediaHandler.YouTube"

	var req struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errors.InvalidInput(op, err, "Invalid request body")
	}
	if err := h.validator.ValidateYouTubeURL(req.URL); err != nil {
		return err
	}

	info, err := media.ProcessYouTubeURL(req.URL)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    info,
	})
}
