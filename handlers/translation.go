package handlers

import (
	"bufio"

	"edulingua/errors"
	"edulingua/media"
	"edulingua/models"
	"edulingua/translation"
	"edulingua/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type TranslationHandler struct {
	service   translation.Service
	validator *validation.Validator
}

func NewTranslationHandler(service translation.Service, validator *validation.Validator) *TranslationHandler {
	return &TranslationHandler{service: service, validator: validator}
}

func (h *TranslationHandler) Translate(c *fiber.Ctx) error {
	const op = "TranslationHandler.Translate"

	var req models.TranslationRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.InvalidInput(op, err, "Invalid request body")
	}
	if err := h.validator.ValidateTranslationInput(req.Text, req.TargetLanguage); err != nil {
		return err
	}

	result, err := h.service.TranslateText(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// TranslateStream sends translated fragments as they arrive from the
// provider, in arrival order, as a chunked plain-text body.
func (h *TranslationHandler) TranslateStream(c *fiber.Ctx) error {
	const op = "TranslationHandler.TranslateStream"

	var req models.TranslationRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.InvalidInput(op, err, "Invalid request body")
	}
	if err := h.validator.ValidateTranslationInput(req.Text, req.TargetLanguage); err != nil {
		return err
	}

	ctx := c.Context()
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")

	ctx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		_, err := h.service.TranslateTextStream(ctx, req, func(chunk string) {
			w.WriteString(chunk)
			w.Flush()
		})
		if err != nil {
			// Headers are already out; all we can do is terminate the
			// stream. Chunks already written stay written.
			w.Flush()
		}
	}))

	return nil
}

func (h *TranslationHandler) Detect(c *fiber.Ctx) error {
	const op = "TranslationHandler.Detect"

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errors.InvalidInput(op, err, "Invalid request body")
	}

	result := h.service.DetectLanguage(c.Context(), req.Text)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

func (h *TranslationHandler) Transcribe(c *fiber.Ctx) error {
	const op = "TranslationHandler.Transcribe"

	header, err := c.FormFile("file")
	if err != nil {
		return errors.InvalidInput(op, err, "File is required")
	}
	if err := h.validator.ValidateUpload(header, media.PurposeAudio); err != nil {
		return err
	}

	file, err := header.Open()
	if err != nil {
		return errors.Internal(op, err, "Failed to open uploaded file")
	}
	defer file.Close()

	result, err := h.service.TranscribeAudio(c.Context(), header.Filename, file, c.FormValue("language"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

func (h *TranslationHandler) TranslateAudio(c *fiber.Ctx) error {
	const op = "TranslationHandler.TranslateAudio"

	header, err := c.FormFile("file")
	if err != nil {
		return errors.InvalidInput(op, err, "File is required")
	}
	if err := h.validator.ValidateUpload(header, media.PurposeAudio); err != nil {
		return err
	}

	targetLanguage := c.FormValue("target_language")
	if targetLanguage == "" {
		return errors.InvalidInput(op, nil, "Target language is required")
	}

	file, err := header.Open()
	if err != nil {
		return errors.Internal(op, err, "Failed to open uploaded file")
	}
	defer file.Close()

	result, err := h.service.TranslateAudio(c.Context(), header.Filename, file, targetLanguage)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

func (h *TranslationHandler) Estimate(c *fiber.Ctx) error {
	const op = "TranslationHandler.Estimate"

	var req struct {
		Text  string `json:"text"`
		Model string `json:"model"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errors.InvalidInput(op, err, "Invalid request body")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"estimated_cost_usd": translation.EstimateCost(req.Text, req.Model),
		},
	})
}
