package handlers

import (
	"fmt"
	"io"
	"strings"

	"edulingua/errors"
	"edulingua/jobs"
	"edulingua/models"
	"edulingua/storage"
	"edulingua/translation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type JobHandler struct {
	service jobs.Service
	// archive is optional; nil disables export archiving.
	archive *storage.SpacesClient
}

func NewJobHandler(service jobs.Service, archive *storage.SpacesClient) *JobHandler {
	return &JobHandler{service: service, archive: archive}
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	const op = "JobHandler.Create"

	header, err := c.FormFile("file")
	if err != nil {
		return errors.InvalidInput(op, err, "Media file is required")
	}

	file, err := header.Open()
	if err != nil {
		return errors.Internal(op, err, "Failed to open uploaded file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return errors.Internal(op, err, "Failed to read uploaded file")
	}

	var targets []string
	if raw := c.FormValue("target_languages"); raw != "" {
		targets = splitCSV(raw)
	}

	job, err := h.service.Submit(c.Context(), jobs.SubmitRequest{
		Title:           header.Filename,
		FileName:        header.Filename,
		MIMEType:        header.Header.Get("Content-Type"),
		Content:         content,
		SourceLanguage:  c.FormValue("source_language"),
		TargetLanguages: targets,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"data":    models.NewJobResponse(job),
	})
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	const op = "JobHandler.Get"

	id := c.Params("id")
	if id == "" {
		return errors.InvalidInput(op, nil, "ID is required")
	}

	job, err := h.service.Get(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.NewJobResponse(job),
	})
}

func (h *JobHandler) List(c *fiber.Ctx) error {
	recent, err := h.service.List(c.Context(), c.QueryInt("limit"))
	if err != nil {
		return err
	}

	responses := make([]*models.JobResponse, len(recent))
	for i, job := range recent {
		responses[i] = models.NewJobResponse(job)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    responses,
	})
}

func (h *JobHandler) Cancel(c *fiber.Ctx) error {
	const op = "JobHandler.Cancel"

	id := c.Params("id")
	if id == "" {
		return errors.InvalidInput(op, nil, "ID is required")
	}

	job, err := h.service.Cancel(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.NewJobResponse(job),
	})
}

// Export renders one subtitle track of a completed job and returns it as
// a file download.
func (h *JobHandler) Export(c *fiber.Ctx) error {
	const op = "JobHandler.Export"

	id := c.Params("id")
	job, err := h.service.Get(c.Context(), id)
	if err != nil {
		return err
	}
	if !job.IsCompleted() || job.Result == nil {
		return errors.InvalidInput(op, nil, "Job has no subtitles yet")
	}

	lang := c.Query("lang")
	format := c.Query("format", "srt")

	cues, ok := job.Result.Track(lang)
	if !ok {
		return errors.NotFound(op, nil, "No subtitles for language: "+lang)
	}

	content := translation.ExportSubtitles(cues, format)

	if h.archive != nil {
		if err := h.archive.SaveExport(c.Context(), job.ID, lang, format, []byte(content)); err != nil {
			log.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to archive export")
		}
	}

	filename := fmt.Sprintf("%s.%s", id, format)
	c.Set(fiber.HeaderContentType, translation.ExportMIMEType(format))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.SendString(content)
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
