package media

import (
	"time"

	"edulingua/models"

	"github.com/google/uuid"
)

// JobInput names the work a processing job was created for.
type JobInput struct {
	Title string
	Type  models.JobType
	Size  int64
}

type JobOptions struct {
	SourceLanguage  string
	TargetLanguages []string
}

// NewProcessingJob builds a queued job with a UUID. The client-side
// original used timestamp-plus-random ids; server-side uniqueness has to
// be real.
func NewProcessingJob(input JobInput, opts JobOptions) *models.ProcessingJob {
	title := input.Title
	if title == "" {
		title = "Processing Job"
	}
	jobType := input.Type
	if jobType == "" {
		jobType = models.JobTypeFile
	}
	source := opts.SourceLanguage
	if source == "" {
		source = "auto"
	}
	targets := opts.TargetLanguages
	if targets == nil {
		targets = []string{}
	}

	now := time.Now()
	return &models.ProcessingJob{
		ID:              uuid.New().String(),
		Title:           title,
		Type:            jobType,
		Status:          models.StatusQueued,
		Progress:        0,
		SourceLanguage:  source,
		TargetLanguages: targets,
		FileSize:        input.Size,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
