// Package jobs runs subtitle-generation work in the background and
// tracks its progress in the job store.
package jobs

import (
	"bytes"
	"context"
	"time"

	"edulingua/errors"
	"edulingua/media"
	"edulingua/models"
	"edulingua/repository"
	"edulingua/translation"

	"github.com/rs/zerolog"
)

type Config struct {
	ProcessTimeout time.Duration
	StaleTimeout   time.Duration
}

type SubmitRequest struct {
	Title           string
	FileName        string
	MIMEType        string
	Content         []byte
	SourceLanguage  string
	TargetLanguages []string
}

type Service interface {
	// Submit queues a subtitle-generation job and starts processing it
	// in the background; the returned job is already persisted.
	Submit(ctx context.Context, req SubmitRequest) (*models.ProcessingJob, error)
	Get(ctx context.Context, id string) (*models.ProcessingJob, error)
	// Cancel marks a non-terminal job cancelled. In-flight provider work
	// finishes on its own; its result is discarded.
	Cancel(ctx context.Context, id string) (*models.ProcessingJob, error)
	List(ctx context.Context, limit int) ([]*models.ProcessingJob, error)
}

type service struct {
	repo        repository.JobRepository
	translation translation.Service
	config      Config
	logger      zerolog.Logger
}

func NewService(repo repository.JobRepository, translationService translation.Service, config Config, logger zerolog.Logger) Service {
	return &service{
		repo:        repo,
		translation: translationService,
		config:      config,
		logger:      logger.With().Str("component", "jobs").Logger(),
	}
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*models.ProcessingJob, error) {
	const op = "JobService.Submit"

	if len(req.Content) == 0 {
		return nil, errors.InvalidInput(op, nil, "Media file is required")
	}
	if verdict := media.ValidateFile(req.MIMEType, int64(len(req.Content)), media.PurposeVideo); !verdict.Valid {
		return nil, errors.InvalidInput(op, nil, verdict.Error)
	}

	job := media.NewProcessingJob(
		media.JobInput{
			Title: req.Title,
			Type:  models.JobTypeSubtitleGeneration,
			Size:  int64(len(req.Content)),
		},
		media.JobOptions{
			SourceLanguage:  req.SourceLanguage,
			TargetLanguages: req.TargetLanguages,
		},
	)

	if err := s.repo.Save(ctx, job); err != nil {
		return nil, err
	}

	// The pipeline goroutine works on its own copy; the returned job is
	// a snapshot of the queued state and is never written again.
	go s.process(cloneJob(job), req)

	return job, nil
}

func cloneJob(job *models.ProcessingJob) *models.ProcessingJob {
	copied := *job
	copied.TargetLanguages = append([]string(nil), job.TargetLanguages...)
	return &copied
}

func (s *service) Get(ctx context.Context, id string) (*models.ProcessingJob, error) {
	const op = "JobService.Get"

	if id == "" {
		return nil, errors.InvalidInput(op, nil, "ID is required")
	}

	job, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	// A job stuck in processing past the stale timeout is presumed dead
	// (crashed worker, lost goroutine) and failed on read so the caller
	// can resubmit.
	if s.config.StaleTimeout > 0 && job.IsStale(s.config.StaleTimeout) {
		s.logger.Warn().Str("job_id", job.ID).Msg("Marking stale job failed")
		job.Status = models.StatusFailed
		job.Error = "Processing timed out"
		job.UpdatedAt = time.Now()
		if err := s.repo.Save(ctx, job); err != nil {
			return nil, err
		}
	}

	return job, nil
}

func (s *service) Cancel(ctx context.Context, id string) (*models.ProcessingJob, error) {
	const op = "JobService.Cancel"

	job, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.IsTerminal() {
		return nil, errors.InvalidInput(op, nil, "Job is already finished")
	}

	job.Status = models.StatusCancelled
	job.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

func (s *service) List(ctx context.Context, limit int) ([]*models.ProcessingJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.FindRecent(ctx, limit)
}

func (s *service) process(job *models.ProcessingJob, req SubmitRequest) {
	logger := s.logger.With().Str("job_id", job.ID).Logger()
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ProcessTimeout)
	defer cancel()

	logger.Info().Str("file", req.FileName).Msg("Starting subtitle generation")

	job.Status = models.StatusProcessing
	job.UpdatedAt = time.Now()
	if err := s.saveIfActive(ctx, job); err != nil {
		logger.Error().Err(err).Msg("Failed to mark job processing")
		return
	}

	set, err := s.translation.GenerateSubtitles(
		ctx,
		req.FileName,
		bytes.NewReader(req.Content),
		req.TargetLanguages,
		func(p models.SubtitleProgress) {
			job.Progress = p.Progress
			job.Step = p.Step
			job.UpdatedAt = time.Now()
			if err := s.saveIfActive(ctx, job); err != nil {
				logger.Warn().Err(err).Msg("Failed to persist progress")
			}
		},
	)

	if err != nil {
		logger.Error().Err(err).Msg("Subtitle generation failed")
		job.Status = models.StatusFailed
		job.Error = err.Error()
	} else {
		logger.Info().
			Int("cues", len(set.Original)).
			Int("languages", len(set.Translations)).
			Msg("Subtitle generation completed")
		job.Status = models.StatusCompleted
		job.Progress = 100
		job.Step = "complete"
		job.SourceLanguage = set.OriginalLanguage
		job.Result = set
	}
	job.UpdatedAt = time.Now()

	if err := s.saveIfActive(context.Background(), job); err != nil {
		logger.Error().Err(err).Msg("Failed to save job result")
	}
}

// saveIfActive persists job unless its stored copy already reached a
// terminal state (e.g. cancelled mid-flight). Terminal states are never
// overwritten.
func (s *service) saveIfActive(ctx context.Context, job *models.ProcessingJob) error {
	stored, err := s.repo.Find(ctx, job.ID)
	if err == nil && stored.IsTerminal() {
		return nil
	}
	return s.repo.Save(ctx, job)
}
