package repository

import (
	"context"

	"edulingua/models"
)

type JobRepository interface {
	Save(ctx context.Context, job *models.ProcessingJob) error
	Find(ctx context.Context, id string) (*models.ProcessingJob, error)
	FindRecent(ctx context.Context, limit int) ([]*models.ProcessingJob, error)
}
