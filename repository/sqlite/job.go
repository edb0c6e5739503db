package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"edulingua/errors"
	"edulingua/models"
)

type Repository struct {
	db *DB
}

func NewRepository(db *DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

func (r *Repository) Save(ctx context.Context, job *models.ProcessingJob) error {
	const op = "SQLiteRepository.Save"

	for i := 0; i < 3; i++ { // Simple retry logic
		err := r.save(ctx, job)
		if err == nil {
			return nil
		}
		if !isLockError(err) {
			return errors.Internal(op, err, "Failed to save job")
		}
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return errors.Internal(op, nil, "Failed after retries")
}

func (r *Repository) save(ctx context.Context, job *models.ProcessingJob) error {
	var result []byte
	if job.Result != nil {
		data, err := json.Marshal(job.Result)
		if err != nil {
			return err
		}
		result = data
	}

	_, err := r.db.statements.insert.ExecContext(ctx,
		job.ID,
		job.Title,
		string(job.Type),
		string(job.Status),
		job.Progress,
		job.Step,
		job.SourceLanguage,
		strings.Join(job.TargetLanguages, ","),
		job.FileSize,
		job.Error,
		string(result),
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

func (r *Repository) Find(ctx context.Context, id string) (*models.ProcessingJob, error) {
	const op = "SQLiteRepository.Find"

	job, err := scanJob(r.db.statements.get.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Job not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query job")
	}

	return job, nil
}

func (r *Repository) FindRecent(ctx context.Context, limit int) ([]*models.ProcessingJob, error) {
	const op = "SQLiteRepository.FindRecent"

	rows, err := r.db.statements.getRecent.QueryContext(ctx, limit)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query jobs")
	}
	defer rows.Close()

	var jobs []*models.ProcessingJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, errors.Internal(op, err, "Failed to scan job")
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err, "Failed to iterate jobs")
	}

	return jobs, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scanner) (*models.ProcessingJob, error) {
	job := &models.ProcessingJob{}
	var jobType, status, targets, result string

	err := row.Scan(
		&job.ID,
		&job.Title,
		&jobType,
		&status,
		&job.Progress,
		&job.Step,
		&job.SourceLanguage,
		&targets,
		&job.FileSize,
		&job.Error,
		&result,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Type = models.JobType(jobType)
	job.Status = models.JobStatus(status)
	if targets != "" {
		job.TargetLanguages = strings.Split(targets, ",")
	} else {
		job.TargetLanguages = []string{}
	}
	if result != "" {
		var set models.SubtitleSet
		if err := json.Unmarshal([]byte(result), &set); err != nil {
			return nil, err
		}
		job.Result = &set
	}

	return job, nil
}

func isLockError(err error) bool {
	return strings.Contains(err.Error(), "database is locked") ||
		strings.Contains(err.Error(), "busy")
}
