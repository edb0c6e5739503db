package models

import "time"

type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPaused     JobStatus = "paused"
	StatusCancelled  JobStatus = "cancelled"
)

type JobType string

const (
	JobTypeFile               JobType = "file"
	JobTypeYouTubeProcessing  JobType = "youtube_processing"
	JobTypeSubtitleGeneration JobType = "subtitle_generation"
)

// ProcessingJob tracks one media processing request. Progress is only
// advanced by pipeline callbacks; a job in a terminal state is never
// resurrected.
type ProcessingJob struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Type            JobType      `json:"type"`
	Status          JobStatus    `json:"status"`
	Progress        int          `json:"progress"`
	Step            string       `json:"step,omitempty"`
	SourceLanguage  string       `json:"source_language"`
	TargetLanguages []string     `json:"target_languages"`
	FileSize        int64        `json:"file_size,omitempty"`
	Error           string       `json:"error,omitempty"`
	Result          *SubtitleSet `json:"result,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (j *ProcessingJob) IsProcessing() bool { return j.Status == StatusProcessing }
func (j *ProcessingJob) IsCompleted() bool  { return j.Status == StatusCompleted }
func (j *ProcessingJob) IsFailed() bool     { return j.Status == StatusFailed }

// IsTerminal reports whether the job has reached a state it can never
// leave.
func (j *ProcessingJob) IsTerminal() bool {
	switch j.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsStale checks if the job has been stuck in processing for too long.
func (j *ProcessingJob) IsStale(timeout time.Duration) bool {
	if j.Status != StatusProcessing {
		return false
	}
	return time.Since(j.UpdatedAt) > timeout
}

// JobResponse represents the API response for a job.
type JobResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Type            JobType   `json:"type"`
	Status          JobStatus `json:"status"`
	Progress        int       `json:"progress"`
	Step            string    `json:"step,omitempty"`
	SourceLanguage  string    `json:"source_language"`
	TargetLanguages []string  `json:"target_languages"`
	Error           string    `json:"error,omitempty"`
}

func NewJobResponse(j *ProcessingJob) *JobResponse {
	return &JobResponse{
		ID:              j.ID,
		Title:           j.Title,
		Type:            j.Type,
		Status:          j.Status,
		Progress:        j.Progress,
		Step:            j.Step,
		SourceLanguage:  j.SourceLanguage,
		TargetLanguages: j.TargetLanguages,
		Error:           j.Error,
	}
}
