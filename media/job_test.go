package media

import (
	"testing"

	"edulingua/models"
)

func TestNewProcessingJobDefaults(t *testing.T) {
	job := NewProcessingJob(JobInput{}, JobOptions{})

	if job.ID == "" {
		t.Error("job has no id")
	}
	if job.Title != "Processing Job" {
		t.Errorf("Title = %q, want default", job.Title)
	}
	if job.Type != models.JobTypeFile {
		t.Errorf("Type = %q, want file", job.Type)
	}
	if job.Status != models.StatusQueued {
		t.Errorf("Status = %q, want queued", job.Status)
	}
	if job.Progress != 0 {
		t.Errorf("Progress = %d, want 0", job.Progress)
	}
	if job.SourceLanguage != "auto" {
		t.Errorf("SourceLanguage = %q, want auto", job.SourceLanguage)
	}
	if job.TargetLanguages == nil || len(job.TargetLanguages) != 0 {
		t.Errorf("TargetLanguages = %v, want empty non-nil slice", job.TargetLanguages)
	}
	if job.CreatedAt.IsZero() || !job.CreatedAt.Equal(job.UpdatedAt) {
		t.Errorf("timestamps = %v / %v, want equal and set", job.CreatedAt, job.UpdatedAt)
	}
}

func TestNewProcessingJobExplicitInput(t *testing.T) {
	job := NewProcessingJob(
		JobInput{Title: "lecture.mp4", Type: models.JobTypeSubtitleGeneration, Size: 2048},
		JobOptions{SourceLanguage: "en", TargetLanguages: []string{"es", "fr"}},
	)

	if job.Title != "lecture.mp4" {
		t.Errorf("Title = %q", job.Title)
	}
	if job.Type != models.JobTypeSubtitleGeneration {
		t.Errorf("Type = %q", job.Type)
	}
	if job.FileSize != 2048 {
		t.Errorf("FileSize = %d", job.FileSize)
	}
	if job.SourceLanguage != "en" {
		t.Errorf("SourceLanguage = %q", job.SourceLanguage)
	}
	if len(job.TargetLanguages) != 2 {
		t.Errorf("TargetLanguages = %v", job.TargetLanguages)
	}
}

func TestNewProcessingJobUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		job := NewProcessingJob(JobInput{}, JobOptions{})
		if seen[job.ID] {
			t.Fatalf("duplicate job id %q", job.ID)
		}
		seen[job.ID] = true
	}
}
