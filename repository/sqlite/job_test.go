package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"edulingua/errors"
	"edulingua/models"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"), 2)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return repo
}

func testJob(id string) *models.ProcessingJob {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.ProcessingJob{
		ID:              id,
		Title:           "lecture.mp4",
		Type:            models.JobTypeSubtitleGeneration,
		Status:          models.StatusQueued,
		Progress:        0,
		SourceLanguage:  "auto",
		TargetLanguages: []string{"es", "fr"},
		FileSize:        2048,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestSaveAndFindRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	job := testJob("job-1")
	job.Result = &models.SubtitleSet{
		OriginalLanguage: "english",
		Original:         []models.SubtitleCue{{ID: 1, Start: 0, End: 2.5, Text: "hello"}},
		Translations: map[string][]models.SubtitleCue{
			"es": {{ID: 1, Start: 0, End: 2.5, Text: "hola"}},
		},
		Duration: 2.5,
	}

	if err := repo.Save(ctx, job); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Find(ctx, "job-1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if got.ID != job.ID || got.Title != job.Title || got.Type != job.Type {
		t.Errorf("identity fields drifted: %+v", got)
	}
	if got.Status != models.StatusQueued {
		t.Errorf("Status = %s, want queued", got.Status)
	}
	if len(got.TargetLanguages) != 2 || got.TargetLanguages[0] != "es" {
		t.Errorf("TargetLanguages = %v, want [es fr]", got.TargetLanguages)
	}
	if got.Result == nil {
		t.Fatal("Result not persisted")
	}
	if got.Result.Original[0].Text != "hello" || got.Result.Translations["es"][0].Text != "hola" {
		t.Errorf("Result cues drifted: %+v", got.Result)
	}
}

func TestSaveUpsertsExistingJob(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	job := testJob("job-2")
	if err := repo.Save(ctx, job); err != nil {
		t.Fatalf("Save: %v", err)
	}

	job.Status = models.StatusProcessing
	job.Progress = 40
	job.Step = "translating_es"
	job.UpdatedAt = time.Now().UTC()
	if err := repo.Save(ctx, job); err != nil {
		t.Fatalf("Save(update): %v", err)
	}

	got, err := repo.Find(ctx, "job-2")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Status != models.StatusProcessing || got.Progress != 40 || got.Step != "translating_es" {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestFindMissingJob(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Find(context.Background(), "nope")
	if !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("error kind = %v, want not_found", err)
	}
}

func TestFindRecentOrderAndLimit(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"old", "mid", "new"} {
		job := testJob(id)
		job.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		job.UpdatedAt = job.CreatedAt
		if err := repo.Save(ctx, job); err != nil {
			t.Fatalf("Save(%s): %v", id, err)
		}
	}

	jobs, err := repo.FindRecent(ctx, 2)
	if err != nil {
		t.Fatalf("FindRecent: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if jobs[0].ID != "new" || jobs[1].ID != "mid" {
		t.Errorf("order = %s, %s, want new, mid", jobs[0].ID, jobs[1].ID)
	}
}

func TestEmptyTargetLanguagesRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	job := testJob("job-3")
	job.TargetLanguages = []string{}
	if err := repo.Save(ctx, job); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Find(ctx, "job-3")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.TargetLanguages == nil || len(got.TargetLanguages) != 0 {
		t.Errorf("TargetLanguages = %v, want empty non-nil slice", got.TargetLanguages)
	}
}
