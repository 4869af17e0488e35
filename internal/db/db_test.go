package db

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/baiirun/deck/internal/model"
	"github.com/baiirun/deck/internal/store"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	if err := db.Init(); err != nil {
		t.Fatalf("failed to init db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testSnapshot() model.Snapshot {
	alex := model.Person{
		ID:         "pe-0001",
		Name:       "Alex Chen",
		Email:      "alex@company.com",
		Department: "Engineering",
		Tags:       []string{"Engineering", "Frontend"},
		Avatar:     model.DefaultAvatar("Alex Chen"),
		Stats:      model.Stats{Reliability: 92, AvgSpeedHours: 18, LateRate: 8},
		TaskHistory: []model.HistorySample{
			{Date: "2024-01-01", Punctuality: 95},
			{Date: "2024-01-02", Punctuality: 88},
		},
	}
	sarah := model.Person{
		ID:          "pe-0002",
		Name:        "Sarah Miller",
		Email:       "sarah@company.com",
		Department:  "Design",
		Tags:        []string{},
		Stats:       model.NeutralStats(),
		TaskHistory: []model.HistorySample{},
	}

	deadline := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)
	created := time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)
	done := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	return model.Snapshot{
		People: []model.Person{alex, sarah},
		Tasks: []model.Task{
			{
				ID:          "ts-0004",
				Title:       "Design review",
				Assignees:   []model.Person{sarah, alex},
				Deadline:    deadline,
				Status:      model.StatusPending,
				Message:     "Bring the mockups",
				IsGroupTask: true,
				Priority:    model.PriorityHigh,
				CreatedAt:   created,
			},
			{
				ID:          "ts-0003",
				Title:       "Ship release",
				Assignees:   []model.Person{alex},
				Deadline:    deadline,
				Status:      model.StatusLateCompleted,
				CompletedAt: &done,
				Priority:    model.PriorityCritical,
				CreatedAt:   created,
			},
		},
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Should create parent directories
	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	path := DefaultPath(home)

	if want := filepath.Join(home, ".deck", "deck.db"); path != want {
		t.Errorf("DefaultPath(%q) = %q, want %q", home, path, want)
	}
}

func TestInit_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Init(); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
}

func TestLoad_Empty(t *testing.T) {
	db := setupTestDB(t)

	snap, err := db.Load(context.Background())
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(snap.People) != 0 || len(snap.Tasks) != 0 {
		t.Errorf("expected empty snapshot, got %d people and %d tasks", len(snap.People), len(snap.Tasks))
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	want := testSnapshot()

	if err := db.Save(ctx, want); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	got, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if len(got.People) != 2 {
		t.Fatalf("expected 2 people, got %d", len(got.People))
	}
	alex := got.People[0]
	if alex.ID != "pe-0001" || alex.Name != "Alex Chen" {
		t.Errorf("expected Alex Chen first, got %s %q", alex.ID, alex.Name)
	}
	if len(alex.Tags) != 2 || alex.Tags[0] != "Engineering" || alex.Tags[1] != "Frontend" {
		t.Errorf("expected tags in order, got %v", alex.Tags)
	}
	if len(alex.TaskHistory) != 2 || alex.TaskHistory[1].Punctuality != 88 {
		t.Errorf("unexpected history: %v", alex.TaskHistory)
	}
	if alex.Stats != want.People[0].Stats {
		t.Errorf("expected stats %+v, got %+v", want.People[0].Stats, alex.Stats)
	}
	if got.People[1].Tags == nil {
		t.Error("expected empty tags to load as a non-nil slice")
	}

	if len(got.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got.Tasks))
	}
	group := got.Tasks[0]
	if group.ID != "ts-0004" {
		t.Errorf("expected task order to be preserved, got %s first", group.ID)
	}
	if !group.IsGroupTask || group.Priority != model.PriorityHigh || group.Message != "Bring the mockups" {
		t.Errorf("unexpected group task fields: %+v", group)
	}
	if len(group.Assignees) != 2 || group.Assignees[0].ID != "pe-0002" || group.Assignees[1].ID != "pe-0001" {
		t.Errorf("expected assignees in stored order, got %v", group.Assignees)
	}
	if group.CompletedAt != nil {
		t.Error("expected pending task to have no completion time")
	}
	if !group.Deadline.Equal(want.Tasks[0].Deadline) {
		t.Errorf("expected deadline %v, got %v", want.Tasks[0].Deadline, group.Deadline)
	}

	late := got.Tasks[1]
	if late.Status != model.StatusLateCompleted {
		t.Errorf("expected late_completed, got %s", late.Status)
	}
	if late.CompletedAt == nil || !late.CompletedAt.Equal(*want.Tasks[1].CompletedAt) {
		t.Errorf("expected completion time %v, got %v", want.Tasks[1].CompletedAt, late.CompletedAt)
	}
}

func TestSave_ReplacesPrevious(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	snap := testSnapshot()

	if err := db.Save(ctx, snap); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	snap.Tasks = snap.Tasks[1:]
	if err := db.Save(ctx, snap); err != nil {
		t.Fatalf("failed to save again: %v", err)
	}

	got, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].ID != "ts-0003" {
		t.Errorf("expected only ts-0003 to remain, got %v", got.Tasks)
	}
}

func TestLoad_RejectsInvalidStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Save(ctx, testSnapshot()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE tasks SET status = 'archived' WHERE id = 'ts-0004'`); err != nil {
		t.Fatalf("failed to corrupt row: %v", err)
	}

	if _, err := db.Load(ctx); err == nil {
		t.Error("expected Load to reject an unknown status")
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		status  model.Status
		wantErr bool
	}{
		{model.StatusPending, false},
		{model.StatusCompleted, false},
		{model.StatusLateCompleted, false},
		{"urgent", true},
		{"", true},
	}
	for _, tt := range tests {
		err := checkStatus(model.Task{ID: "ts-0001", Status: tt.status})
		if (err != nil) != tt.wantErr {
			t.Errorf("checkStatus(%q) err = %v, wantErr %v", tt.status, err, tt.wantErr)
		}
	}
}

func TestSaveLoad_TagsMatchStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s := store.New(store.WithIDGenerator(&model.SequenceGenerator{}))
	added := s.AddPerson(model.PersonDraft{Name: "Nora", Email: "nora@company.com", Tags: []string{"Design", "Research", "Design"}})

	if err := db.Save(ctx, s.Snapshot()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	got, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(got.People) != 1 {
		t.Fatalf("expected 1 person, got %d", len(got.People))
	}
	if !reflect.DeepEqual(got.People[0].Tags, added.Tags) {
		t.Errorf("reloaded tags = %v, want %v", got.People[0].Tags, added.Tags)
	}
}

func TestChasers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC)

	first := model.Chaser{
		ID:        "ch-0001",
		TaskID:    "ts-0003",
		To:        []string{"alex@company.com"},
		Subject:   "URGENT: Ship release is Overdue",
		Body:      "Hi Team",
		CreatedAt: base,
	}
	second := model.Chaser{
		ID:        "ch-0002",
		TaskID:    "ts-0004",
		To:        []string{"sarah@company.com"},
		CC:        []string{"alex@company.com"},
		Subject:   "URGENT: Design review is Overdue",
		Body:      "Hi Team",
		CreatedAt: base.Add(time.Hour),
	}
	for _, c := range []model.Chaser{first, second} {
		if err := db.AppendChaser(ctx, c); err != nil {
			t.Fatalf("failed to append chaser: %v", err)
		}
	}

	all, err := db.ListChasers(ctx, "")
	if err != nil {
		t.Fatalf("failed to list chasers: %v", err)
	}
	if len(all) != 2 || all[0].ID != "ch-0001" || all[1].ID != "ch-0002" {
		t.Fatalf("expected both chasers oldest first, got %v", all)
	}
	if len(all[0].CC) != 0 {
		t.Errorf("expected empty cc, got %v", all[0].CC)
	}

	filtered, err := db.ListChasers(ctx, "ts-0004")
	if err != nil {
		t.Fatalf("failed to list chasers: %v", err)
	}
	if len(filtered) != 1 || filtered[0].CC[0] != "alex@company.com" {
		t.Errorf("expected one chaser for ts-0004 with cc, got %v", filtered)
	}

	// Saving a snapshot leaves the outbox alone
	if err := db.Save(ctx, testSnapshot()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	all, err = db.ListChasers(ctx, "")
	if err != nil {
		t.Fatalf("failed to list chasers: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected outbox to survive save, got %d chasers", len(all))
	}
}

func TestMemory(t *testing.T) {
	var repo Repository = NewMemory()
	ctx := context.Background()

	snap, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(snap.Tasks) != 0 {
		t.Errorf("expected empty snapshot, got %d tasks", len(snap.Tasks))
	}

	if err := repo.Save(ctx, testSnapshot()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	snap, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(snap.Tasks) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(snap.Tasks))
	}

	_ = repo.AppendChaser(ctx, model.Chaser{ID: "ch-0001", TaskID: "ts-0003"})
	_ = repo.AppendChaser(ctx, model.Chaser{ID: "ch-0002", TaskID: "ts-0004"})
	chasers, err := repo.ListChasers(ctx, "ts-0003")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(chasers) != 1 || chasers[0].ID != "ch-0001" {
		t.Errorf("expected ch-0001 only, got %v", chasers)
	}

	if err := repo.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}
