package seed

import (
	"testing"
	"time"

	"github.com/baiirun/deck/internal/model"
)

func TestSnapshot(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	snap := Snapshot(now, &model.SequenceGenerator{})

	if len(snap.People) != 6 {
		t.Fatalf("expected 6 people, got %d", len(snap.People))
	}
	if len(snap.Tasks) != 8 {
		t.Fatalf("expected 8 tasks, got %d", len(snap.Tasks))
	}
	if snap.People[0].ID != "pe-0001" || snap.Tasks[0].ID != "ts-0007" {
		t.Errorf("unexpected ids: %s, %s", snap.People[0].ID, snap.Tasks[0].ID)
	}

	for _, p := range snap.People {
		if len(p.TaskHistory) != 5 {
			t.Errorf("%s: expected 5 history samples, got %d", p.Name, len(p.TaskHistory))
		}
	}
	if last := snap.People[0].TaskHistory[4].Date; last != "2024-06-09" {
		t.Errorf("last history date = %q, want 2024-06-09", last)
	}

	summary := model.Summarize(snap.Tasks, now)
	want := model.Summary{Urgent: 2, Pending: 3, Completed: 3}
	if summary != want {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}

	for _, task := range snap.Tasks {
		if task.Status.IsCompleted() && task.CompletedAt == nil {
			t.Errorf("%s: completed without a completion time", task.Title)
		}
		if task.IsGroupTask != (len(task.Assignees) > 1) {
			t.Errorf("%s: group flag does not match assignee count", task.Title)
		}
	}
}
