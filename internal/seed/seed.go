// Package seed builds the demo roster and task list used by `deck seed`.
// Deadlines and history dates are placed relative to now so the demo always
// shows a mix of overdue, upcoming and finished work.
package seed

import (
	"time"

	"github.com/baiirun/deck/internal/model"
)

type personFixture struct {
	name, email, department string
	tags                    []string
	stats                   model.Stats
	punctuality             [5]float64
}

var people = []personFixture{
	{"Alex Chen", "alex.chen@company.com", "Engineering", []string{"Engineering", "Backend"},
		model.Stats{Reliability: 94, AvgSpeedHours: 1.5, LateRate: 6}, [5]float64{100, 95, 90, 100, 92}},
	{"Sarah Miller", "sarah.miller@company.com", "Design", []string{"Design", "Frontend"},
		model.Stats{Reliability: 87, AvgSpeedHours: 2, LateRate: 13}, [5]float64{85, 90, 88, 82, 90}},
	{"James Wilson", "james.wilson@company.com", "Product", []string{"Product"},
		model.Stats{Reliability: 72, AvgSpeedHours: 3, LateRate: 28}, [5]float64{70, 75, 68, 72, 75}},
	{"Emily Davis", "emily.davis@company.com", "Marketing", []string{"Marketing"},
		model.Stats{Reliability: 96, AvgSpeedHours: 1, LateRate: 4}, [5]float64{98, 95, 97, 94, 96}},
	{"Michael Brown", "michael.brown@company.com", "Engineering", []string{"Engineering", "Infrastructure"},
		model.Stats{Reliability: 65, AvgSpeedHours: 4, LateRate: 35}, [5]float64{60, 65, 70, 62, 68}},
	{"Lisa Wang", "lisa.wang@company.com", "Design", []string{"Design", "Research"},
		model.Stats{Reliability: 91, AvgSpeedHours: 1.8, LateRate: 9}, [5]float64{92, 89, 93, 90, 91}},
}

type taskFixture struct {
	title     string
	assignees []int
	deadline  time.Duration // offset from now
	status    model.Status
	completed time.Duration // offset from now, for completed tasks
	priority  model.Priority
}

const day = 24 * time.Hour

var tasks = []taskFixture{
	{"Deploy authentication microservice", []int{0, 4}, -48 * time.Hour, model.StatusPending, 0, model.PriorityCritical},
	{"Review Q4 marketing campaign", []int{3}, -24 * time.Hour, model.StatusPending, 0, model.PriorityHigh},
	{"Update design system components", []int{1, 5}, 2 * time.Hour, model.StatusPending, 0, model.PriorityMedium},
	{"Finalize product roadmap presentation", []int{2}, 6 * time.Hour, model.StatusPending, 0, model.PriorityHigh},
	{"Complete API documentation", []int{0}, -2 * day, model.StatusCompleted, -60 * time.Hour, model.PriorityMedium},
	{"Security audit remediation", []int{4, 0}, -3 * day, model.StatusLateCompleted, -2 * day, model.PriorityCritical},
	{"User research synthesis", []int{1}, -day, model.StatusCompleted, -29 * time.Hour, model.PriorityLow},
	{"Database optimization sprint", []int{0, 4}, 24 * time.Hour, model.StatusPending, 0, model.PriorityHigh},
}

// Snapshot returns the demo data. Multi-assignee fixtures are group tasks.
func Snapshot(now time.Time, ids model.IDGenerator) model.Snapshot {
	if ids == nil {
		ids = model.UUIDGenerator{}
	}

	snap := model.Snapshot{
		People: make([]model.Person, 0, len(people)),
		Tasks:  make([]model.Task, 0, len(tasks)),
	}
	for _, f := range people {
		history := make([]model.HistorySample, len(f.punctuality))
		for i, v := range f.punctuality {
			date := now.AddDate(0, 0, i-len(f.punctuality))
			history[i] = model.HistorySample{Date: date.Format("2006-01-02"), Punctuality: v}
		}
		snap.People = append(snap.People, model.Person{
			ID:          ids.NewID(model.PersonIDPrefix),
			Name:        f.name,
			Email:       f.email,
			Department:  f.department,
			Tags:        append([]string(nil), f.tags...),
			Avatar:      model.DefaultAvatar(f.name),
			Stats:       f.stats,
			TaskHistory: history,
		})
	}

	for _, f := range tasks {
		assignees := make([]model.Person, len(f.assignees))
		for i, idx := range f.assignees {
			assignees[i] = snap.People[idx].Clone()
		}
		t := model.Task{
			ID:          ids.NewID(model.TaskIDPrefix),
			Title:       f.title,
			Assignees:   assignees,
			Deadline:    now.Add(f.deadline),
			Status:      f.status,
			IsGroupTask: len(assignees) > 1,
			Priority:    f.priority,
			CreatedAt:   now.Add(f.deadline).Add(-3 * day),
		}
		if f.status.IsCompleted() {
			at := now.Add(f.completed)
			t.CompletedAt = &at
		}
		snap.Tasks = append(snap.Tasks, t)
	}
	return snap
}
