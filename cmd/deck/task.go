package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/baiirun/deck/internal/chaser"
	"github.com/baiirun/deck/internal/model"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, list and update tasks",
}

type taskAddOptions struct {
	deadline  string
	assignees []string
	group     bool
	message   string
	priority  string
}

var taskAddOpts taskAddOptions

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task (one per assignee unless --group)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return runTaskAdd(a, cmd.OutOrStdout(), strings.Join(args, " "), taskAddOpts)
		})
	},
}

var (
	flagAll        bool
	flagByPriority bool
)

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active tasks (pending and overdue)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return runTaskList(a, cmd.OutOrStdout(), taskListOptions{all: flagAll, byPriority: flagByPriority})
		})
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return runTaskShow(a, cmd.OutOrStdout(), args[0])
		})
	},
}

var flagLate bool

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task completed (--late for late_completed)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := model.StatusCompleted
		if flagLate {
			status = model.StatusLateCompleted
		}
		return withApp(cmd.Context(), func(a *app) error {
			return runTaskStatus(a, cmd.OutOrStdout(), args[0], status)
		})
	},
}

var taskReopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Move a completed task back to pending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return runTaskStatus(a, cmd.OutOrStdout(), args[0], model.StatusPending)
		})
	},
}

var taskArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Remove a task from the list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return runTaskArchive(a, cmd.OutOrStdout(), args[0])
		})
	},
}

type chaseOptions struct {
	cc      []string
	subject string
	body    string
	force   bool
}

var chaseOpts chaseOptions

var taskChaseCmd = &cobra.Command{
	Use:   "chase <id>",
	Short: "Draft a chaser for an overdue task into the outbox",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return runTaskChase(cmd.Context(), a, cmd.OutOrStdout(), args[0], chaseOpts)
		})
	},
}

var taskChasersCmd = &cobra.Command{
	Use:   "chasers [id]",
	Short: "List recorded chasers, optionally for one task",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ""
		if len(args) == 1 {
			ref = args[0]
		}
		return withApp(cmd.Context(), func(a *app) error {
			return runTaskChasers(cmd.Context(), a, cmd.OutOrStdout(), ref)
		})
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&taskAddOpts.deadline, "deadline", "", "deadline (YYYY-MM-DD HH:MM, YYYY-MM-DD or RFC3339)")
	taskAddCmd.Flags().StringSliceVarP(&taskAddOpts.assignees, "assignee", "a", nil, "assignee id or email (repeatable)")
	taskAddCmd.Flags().BoolVar(&taskAddOpts.group, "group", false, "create one shared task for all assignees")
	taskAddCmd.Flags().StringVarP(&taskAddOpts.message, "message", "m", "", "note for the assignees")
	taskAddCmd.Flags().StringVarP(&taskAddOpts.priority, "priority", "p", "", "low, medium, high or critical (default medium)")
	_ = taskAddCmd.MarkFlagRequired("deadline")
	_ = taskAddCmd.MarkFlagRequired("assignee")

	taskListCmd.Flags().BoolVar(&flagAll, "all", false, "include completed tasks")
	taskListCmd.Flags().BoolVar(&flagByPriority, "by-priority", false, "order critical first instead of newest first")
	taskDoneCmd.Flags().BoolVar(&flagLate, "late", false, "record the task as completed late")

	taskChaseCmd.Flags().StringSliceVar(&chaseOpts.cc, "cc", nil, "CC address (repeatable)")
	taskChaseCmd.Flags().StringVar(&chaseOpts.subject, "subject", "", "override the default subject")
	taskChaseCmd.Flags().StringVar(&chaseOpts.body, "body", "", "override the default body")
	taskChaseCmd.Flags().BoolVar(&chaseOpts.force, "force", false, "chase even if the task is not overdue")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskReopenCmd)
	taskCmd.AddCommand(taskArchiveCmd)
	taskCmd.AddCommand(taskChaseCmd)
	taskCmd.AddCommand(taskChasersCmd)
}

func runTaskAdd(a *app, w io.Writer, title string, opts taskAddOptions) error {
	snap := a.store.Snapshot()
	deadline, err := model.ParseDeadline(opts.deadline, time.Local)
	if err != nil {
		return err
	}
	assignees, err := snap.ResolvePeople(opts.assignees)
	if err != nil {
		return err
	}

	created, err := a.store.AddTask(model.TaskDraft{
		Title:       title,
		Deadline:    deadline,
		Assignees:   assignees,
		Message:     opts.message,
		IsGroupTask: opts.group,
		Priority:    model.Priority(strings.ToLower(opts.priority)),
	})
	if err != nil {
		return err
	}

	now := a.store.Now()
	if flagJSON {
		out := make([]TaskJSON, 0, len(created))
		for _, t := range created {
			out = append(out, toTaskJSON(t, now))
		}
		return printJSON(w, out)
	}
	for _, t := range created {
		fmt.Fprintf(w, "Created %s: %s (%s, due %s)\n", t.ID, t.Title, assigneeNames(t), model.RelativeTime(t.Deadline, now))
	}
	return nil
}

type taskListOptions struct {
	all        bool
	byPriority bool
}

func runTaskList(a *app, w io.Writer, opts taskListOptions) error {
	now := a.store.Now()
	tasks := a.store.Tasks()
	if !opts.all {
		tasks = model.ActiveTasks(tasks, now)
	}
	if opts.byPriority {
		tasks = model.SortByPriority(tasks)
	}

	if flagJSON {
		out := make([]TaskJSON, 0, len(tasks))
		for _, t := range tasks {
			out = append(out, toTaskJSON(t, now))
		}
		return printJSON(w, out)
	}

	s := model.Summarize(a.store.Tasks(), now)
	fmt.Fprintf(w, "%d overdue, %d pending, %d completed\n", s.Urgent, s.Pending, s.Completed)
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return nil
	}
	for _, t := range tasks {
		status := model.DeriveDisplayStatus(t, now)
		fmt.Fprintf(w, "%-9s  %-8s  %s  %s  [%s]  %s\n",
			status.Label(), t.Priority, t.ID, t.Title, assigneeNames(t), model.RelativeTime(t.Deadline, now))
	}
	return nil
}

func runTaskShow(a *app, w io.Writer, ref string) error {
	t, err := a.store.Snapshot().ResolveTask(ref)
	if err != nil {
		return err
	}
	now := a.store.Now()
	if flagJSON {
		return printJSON(w, toTaskJSON(t, now))
	}

	status := model.DeriveDisplayStatus(t, now)
	fmt.Fprintf(w, "%s  %s\n", t.ID, t.Title)
	fmt.Fprintf(w, "Status:    %s\n", status.Label())
	fmt.Fprintf(w, "Priority:  %s\n", t.Priority)
	fmt.Fprintf(w, "Deadline:  %s (%s)\n", t.Deadline.Local().Format("2006-01-02 15:04"), model.RelativeTime(t.Deadline, now))
	if t.CompletedAt != nil {
		fmt.Fprintf(w, "Completed: %s\n", t.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	if t.IsGroupTask {
		fmt.Fprintln(w, "Mode:      group")
	}
	fmt.Fprintln(w, "Assignees:")
	for _, p := range t.Assignees {
		fmt.Fprintf(w, "  %s  %s <%s>\n", p.ID, p.Name, p.Email)
	}
	if t.Message != "" {
		fmt.Fprintf(w, "\n%s\n", t.Message)
	}
	return nil
}

func runTaskStatus(a *app, w io.Writer, ref string, status model.Status) error {
	t, err := a.store.Snapshot().ResolveTask(ref)
	if err != nil {
		return err
	}
	if err := a.store.UpdateTaskStatus(t.ID, status, nil); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s is now %s\n", t.ID, status)
	return nil
}

func runTaskArchive(a *app, w io.Writer, ref string) error {
	t, err := a.store.Snapshot().ResolveTask(ref)
	if err != nil {
		return err
	}
	if err := a.store.ArchiveTask(t.ID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Archived %s\n", t.ID)
	return nil
}

func runTaskChase(ctx context.Context, a *app, w io.Writer, ref string, opts chaseOptions) error {
	t, err := a.store.Snapshot().ResolveTask(ref)
	if err != nil {
		return err
	}
	now := a.store.Now()
	if err := chaser.CheckUrgent(t, now); err != nil && !opts.force {
		if errors.Is(err, chaser.ErrNotUrgent) {
			return fmt.Errorf("%w (use --force to chase anyway)", err)
		}
		return err
	}

	d := chaser.NewDraft(t, a.cfg.Chaser.Sender)
	for _, cc := range opts.cc {
		d.AddCC(cc)
	}
	if opts.subject != "" {
		d.Subject = opts.subject
	}
	if opts.body != "" {
		d.Body = opts.body
	}

	disp := chaser.NewOutboxDispatcher(a.repo, nil, a.store.Now)
	c, err := disp.Dispatch(ctx, d)
	if err != nil {
		return err
	}
	a.log.Info("chaser queued", "chaser_id", c.ID, "task_id", c.TaskID, "to", len(c.To), "cc", len(c.CC))

	if flagJSON {
		return printJSON(w, toChaserJSON(c))
	}
	fmt.Fprintf(w, "Queued %s for %s\n", c.ID, strings.Join(append(append([]string{}, c.To...), c.CC...), ", "))
	fmt.Fprintf(w, "Subject: %s\n", c.Subject)
	return nil
}

func runTaskChasers(ctx context.Context, a *app, w io.Writer, ref string) error {
	taskID := ""
	if ref != "" {
		t, err := a.store.Snapshot().ResolveTask(ref)
		if err != nil {
			return err
		}
		taskID = t.ID
	}
	chasers, err := a.repo.ListChasers(ctx, taskID)
	if err != nil {
		return err
	}

	if flagJSON {
		out := make([]ChaserJSON, 0, len(chasers))
		for _, c := range chasers {
			out = append(out, toChaserJSON(c))
		}
		return printJSON(w, out)
	}
	if len(chasers) == 0 {
		fmt.Fprintln(w, "No chasers")
		return nil
	}
	for _, c := range chasers {
		fmt.Fprintf(w, "%s  %s  %s  %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"), c.ID, c.TaskID, c.Subject)
	}
	return nil
}

func assigneeNames(t model.Task) string {
	names := make([]string, 0, len(t.Assignees))
	for _, p := range t.Assignees {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
