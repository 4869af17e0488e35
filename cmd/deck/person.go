package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/baiirun/deck/internal/model"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Manage the people roster",
}

var personAddOpts model.PersonDraft

var personAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a person to the roster",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft := personAddOpts
		draft.Name = strings.Join(args, " ")
		return withApp(cmd.Context(), func(a *app) error {
			return runPersonAdd(a, cmd.OutOrStdout(), draft)
		})
	},
}

var flagTags []string

var personListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the roster ranked by reliability",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return runPersonList(a, cmd.OutOrStdout(), flagTags)
		})
	},
}

var personShowCmd = &cobra.Command{
	Use:   "show <id|email>",
	Short: "Show a person's stats and recent tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return runPersonShow(a, cmd.OutOrStdout(), args[0])
		})
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List every tag used on the roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return runTags(a, cmd.OutOrStdout())
		})
	},
}

func init() {
	personAddCmd.Flags().StringVar(&personAddOpts.Email, "email", "", "email address")
	personAddCmd.Flags().StringVar(&personAddOpts.Department, "department", "", "department")
	personAddCmd.Flags().StringSliceVarP(&personAddOpts.Tags, "tag", "t", nil, "tag (repeatable)")
	personAddCmd.Flags().StringVar(&personAddOpts.Avatar, "avatar", "", "avatar URL (default placeholder)")
	_ = personAddCmd.MarkFlagRequired("email")

	personListCmd.Flags().StringSliceVarP(&flagTags, "tag", "t", nil, "only people with any of these tags")

	personCmd.AddCommand(personAddCmd)
	personCmd.AddCommand(personListCmd)
	personCmd.AddCommand(personShowCmd)
}

func runPersonAdd(a *app, w io.Writer, draft model.PersonDraft) error {
	if strings.TrimSpace(draft.Name) == "" {
		return fmt.Errorf("name is required")
	}
	p := a.store.AddPerson(draft)
	if flagJSON {
		return printJSON(w, toPersonJSON(p))
	}
	fmt.Fprintf(w, "Added %s: %s <%s>\n", p.ID, p.Name, p.Email)
	return nil
}

func runPersonList(a *app, w io.Writer, tags []string) error {
	ranked := model.RankByReliability(model.FilterByTags(a.store.People(), tags))

	if flagJSON {
		out := make([]PersonJSON, 0, len(ranked))
		for i, p := range ranked {
			pj := toPersonJSON(p)
			pj.Rank = i + 1
			out = append(out, pj)
		}
		return printJSON(w, out)
	}
	if len(ranked) == 0 {
		fmt.Fprintln(w, "No people")
		return nil
	}
	for i, p := range ranked {
		fmt.Fprintf(w, "%-4s  %s  %-18s  %3.0f%% (%s)  %4.1fh  %3.0f%% late (%s)  %s\n",
			humanize.Ordinal(i+1), p.ID, p.Name,
			p.Stats.Reliability, model.ReliabilityBand(p.Stats.Reliability),
			p.Stats.AvgSpeedHours,
			p.Stats.LateRate, model.LateRateBand(p.Stats.LateRate),
			strings.Join(p.Tags, ", "))
	}
	return nil
}

func runPersonShow(a *app, w io.Writer, ref string) error {
	snap := a.store.Snapshot()
	p, err := snap.ResolvePerson(ref)
	if err != nil {
		return err
	}
	now := a.store.Now()
	recent := model.RecentTasksFor(p.ID, snap.Tasks, 5)

	if flagJSON {
		pj := toPersonJSON(p)
		for _, t := range recent {
			pj.RecentTasks = append(pj.RecentTasks, toTaskJSON(t, now))
		}
		return printJSON(w, pj)
	}

	fmt.Fprintf(w, "%s  %s <%s>\n", p.ID, p.Name, p.Email)
	fmt.Fprintf(w, "Department:  %s\n", p.Department)
	if len(p.Tags) > 0 {
		fmt.Fprintf(w, "Tags:        %s\n", strings.Join(p.Tags, ", "))
	}
	fmt.Fprintf(w, "Reliability: %.0f%%\n", p.Stats.Reliability)
	fmt.Fprintf(w, "Avg speed:   %.1fh\n", p.Stats.AvgSpeedHours)
	fmt.Fprintf(w, "Late rate:   %.0f%%\n", p.Stats.LateRate)
	if len(p.TaskHistory) > 0 {
		fmt.Fprintln(w, "History:")
		for _, h := range p.TaskHistory {
			fmt.Fprintf(w, "  %s  %3.0f%%\n", h.Date, h.Punctuality)
		}
	}
	fmt.Fprintln(w, "Recent tasks:")
	if len(recent) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, t := range recent {
		fmt.Fprintf(w, "  %-9s  %s  %s\n", model.DeriveDisplayStatus(t, now).Label(), t.ID, t.Title)
	}
	return nil
}

func runTags(a *app, w io.Writer) error {
	tags := model.AllTags(a.store.People())
	if flagJSON {
		if tags == nil {
			tags = []string{}
		}
		return printJSON(w, tags)
	}
	for _, t := range tags {
		fmt.Fprintln(w, t)
	}
	return nil
}
