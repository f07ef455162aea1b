package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"learno_backend/internal/client"
	"learno_backend/internal/model"
	"learno_backend/internal/progress"
	"learno_backend/internal/service"

	"github.com/spf13/cobra"
)

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Track chapter progress for saved courses on this machine",
		Long:  "Progress is stored locally and never sent to the server. Courses are addressed as <username> <courseName> <skillLevel>.",
	}
	cmd.PersistentFlags().String("file", "", "Progress file (default ~/.learno/progress.yaml)")
	cmd.PersistentFlags().String("server", envOr("LEARNO_SERVER", "http://localhost:5000"), "Server base URL, used by show")
	cmd.PersistentFlags().String("token", os.Getenv("LEARNO_TOKEN"), "Bearer token for the server")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all tracked courses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := progressStore(cmd)
				if err != nil {
					return err
				}
				all, err := store.All()
				if err != nil {
					return err
				}
				if len(all) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No progress recorded.")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "COURSE\tCOMPLETED\tCURRENT\tUPDATED")
				for _, p := range all {
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", p.CourseID, len(p.CompletedChapters), current(p), p.LastUpdated.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "show <username> <courseName> <skillLevel>",
			Short: "Show a course's milestones with completion marks",
			Args:  cobra.ExactArgs(3),
			RunE:  runProgressShow,
		},
		progressMutation("complete", "Mark a milestone as completed", func(s *progress.Store, id, milestone string) (progress.CourseProgress, error) {
			return s.Complete(id, milestone)
		}),
		progressMutation("uncomplete", "Clear a milestone's completion", func(s *progress.Store, id, milestone string) (progress.CourseProgress, error) {
			return s.Uncomplete(id, milestone)
		}),
		progressMutation("current", "Set the milestone being studied", func(s *progress.Store, id, milestone string) (progress.CourseProgress, error) {
			return s.SetCurrent(id, milestone)
		}),
		&cobra.Command{
			Use:   "forget <username> <courseName> <skillLevel>",
			Short: "Drop the progress record for a course",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := progressStore(cmd)
				if err != nil {
					return err
				}
				return store.Forget(model.CourseKey(args[0], args[1], args[2]))
			},
		},
	)
	return cmd
}

func progressMutation(use, short string, apply func(*progress.Store, string, string) (progress.CourseProgress, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username> <courseName> <skillLevel> <milestoneId>",
		Short: short,
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := progressStore(cmd)
			if err != nil {
				return err
			}
			p, err := apply(store, model.CourseKey(args[0], args[1], args[2]), args[3])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d completed, current %s\n", p.CourseID, len(p.CompletedChapters), current(p))
			return nil
		},
	}
}

func runProgressShow(cmd *cobra.Command, args []string) error {
	store, err := progressStore(cmd)
	if err != nil {
		return err
	}

	server, _ := cmd.Flags().GetString("server")
	token, _ := cmd.Flags().GetString("token")
	course, err := client.New(client.Config{BaseURL: server, Token: token}).Get(cmd.Context(), args[0], args[1])
	if errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("course %q is not saved for %s", args[1], args[0])
	}
	if err != nil {
		return err
	}
	if !strings.EqualFold(course.SkillLevel, args[2]) {
		return fmt.Errorf("course %q is saved at %s level, not %s", course.CourseName, course.SkillLevel, args[2])
	}

	p, err := store.Get(course.Key())
	if err != nil {
		return err
	}

	milestones := service.Milestones(course)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s) %d%% complete\n", course.CourseName, course.SkillLevel, p.Percent(len(milestones)))
	for i, m := range milestones {
		mark := " "
		if p.IsCompleted(m.ID) {
			mark = "x"
		}
		suffix := ""
		if p.CurrentChapter != nil && *p.CurrentChapter == m.ID {
			suffix = "  <- current"
		}
		fmt.Fprintf(out, "[%s] %d. %s (%s)%s\n", mark, i+1, m.Title, m.Duration, suffix)
	}
	return nil
}

func progressStore(cmd *cobra.Command) (*progress.Store, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		var err error
		if path, err = progress.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return progress.NewStore(path), nil
}

func current(p progress.CourseProgress) string {
	if p.CurrentChapter == nil {
		return "-"
	}
	return *p.CurrentChapter
}
