package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"learno_backend/internal/client"
	"learno_backend/internal/service"

	"github.com/spf13/cobra"
)

func newCoursesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Manage saved courses on a Learno server",
	}
	cmd.PersistentFlags().String("server", envOr("LEARNO_SERVER", "http://localhost:5000"), "Server base URL")
	cmd.PersistentFlags().String("token", os.Getenv("LEARNO_TOKEN"), "Bearer token, needed when the server protects course routes")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <username>",
			Short: "List a user's saved courses",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				courses, err := courseClient(cmd).List(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(courses) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No courses saved.")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "COURSE\tLEVEL\tMILESTONES\tSAVED")
				for i := range courses {
					c := &courses[i]
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.CourseName, c.SkillLevel, len(service.Milestones(c)), c.CreatedAt.Format("2006-01-02"))
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "show <username> <courseName>",
			Short: "Print a saved course as text",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				course, err := courseClient(cmd).Get(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), service.RenderText(course))
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <username> <courseName>",
			Short: "Delete a saved course",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				course, err := courseClient(cmd).Delete(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", course.CourseName, course.SkillLevel)
				return nil
			},
		},
		newCoursesSaveCmd(),
		newCoursesExportCmd(),
	)
	return cmd
}

func newCoursesSaveCmd() *cobra.Command {
	var roadmapFile string
	cmd := &cobra.Command{
		Use:   "save <username> <courseName> <skillLevel>",
		Short: "Save a course from a roadmap JSON file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			roadmap := "[]"
			if roadmapFile != "" {
				data, err := os.ReadFile(roadmapFile)
				if err != nil {
					return err
				}
				if !json.Valid(data) {
					return fmt.Errorf("%s is not valid JSON", roadmapFile)
				}
				roadmap = string(data)
			}
			err := courseClient(cmd).SaveUnique(cmd.Context(), service.SaveCourseInput{
				Username:   args[0],
				CourseName: args[1],
				SkillLevel: args[2],
				Roadmap:    roadmap,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Course saved successfully")
			return nil
		},
	}
	cmd.Flags().StringVarP(&roadmapFile, "roadmap", "r", "", "Path to a JSON array of milestones")
	return cmd
}

func newCoursesExportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <username> <courseName>",
		Short: "Download a course as txt or xlsx",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := courseClient(cmd).Export(cmd.Context(), args[0], args[1], format)
			if err != nil {
				return err
			}
			if out == "" {
				out = args[1] + "." + format
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", service.ExportText, "txt or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout")
	return cmd
}

func courseClient(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	token, _ := cmd.Flags().GetString("token")
	return client.New(client.Config{BaseURL: server, Token: token})
}
