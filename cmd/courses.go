package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/canvaspipe/core/canvas"
)

var (
	flagArchived    bool
	flagCoursesJSON bool
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the taught courses shown on the website",
	Long: `Courses lists the Canvas courses you teach from Fall 2024 on, newest term
first, skipping department resource shells. By default only courses whose
term has not ended are shown.

Examples:
  canvaspipe courses
  canvaspipe courses --archived --json`,
	Args: cobra.NoArgs,
	RunE: runCourses,
}

func init() {
	rootCmd.AddCommand(coursesCmd)

	coursesCmd.Flags().BoolVar(&flagArchived, "archived", false, "List courses whose term has ended")
	coursesCmd.Flags().BoolVar(&flagCoursesJSON, "json", false, "Print the course catalogue as JSON")
}

func runCourses(cmd *cobra.Command, args []string) error {
	client, err := canvasClient()
	if err != nil {
		return err
	}

	courses, err := client.TeacherCourses(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing courses: %w", err)
	}

	catalog := canvas.FilterCourses(courses)
	now := time.Now()
	if flagArchived {
		catalog = canvas.Archived(catalog, now)
	} else {
		catalog = canvas.Current(catalog, now)
	}
	logger.Debug("filtered courses", "fetched", len(courses), "shown", len(catalog))

	if flagCoursesJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(canvas.GroupByTerm(catalog))
	}

	if len(catalog) == 0 {
		fmt.Fprintln(os.Stdout, "No courses found")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tTERM\tNAME")
	for _, c := range catalog {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Code, c.Term.Name, c.Name)
	}
	return tw.Flush()
}
