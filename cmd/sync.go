package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/canvaspipe/core/normalize"
	"github.com/gaurav-prasanna/canvaspipe/core/output"
	"github.com/gaurav-prasanna/canvaspipe/core/syncer"
)

var (
	flagDryRun  bool
	flagForce   bool
	flagCourses []string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync published Canvas pages into the content store",
	Long: `Sync lists the published pages of every configured course, converts each
page to Markdown and writes it under CONTENT_ROOT with YAML front matter.

Pages whose lastModified matches Canvas are skipped unless --force is given.
A page or course that fails is reported and the sync continues.

Examples:
  canvaspipe sync --dry-run
  canvaspipe sync --course 57795 --force`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Show what would be written without writing")
	syncCmd.Flags().BoolVar(&flagForce, "force", false, "Rewrite pages even when unchanged")
	syncCmd.Flags().StringSliceVar(&flagCourses, "course", nil, "Course ids to sync (default: SYNC_COURSE_IDS)")
}

func runSync(cmd *cobra.Command, args []string) error {
	ids := flagCourses
	if len(ids) == 0 {
		ids = cfg.CourseIDs
	}
	if len(ids) == 0 {
		return fmt.Errorf("no courses to sync: set SYNC_COURSE_IDS or pass --course")
	}

	client, err := canvasClient()
	if err != nil {
		return err
	}
	store, err := output.New(cfg.ContentRoot)
	if err != nil {
		return fmt.Errorf("initializing content store: %w", err)
	}

	s := syncer.New(syncer.Config{
		Source:      client,
		Transformer: normalize.New(),
		Store:       store,
		Mappings:    cfg.Mappings,
		DryRun:      flagDryRun,
		Force:       flagForce,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	})

	report, err := s.SyncAll(cmd.Context(), ids)
	if err != nil {
		return err
	}

	if flagDryRun {
		fmt.Fprintf(os.Stdout, "%s Dry run: %d pages would be written, %d unchanged\n", okMark, report.Planned, report.Unchanged)
	} else {
		fmt.Fprintf(os.Stdout, "%s Written: %d pages, %d unchanged\n", okMark, report.Written, report.Unchanged)
	}
	if report.Failed > 0 || len(report.FailedCourses) > 0 {
		fmt.Fprintf(os.Stderr, "%s %d pages failed, %d/%d courses failed\n", failMark,
			report.Failed, len(report.FailedCourses), report.Courses)
	}
	return nil
}
