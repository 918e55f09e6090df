package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/canvaspipe/core/canvas"
	"github.com/gaurav-prasanna/canvaspipe/core/links"
	"github.com/gaurav-prasanna/canvaspipe/core/output"
)

var (
	flagApply     bool
	flagBackupDir string
)

var linksCmd = &cobra.Command{
	Use:   "links <course-id>",
	Short: "Make links on the notes and Day N pages open in a new tab",
	Long: `Links inspects the course notes page and every "Day N" page and lists the
anchors that do not open in a new tab. With --apply it rewrites them with
target="_blank" rel="noopener noreferrer" and saves the pages back to Canvas.

The original page bodies are written to --backup before any update.

Examples:
  canvaspipe links 57795
  canvaspipe links 57795 --apply --backup ./backups`,
	Args: cobra.ExactArgs(1),
	RunE: runLinks,
}

func init() {
	rootCmd.AddCommand(linksCmd)

	linksCmd.Flags().BoolVar(&flagApply, "apply", false, "Update the pages in Canvas (default is a dry run)")
	linksCmd.Flags().StringVar(&flagBackupDir, "backup", "backups", "Directory for original page bodies")
}

func runLinks(cmd *cobra.Command, args []string) error {
	courseID := args[0]
	ctx := cmd.Context()

	client, err := canvasClient()
	if err != nil {
		return err
	}

	var pages []*canvas.Page
	notes, err := client.NotesPage(ctx, courseID)
	if err != nil {
		return fmt.Errorf("finding notes page: %w", err)
	}
	if notes != nil {
		pages = append(pages, notes)
	}

	days, err := client.DayPages(ctx, courseID)
	if err != nil {
		return fmt.Errorf("listing day pages: %w", err)
	}
	for _, d := range days {
		if notes != nil && d.URL == notes.URL {
			continue
		}
		p, err := client.GetPage(ctx, courseID, d.URL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s Error: %s: %v\n", failMark, d.URL, err)
			continue
		}
		pages = append(pages, p)
	}

	var backups *output.Writer
	if flagApply {
		if backups, err = output.New(flagBackupDir); err != nil {
			return fmt.Errorf("initializing backup directory: %w", err)
		}
	}

	pageURL := func(p *canvas.Page) string {
		return courseURL(courseID) + "/pages/" + p.URL
	}

	var total, rewritten, updated, errCount int
	for i, p := range pages {
		found, err := links.Analyze(p.Body, pageURL(p))
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s Error: %s: %v\n", failMark, p.URL, err)
			errCount++
			continue
		}
		for _, l := range found {
			if l.Rewrite {
				logger.Debug("link needs new tab", "page", p.URL, "href", l.Href, "internal", l.Internal, "file", l.File)
			}
		}

		body, n, err := links.AddTargetBlank(p.Body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s Error: %s: %v\n", failMark, p.URL, err)
			errCount++
			continue
		}
		fmt.Fprintf(os.Stdout, "[%d/%d] %s: %d links to update\n", i+1, len(pages), p.Title, n)
		total += n
		if n == 0 || !flagApply {
			continue
		}

		path, err := backups.WriteFile(courseID+" "+p.URL, []byte(p.Body), ".html")
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s Backup error: %v\n", failMark, err)
			errCount++
			continue
		}
		if err := client.UpdatePageBody(ctx, courseID, p.URL, body); err != nil {
			fmt.Fprintf(os.Stderr, "  %s Update error: %s: %v\n", failMark, p.URL, err)
			errCount++
			continue
		}
		updated++
		rewritten += n
		fmt.Fprintf(os.Stdout, "  %s Updated (backup: %s)\n", okMark, path)
	}

	if flagApply {
		fmt.Fprintf(os.Stdout, "\n%d links rewritten on %d pages\n", rewritten, updated)
	} else {
		fmt.Fprintf(os.Stdout, "\n%d links would be rewritten; %s\n", total,
			color.YellowString("run with --apply to update Canvas"))
	}
	if errCount > 0 {
		fmt.Fprintf(os.Stderr, "%d/%d pages failed\n", errCount, len(pages))
	}
	return nil
}
