package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/canvaspipe/core/officehours"
	"github.com/gaurav-prasanna/canvaspipe/core/render"
)

const dateLayout = "2006-01-02"

var (
	flagFormat    string
	flagTermStart string
	flagTermEnd   string
	flagFile      string
	flagOut       string
)

var officeHoursCmd = &cobra.Command{
	Use:   "officehours <course-id>",
	Short: "Extract the weekly office-hours schedule from a course front page",
	Long: `Officehours reads the course front page (or a saved HTML file) and prints
the weekly student-hours schedule it finds: in-person and virtual slots,
the room, the meeting link and any note.

Examples:
  canvaspipe officehours 57795
  canvaspipe officehours 57795 --format json
  canvaspipe officehours 57795 --format ics --term-start 2026-01-12 --term-end 2026-05-15 --out hours.ics
  canvaspipe officehours 57795 --file front.html`,
	Args: cobra.ExactArgs(1),
	RunE: runOfficeHours,
}

func init() {
	rootCmd.AddCommand(officeHoursCmd)

	officeHoursCmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or ics")
	officeHoursCmd.Flags().StringVar(&flagTermStart, "term-start", "", "First day of term, YYYY-MM-DD (ics only)")
	officeHoursCmd.Flags().StringVar(&flagTermEnd, "term-end", "", "Last day of term, YYYY-MM-DD (ics only)")
	officeHoursCmd.Flags().StringVar(&flagFile, "file", "", "Read the front page from an HTML file instead of Canvas")
	officeHoursCmd.Flags().StringVar(&flagOut, "out", "", "Write to this file instead of stdout")
}

func runOfficeHours(cmd *cobra.Command, args []string) error {
	courseID := args[0]

	renderer, err := selectOfficeHoursRenderer(courseID)
	if err != nil {
		return err
	}

	body, err := frontPageHTML(cmd, courseID)
	if err != nil {
		return err
	}

	extractor := officehours.New(officehours.Config{
		MeetingProviders: cfg.MeetingProviders,
		Logger:           logger,
	})
	hours := extractor.Extract(body)
	logger.Debug("extracted office hours", "course", courseID, "days", len(hours.Schedule))

	data, err := renderer.Render(hours)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if flagOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(flagOut, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", flagOut, err)
	}
	fmt.Fprintf(os.Stdout, "%s Written: %s\n", okMark, flagOut)
	return nil
}

// frontPageHTML returns the --file contents or the course front page body.
// A course without a front page yields "" and the empty schedule.
func frontPageHTML(cmd *cobra.Command, courseID string) (string, error) {
	if flagFile != "" {
		data, err := os.ReadFile(flagFile)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", flagFile, err)
		}
		return string(data), nil
	}

	client, err := canvasClient()
	if err != nil {
		return "", err
	}
	page, err := client.FrontPage(cmd.Context(), courseID)
	if err != nil {
		return "", fmt.Errorf("fetching front page: %w", err)
	}
	if page == nil {
		logger.Warn("course has no front page", "course", courseID)
		return "", nil
	}
	return page.Body, nil
}

func selectOfficeHoursRenderer(courseID string) (render.OfficeHoursRenderer, error) {
	switch strings.ToLower(flagFormat) {
	case "text", "":
		return render.OfficeHoursText{SourceURL: courseURL(courseID)}, nil
	case "json":
		return render.OfficeHoursJSON{}, nil
	case "ics":
		if flagTermStart == "" || flagTermEnd == "" {
			return nil, fmt.Errorf("--term-start and --term-end are required with --format ics")
		}
		start, err := time.Parse(dateLayout, flagTermStart)
		if err != nil {
			return nil, fmt.Errorf("invalid --term-start: %w", err)
		}
		end, err := time.Parse(dateLayout, flagTermEnd)
		if err != nil {
			return nil, fmt.Errorf("invalid --term-end: %w", err)
		}
		return render.OfficeHoursICS{
			TermStart: start,
			TermEnd:   end,
			Summary:   eventSummary(courseID),
			CourseID:  courseID,
		}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: want text, json or ics", flagFormat)
	}
}

func courseURL(courseID string) string {
	if cfg.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(cfg.BaseURL, "/") + "/courses/" + courseID
}

// eventSummary titles calendar events after the mapped course code,
// e.g. "MTH 122 Student Hours".
func eventSummary(courseID string) string {
	if m, ok := cfg.Mapping(courseID); ok && m.CourseCode != "" {
		return strings.ToUpper(strings.ReplaceAll(m.CourseCode, "-", " ")) + " Student Hours"
	}
	return "Student Hours"
}
