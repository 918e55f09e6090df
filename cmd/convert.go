package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/canvaspipe/core"
	"github.com/gaurav-prasanna/canvaspipe/core/extract"
	"github.com/gaurav-prasanna/canvaspipe/core/normalize"
	"github.com/gaurav-prasanna/canvaspipe/core/output"
	"github.com/gaurav-prasanna/canvaspipe/core/render"
)

// Flag variables.
var (
	flagAll       bool
	flagPDF       bool
	flagMarkdown  bool
	flagJSON      bool
	flagOutputDir string
)

var convertCmd = &cobra.Command{
	Use:   "convert <course-id> [page-url]",
	Short: "Convert a Canvas page to the specified output format",
	Long: `Convert fetches a Canvas page, normalizes its HTML to Markdown,
and converts it to the specified output format (PDF, Markdown, or JSON).

Examples:
  canvaspipe convert 57795 day-3 --markdown
  canvaspipe convert 57795 day-3 --json --output_dir ./out
  canvaspipe convert 57795 --all --pdf`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	// Mode flag.
	convertCmd.Flags().BoolVar(&flagAll, "all", false, "Convert every published page of the course")

	// Output format flags (mutually exclusive).
	convertCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	convertCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown")
	convertCmd.Flags().BoolVar(&flagJSON, "json", false, "Output structured JSON")

	// Output directory.
	convertCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
}

// runConvert runs Canvas pages through the pipeline:
// fetch → normalize → render → write.
func runConvert(cmd *cobra.Command, args []string) error {
	courseID := args[0]

	if err := validateFlags(len(args)); err != nil {
		return err
	}

	renderer, err := selectRenderer()
	if err != nil {
		return err
	}

	client, err := canvasClient()
	if err != nil {
		return err
	}
	normalizer := normalize.New()

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	ctx := cmd.Context()
	if flagAll {
		return runAll(ctx, courseID, client, normalizer, renderer, writer)
	}
	return runOnly(ctx, courseID, args[1], client, normalizer, renderer, writer)
}

// runOnly processes a single page through the pipeline.
func runOnly(
	ctx context.Context,
	courseID, pageURL string,
	source core.PageSource,
	normalizer core.Transformer,
	renderer core.Renderer,
	writer *output.Writer,
) error {
	data, err := processPage(ctx, courseID, pageURL, source, normalizer, renderer)
	if err != nil {
		return err
	}

	path, err := writer.WriteFile(courseID+" "+pageURL, data, renderer.Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s Written: %s\n", okMark, path)
	return nil
}

// runAll lists the published pages of a course and processes each through the pipeline.
func runAll(
	ctx context.Context,
	courseID string,
	source core.PageSource,
	normalizer core.Transformer,
	renderer core.Renderer,
	writer *output.Writer,
) error {
	fmt.Fprintf(os.Stdout, "Listing pages of course %s...\n", courseID)

	pages, err := source.Pages(ctx, courseID)
	if err != nil {
		return fmt.Errorf("listing pages: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Found %d pages to process\n", len(pages))

	var errCount int
	for i, ref := range pages {
		fmt.Fprintf(os.Stdout, "[%d/%d] Processing %s\n", i+1, len(pages), ref.URL)

		data, err := processPage(ctx, courseID, ref.URL, source, normalizer, renderer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s Error: %v\n", failMark, err)
			errCount++
			continue
		}

		path, err := writer.WriteFile(courseID+" "+ref.URL, data, renderer.Extension())
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s Write error: %v\n", failMark, err)
			errCount++
			continue
		}
		fmt.Fprintf(os.Stdout, "  %s Written: %s\n", okMark, path)
	}

	if errCount > 0 {
		fmt.Fprintf(os.Stderr, "\n%d/%d pages failed\n", errCount, len(pages))
	}
	return nil
}

// processPage runs a single page through the full pipeline.
func processPage(
	ctx context.Context,
	courseID, pageURL string,
	source core.PageSource,
	normalizer core.Transformer,
	renderer core.Renderer,
) ([]byte, error) {
	// 1. Fetch
	page, err := source.Page(ctx, courseID, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	// 2. Normalize to Markdown
	markdown, err := normalizer.Transform(page.Body)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	// 3. Render to output format
	data, err := renderer.Render(markdown, buildMetadata(courseID, page))
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return data, nil
}

// buildMetadata constructs PageMetadata from the fetched page. An untitled
// page takes its first heading as the title.
func buildMetadata(courseID string, page *core.PageBody) core.PageMetadata {
	meta := core.PageMetadata{
		CourseID:  courseID,
		PageURL:   page.URL,
		Title:     page.Title,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if meta.Title == "" {
		meta.Title = extract.Title(page.Body)
	}
	if !page.UpdatedAt.IsZero() {
		meta.UpdatedAt = page.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return meta
}

// validateFlags checks that exactly one output format is chosen and
// that a page URL is given unless --all is set.
func validateFlags(nargs int) error {
	if flagAll && nargs > 1 {
		return fmt.Errorf("a page URL and --all are mutually exclusive")
	}
	if !flagAll && nargs < 2 {
		return fmt.Errorf("a page URL is required unless --all is set")
	}

	// Count output formats.
	formatCount := 0
	if flagPDF {
		formatCount++
	}
	if flagMarkdown {
		formatCount++
	}
	if flagJSON {
		formatCount++
	}

	if formatCount == 0 {
		return fmt.Errorf("exactly one output format is required: --pdf, --markdown, or --json")
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}
	return nil
}

// selectRenderer creates the appropriate Renderer based on flags.
func selectRenderer() (core.Renderer, error) {
	switch {
	case flagMarkdown:
		return render.NewMarkdownRenderer(), nil
	case flagJSON:
		return render.NewJSONRenderer(), nil
	case flagPDF:
		return render.NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("no output format selected")
	}
}
