package handler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dtroode/heartcare-server/internal/api/cli"
	"github.com/dtroode/heartcare-server/internal/api/cli/session"
	"github.com/dtroode/heartcare-server/internal/logger"
	"github.com/dtroode/heartcare-server/internal/model"
)

const timeLayout = "2006-01-02 15:04:05"

// AnalysisService defines image analysis and profile operations.
type AnalysisService interface {
	Analyze(ctx context.Context, session model.Session, image io.Reader, originalName string) (model.HistoryEntry, error)
	Reanalyze(ctx context.Context, session model.Session, existing model.HistoryEntry) (model.HistoryEntry, error)
	Profile(ctx context.Context, session model.Session) (model.Profile, error)
}

// Analysis handles the analyze, history and reanalyze commands. It expects
// the session in the context.
type Analysis struct {
	analysisService AnalysisService
	out             io.Writer
	logger          *logger.Logger
	open            func(name string) (io.ReadCloser, error)
}

// NewAnalysis creates a new Analysis handler.
func NewAnalysis(analysisService AnalysisService, out io.Writer, logger *logger.Logger) *Analysis {
	return &Analysis{
		analysisService: analysisService,
		out:             out,
		logger:          logger,
		open: func(name string) (io.ReadCloser, error) {
			return os.Open(name)
		},
	}
}

// Analyze uploads the image at the given path and prints the verdict.
// Usage: analyze <path>
func (h *Analysis) Analyze(ctx context.Context, req cli.Request) error {
	if len(req.Args) != 1 {
		return &cli.UsageError{Usage: "analyze <path>"}
	}
	path := req.Args[0]

	f, err := h.open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	entry, err := h.analysisService.Analyze(ctx, session.FromContext(ctx), f, filepath.Base(path))
	if err != nil {
		return err
	}

	fmt.Fprintf(h.out, "Saved as %s\n", entry.Filename)
	h.printVerdict("Prediction", entry)
	return nil
}

// History prints the profile and the most recent analyses, newest first.
func (h *Analysis) History(ctx context.Context, _ cli.Request) error {
	profile, err := h.analysisService.Profile(ctx, session.FromContext(ctx))
	if err != nil {
		return err
	}

	name := profile.FullName
	if name == "" {
		name = profile.Username
	}
	fmt.Fprintf(h.out, "%s (member since %s)\n", name, profile.CreatedAt.Local().Format(timeLayout))

	if len(profile.History) == 0 {
		fmt.Fprintln(h.out, "No uploads yet. Try: analyze <path>")
		return nil
	}

	tw := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTIME\tFILE\tRESULT\tCONFIDENCE")
	for i, e := range profile.History {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1, formatTime(e.Timestamp), e.Filename, e.Label, formatConfidence(e))
	}
	return tw.Flush()
}

// Reanalyze runs the classifier again on the n-th entry shown by history.
// Usage: reanalyze <n>
func (h *Analysis) Reanalyze(ctx context.Context, req cli.Request) error {
	usage := &cli.UsageError{Usage: "reanalyze <n>"}
	if len(req.Args) != 1 {
		return usage
	}
	n, err := strconv.Atoi(req.Args[0])
	if err != nil || n < 1 {
		return usage
	}

	s := session.FromContext(ctx)
	profile, err := h.analysisService.Profile(ctx, s)
	if err != nil {
		return err
	}
	if len(profile.History) == 0 {
		fmt.Fprintln(h.out, "No uploads yet. Try: analyze <path>")
		return nil
	}
	if n > len(profile.History) {
		return &cli.UsageError{Usage: fmt.Sprintf("reanalyze <n>, n between 1 and %d", len(profile.History))}
	}

	entry, err := h.analysisService.Reanalyze(ctx, s, profile.History[n-1])
	if err != nil {
		return err
	}

	h.printVerdict("Re-analysis", entry)
	return nil
}

func (h *Analysis) printVerdict(title string, e model.HistoryEntry) {
	if e.Label.Unavailable() {
		fmt.Fprintf(h.out, "%s: model not loaded, the upload was recorded without a result.\n", title)
		return
	}
	fmt.Fprintf(h.out, "%s: %s (%.2f%%)\n", title, e.Label, e.Confidence)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func formatConfidence(e model.HistoryEntry) string {
	if e.Label.Unavailable() {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", e.Confidence)
}
