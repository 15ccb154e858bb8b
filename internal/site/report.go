package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nbarraud/blogbuilder/internal/templates"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// ReportIssueCode enumerates machine-parseable issue identifiers.
// These codes are stable contract and should only be appended (no reuse on removal).
type ReportIssueCode string

const (
	IssueContentLoad       ReportIssueCode = "CONTENT_LOAD"
	IssueParseSkipped      ReportIssueCode = "PARSE_SKIPPED"
	IssueTemplateMissing   ReportIssueCode = "TEMPLATE_MISSING"
	IssueAssemblyFailure   ReportIssueCode = "ASSEMBLY_FAILURE"
	IssueBrokenLinks       ReportIssueCode = "BROKEN_LINKS"
	IssueCanceled          ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a structured taxonomy entry describing a discrete problem.
// Message is human-friendly; Code + Stage allow automated handling.
type ReportIssue struct {
	Code     ReportIssueCode `json:"code"`
	Stage    StageName       `json:"stage"`
	Severity IssueSeverity   `json:"severity"`
	Message  string          `json:"message"`
}

// SkippedFile records one content file dropped by the loader and why.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// StageCount aggregates outcome counts for a stage.
type StageCount struct {
	Success  int
	Warning  int
	Fatal    int
	Canceled int
}

// BuildReport captures metrics and outcomes for one site build.
type BuildReport struct {
	SchemaVersion   int
	BuildID         string
	Start           time.Time
	End             time.Time
	Posts           int // posts published
	Assets          int
	RenderedPages   int // output documents written (posts + index pages)
	CacheHits       int
	SkippedFiles    []SkippedFile
	Errors          []error // fatal errors causing build abortion (at most one today)
	Warnings        []error
	StageDurations  map[string]time.Duration
	StageCounts     map[StageName]StageCount
	Issues          []ReportIssue
	Outcome         string       // string form for JSON; OutcomeT is source of truth
	OutcomeT        BuildOutcome
	TemplateSources map[string]templates.Info
}

func newBuildReport(buildID string) *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		BuildID:         buildID,
		Start:           time.Now(),
		StageDurations:  make(map[string]time.Duration),
		StageCounts:     make(map[StageName]StageCount),
		TemplateSources: make(map[string]templates.Info),
	}
}

func (r *BuildReport) finish() { r.End = time.Now() }

// AddIssue appends a structured issue and mirrors err into Errors/Warnings
// based on severity. Provide err=nil for purely informational issues.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, msg string, err error) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Message: msg})
	if err != nil {
		switch severity {
		case SeverityError:
			r.Errors = append(r.Errors, err)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, err)
		}
	}
}

// recordStageResult updates per-stage counters.
func (r *BuildReport) recordStageResult(stage StageName, res StageResult) {
	sc := r.StageCounts[stage]
	switch res {
	case StageResultSuccess:
		sc.Success++
	case StageResultWarning:
		sc.Warning++
	case StageResultFatal:
		sc.Fatal++
	case StageResultCanceled:
		sc.Canceled++
	}
	r.StageCounts[stage] = sc
}

// deriveOutcome sets the Outcome fields based on recorded errors/warnings.
func (r *BuildReport) deriveOutcome() {
	switch {
	case len(r.Errors) > 0:
		for _, e := range r.Errors {
			if se, ok := e.(*StageError); ok && se.Kind == StageErrorCanceled {
				r.setOutcome(OutcomeCanceled)
				return
			}
		}
		r.setOutcome(OutcomeFailed)
	case len(r.Warnings) > 0:
		r.setOutcome(OutcomeWarning)
	default:
		r.setOutcome(OutcomeSuccess)
	}
}

func (r *BuildReport) setOutcome(o BuildOutcome) {
	r.OutcomeT = o
	r.Outcome = string(o)
}

// Summary returns the human-readable run summary: counts, skipped files with
// reasons, and the fatal cause if any.
func (r *BuildReport) Summary() string {
	var b strings.Builder
	dur := r.End.Sub(r.Start)
	fmt.Fprintf(&b, "posts=%d assets=%d rendered=%d skipped=%d duration=%s outcome=%s\n",
		r.Posts, r.Assets, r.RenderedPages, len(r.SkippedFiles), dur.Truncate(time.Millisecond), r.Outcome)
	for _, sf := range r.SkippedFiles {
		fmt.Fprintf(&b, "skipped: %s (%s)\n", sf.Path, sf.Reason)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "fatal: %v\n", e)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "warning: %v\n", w)
	}
	return b.String()
}

// Persist writes the report atomically into the provided root directory
// (final output dir, not staging):
//
//	build-report.json  (machine readable)
//	build-report.txt   (human summary)
//
// Best effort; errors are returned for caller logging but do not change the
// build outcome.
func (r *BuildReport) Persist(root string) error {
	if r.End.IsZero() {
		r.finish()
		r.deriveOutcome()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}

	jb, err := json.MarshalIndent(r.serializable(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(root, "build-report.json"), jb); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(root, "build-report.txt"), []byte(r.Summary()))
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// MarshalJSON serializes the report with errors flattened to strings.
func (r *BuildReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.serializable())
}

// buildReportSerializable mirrors BuildReport with string errors for JSON output.
type buildReportSerializable struct {
	SchemaVersion   int                       `json:"schema_version"`
	BuildID         string                    `json:"build_id"`
	Start           time.Time                 `json:"start"`
	End             time.Time                 `json:"end"`
	Posts           int                       `json:"posts"`
	Assets          int                       `json:"assets"`
	RenderedPages   int                       `json:"rendered_pages"`
	CacheHits       int                       `json:"cache_hits"`
	SkippedFiles    []SkippedFile             `json:"skipped_files"`
	Errors          []string                  `json:"errors"`
	Warnings        []string                  `json:"warnings"`
	StageDurations  map[string]time.Duration  `json:"stage_durations"`
	StageCounts     map[string]StageCount     `json:"stage_counts"`
	Issues          []ReportIssue             `json:"issues"`
	Outcome         string                    `json:"outcome"`
	TemplateSources map[string]templates.Info `json:"template_sources,omitempty"`
}

func (r *BuildReport) serializable() *buildReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	s := &buildReportSerializable{
		SchemaVersion:   r.SchemaVersion,
		BuildID:         r.BuildID,
		Start:           r.Start,
		End:             r.End,
		Posts:           r.Posts,
		Assets:          r.Assets,
		RenderedPages:   r.RenderedPages,
		CacheHits:       r.CacheHits,
		SkippedFiles:    r.SkippedFiles,
		Errors:          make([]string, len(r.Errors)),
		Warnings:        make([]string, len(r.Warnings)),
		StageDurations:  r.StageDurations,
		StageCounts:     stageCounts,
		Issues:          r.Issues,
		Outcome:         r.Outcome,
		TemplateSources: r.TemplateSources,
	}
	if s.SkippedFiles == nil {
		s.SkippedFiles = []SkippedFile{}
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}
