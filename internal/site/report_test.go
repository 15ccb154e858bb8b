package site

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveOutcome(t *testing.T) {
	tests := []struct {
		name string
		prep func(r *BuildReport)
		want BuildOutcome
	}{
		{"clean build", func(r *BuildReport) {}, OutcomeSuccess},
		{"warnings only", func(r *BuildReport) {
			r.AddIssue(IssueParseSkipped, StageLoadContent, SeverityWarning, "skipped", errors.New("bad frontmatter"))
		}, OutcomeWarning},
		{"fatal error", func(r *BuildReport) {
			r.AddIssue(IssueAssemblyFailure, StageAssemblePages, SeverityError, "boom", errors.New("boom"))
		}, OutcomeFailed},
		{"canceled", func(r *BuildReport) {
			se := newCanceledStageError(StageRenderPosts, errors.New("context canceled"))
			r.AddIssue(IssueCanceled, StageRenderPosts, SeverityError, se.Error(), se)
		}, OutcomeCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newBuildReport("test")
			tt.prep(r)
			r.deriveOutcome()
			require.Equal(t, tt.want, r.OutcomeT)
			require.Equal(t, string(tt.want), r.Outcome)
		})
	}
}

func TestSummary_ListsSkippedFilesWithReasons(t *testing.T) {
	r := newBuildReport("test")
	r.Posts = 3
	r.SkippedFiles = append(r.SkippedFiles,
		SkippedFile{Path: "bad.md", Reason: "missing title"},
		SkippedFile{Path: "worse.md", Reason: "malformed date"},
	)
	r.finish()
	r.deriveOutcome()

	s := r.Summary()
	require.Contains(t, s, "posts=3")
	require.Contains(t, s, "skipped: bad.md (missing title)")
	require.Contains(t, s, "skipped: worse.md (malformed date)")
}

func TestPersist_WritesJSONAndText(t *testing.T) {
	dir := t.TempDir()
	r := newBuildReport("build-123")
	r.Posts = 2
	r.RenderedPages = 5
	r.finish()
	r.deriveOutcome()

	require.NoError(t, r.Persist(dir))

	jb, err := os.ReadFile(filepath.Join(dir, "build-report.json"))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(jb, &decoded))
	require.Equal(t, "build-123", decoded["build_id"])
	require.Equal(t, float64(1), decoded["schema_version"])
	require.Equal(t, "success", decoded["outcome"])

	tb, err := os.ReadFile(filepath.Join(dir, "build-report.txt"))
	require.NoError(t, err)
	require.Contains(t, string(tb), "posts=2")

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.NotContains(t, e.Name(), ".tmp")
	}
}

func TestPersist_ErrorsSerializedAsStrings(t *testing.T) {
	dir := t.TempDir()
	r := newBuildReport("b")
	r.AddIssue(IssueAssemblyFailure, StageAssemblePages, SeverityError, "boom", errors.New("boom"))
	r.finish()
	r.deriveOutcome()

	require.NoError(t, r.Persist(dir))
	jb, err := os.ReadFile(filepath.Join(dir, "build-report.json"))
	require.NoError(t, err)
	var decoded struct {
		Errors  []string `json:"errors"`
		Outcome string   `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(jb, &decoded))
	require.Equal(t, []string{"boom"}, decoded.Errors)
	require.Equal(t, "failed", decoded.Outcome)
}

func TestClassifyStageResult(t *testing.T) {
	t.Run("nil is success", func(t *testing.T) {
		out := classifyStageResult(StageRenderPosts, nil)
		require.Equal(t, StageResultSuccess, out.Result)
		require.False(t, out.Abort)
	})

	t.Run("plain error becomes fatal", func(t *testing.T) {
		out := classifyStageResult(StageRenderPosts, errors.New("boom"))
		require.Equal(t, StageResultFatal, out.Result)
		require.True(t, out.Abort)
	})

	t.Run("warning does not abort", func(t *testing.T) {
		out := classifyStageResult(StageVerifyLinks, newWarnStageError(StageVerifyLinks, errors.New("3 broken links")))
		require.Equal(t, StageResultWarning, out.Result)
		require.False(t, out.Abort)
		require.Equal(t, IssueBrokenLinks, out.IssueCode)
	})

	t.Run("assembly error maps to assembly code", func(t *testing.T) {
		err := newFatalStageError(StageAssemblePages, errors.Join(ErrAssembly, errors.New("write failed")))
		out := classifyStageResult(StageAssemblePages, err)
		require.Equal(t, IssueAssemblyFailure, out.IssueCode)
	})
}
