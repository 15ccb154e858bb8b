package site

import (
	"errors"
	"fmt"

	"github.com/nbarraud/blogbuilder/internal/templates"
)

// ErrAssembly marks fatal assembly failures: a missing or unparsable
// template, or an output write failure. A run hitting it aborts with no
// partial site published.
var ErrAssembly = errors.New("assembly failed")

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageResult enumerates per-stage classification outcomes.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// StageOutcome is the normalized result of stage execution.
type StageOutcome struct {
	Stage     StageName
	Error     *StageError
	Result    StageResult
	IssueCode ReportIssueCode
	Severity  IssueSeverity
	Abort     bool
}

// classifyStageResult converts a raw error from a stage into a StageOutcome.
func classifyStageResult(stage StageName, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: StageResultSuccess}
	}

	var se *StageError
	if !errors.As(err, &se) {
		se = newFatalStageError(stage, err)
	}

	out := StageOutcome{
		Stage:     stage,
		Error:     se,
		IssueCode: classifyIssueCode(se),
		Severity:  SeverityError,
	}
	switch se.Kind {
	case StageErrorWarning:
		out.Result = StageResultWarning
		out.Severity = SeverityWarning
	case StageErrorCanceled:
		out.Result = StageResultCanceled
		out.IssueCode = IssueCanceled
		out.Abort = true
	default:
		out.Result = StageResultFatal
		out.Abort = true
	}
	return out
}

// classifyIssueCode maps a stage error to a stable machine-parseable code.
func classifyIssueCode(se *StageError) ReportIssueCode {
	switch {
	case errors.Is(se.Err, templates.ErrTemplateMissing):
		return IssueTemplateMissing
	case errors.Is(se.Err, ErrAssembly):
		return IssueAssemblyFailure
	}
	switch se.Stage {
	case StageLoadContent:
		return IssueContentLoad
	case StageVerifyLinks:
		return IssueBrokenLinks
	default:
		return IssueGenericStageError
	}
}
