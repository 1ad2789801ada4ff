// Package merge drives the end-to-end conflict resolution pipeline:
// attempt the merge, enumerate conflicted files, resolve each region
// through the completion service, apply validated candidates, and decide
// whether to leave the merge staged or abort it.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/davidgrant/aimerge/internal/config"
	"github.com/davidgrant/aimerge/internal/conflict"
	"github.com/davidgrant/aimerge/internal/gitrepo"
	"github.com/davidgrant/aimerge/internal/resolve"
)

// State tracks the session through the pipeline. Committed and Aborted
// are terminal.
type State int

const (
	StateIdle State = iota
	StateMergeAttempted
	StateConflictsDetected
	StateResolvingConflicts
	StateAllResolved
	StatePartiallyResolved
	StateResolutionFailed
	StateCommitted
	StateAborted
)

var stateNames = map[State]string{
	StateIdle:               "idle",
	StateMergeAttempted:     "merge-attempted",
	StateConflictsDetected:  "conflicts-detected",
	StateResolvingConflicts: "resolving-conflicts",
	StateAllResolved:        "all-resolved",
	StatePartiallyResolved:  "partially-resolved",
	StateResolutionFailed:   "resolution-failed",
	StateCommitted:          "committed",
	StateAborted:            "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// GitOps is what the session needs from the repository. *gitrepo.Repo
// satisfies it; tests substitute a fake.
type GitOps interface {
	BranchExists(name string) bool
	AttemptMerge(target, source string) (*gitrepo.MergeOutcome, error)
	AbortMerge() error
	ReadFile(rel string) (string, error)
	WriteFile(rel, content string) error
	Stage(rel string) error
}

// RegionResolver produces a terminal resolution attempt for one region.
// *resolve.Resolver satisfies it.
type RegionResolver interface {
	Resolve(ctx context.Context, region conflict.Region, fileContext string) *resolve.Attempt
}

// Session owns one merge invocation. It is the sole writer to the working
// tree (through GitOps) and never outlives the process.
type Session struct {
	git      GitOps
	resolver RegionResolver
	cfg      *config.Config
	target   string
	source   string
	state    State
}

// NewSession prepares a merge of source into target.
func NewSession(git GitOps, resolver RegionResolver, cfg *config.Config, target, source string) *Session {
	return &Session{
		git:      git,
		resolver: resolver,
		cfg:      cfg,
		target:   target,
		source:   source,
		state:    StateIdle,
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}

// Run drives the pipeline to a terminal state. Errors are returned only
// for repository-level failures the session cannot recover from; region
// and file failures are collected into the report instead.
func (s *Session) Run(ctx context.Context) (*Report, error) {
	report := &Report{Target: s.target, Source: s.source}

	for _, branch := range []string{s.target, s.source} {
		if !s.git.BranchExists(branch) {
			return nil, fmt.Errorf("branch %q does not exist", branch)
		}
	}

	slog.Info("attempting merge", "target", s.target, "source", s.source)
	outcome, err := s.git.AttemptMerge(s.target, s.source)
	if err != nil {
		return nil, err
	}
	s.state = StateMergeAttempted

	if outcome.Clean {
		// Nothing for the resolution pipeline to do.
		s.state = StateCommitted
		report.CleanMerge = true
		report.FinalState = s.state.String()
		slog.Info("merge completed without conflicts")
		return report, nil
	}

	s.state = StateConflictsDetected
	slog.Info("merge produced conflicts", "files", len(outcome.ConflictedFiles))

	if !s.cfg.HasAPIKey() {
		return s.abort(report, outcome.ConflictedFiles,
			"no API key configured; cannot resolve conflicts automatically")
	}

	s.state = StateResolvingConflicts
	var authErr error
	for _, path := range outcome.ConflictedFiles {
		if authErr != nil {
			report.Files = append(report.Files, FileResult{
				Path:   path,
				Status: FileSkipped,
				Failures: []RegionFailure{{
					Reason: "not attempted: credential failure aborted the run",
				}},
			})
			continue
		}

		result := s.resolveFile(ctx, path)
		report.Files = append(report.Files, result)

		for _, f := range result.Failures {
			if f.authFailure {
				authErr = errors.New(f.Reason)
				break
			}
		}
	}

	if authErr != nil {
		report.CredentialFailure = authErr.Error()
		s.state = StateResolutionFailed
		return s.abortReported(report)
	}

	resolved := 0
	for _, f := range report.Files {
		if f.Status == FileResolved {
			resolved++
		}
	}

	switch {
	case resolved == len(report.Files):
		s.state = StateAllResolved
		// Finalize: every resolved file is already staged; the merge is
		// left in progress for the user to inspect and commit.
		s.state = StateCommitted
		report.FinalState = s.state.String()
		slog.Info("all conflicts resolved; merge left staged for review")
		return report, nil
	case resolved > 0:
		s.state = StatePartiallyResolved
	default:
		s.state = StateResolutionFailed
	}

	return s.abortReported(report)
}

// resolveFile runs extract → resolve → apply for one conflicted file.
// The file on disk is rewritten only when every region has a validated
// candidate.
func (s *Session) resolveFile(ctx context.Context, path string) FileResult {
	result := FileResult{Path: path}

	content, err := s.git.ReadFile(path)
	if err != nil {
		result.Status = FileFailed
		result.Failures = append(result.Failures, RegionFailure{Reason: err.Error()})
		return result
	}

	regions, err := conflict.Extract(path, content)
	if err != nil {
		result.Status = FileFailed
		result.Failures = append(result.Failures, RegionFailure{Reason: err.Error()})
		return result
	}
	result.Regions = len(regions)

	if len(regions) == 0 {
		// Already clean (resolved out of band); just mark it.
		if err := s.git.Stage(path); err != nil {
			result.Status = FileFailed
			result.Failures = append(result.Failures, RegionFailure{Reason: err.Error()})
			return result
		}
		result.Status = FileResolved
		return result
	}

	slog.Info("resolving file", "path", path, "regions", len(regions))

	candidates := make([]string, len(regions))
	for i, region := range regions {
		window := resolve.ContextWindow(content, region, s.cfg.ContextLines)
		attempt := s.resolver.Resolve(ctx, region, window)

		if attempt.Status != resolve.StatusSucceeded {
			reason := "resolution failed"
			if attempt.Err != nil {
				reason = attempt.Err.Error()
			}
			result.Failures = append(result.Failures, RegionFailure{
				Region:      region.Label(),
				Reason:      reason,
				Calls:       attempt.Calls,
				authFailure: resolve.IsAuthError(attempt.Err),
			})
			if resolve.IsAuthError(attempt.Err) {
				break
			}
			continue
		}

		if err := conflict.Validate(attempt.Text); err != nil {
			result.Failures = append(result.Failures, RegionFailure{
				Region: region.Label(),
				Reason: err.Error(),
				Calls:  attempt.Calls,
			})
			continue
		}

		if attempt.LowConfidence {
			slog.Warn("low-confidence candidate accepted", "region", region.Label())
		}
		candidates[i] = attempt.Text
	}

	if len(result.Failures) > 0 {
		// All-or-nothing per file: leave the conflicted content on disk.
		result.Status = FileFailed
		return result
	}

	spliced, err := conflict.Splice(content, regions, candidates)
	if err != nil {
		result.Status = FileFailed
		result.Failures = append(result.Failures, RegionFailure{Reason: err.Error()})
		return result
	}

	if err := s.git.WriteFile(path, spliced); err != nil {
		result.Status = FileFailed
		result.Failures = append(result.Failures, RegionFailure{Reason: err.Error()})
		return result
	}
	if err := s.git.Stage(path); err != nil {
		result.Status = FileFailed
		result.Failures = append(result.Failures, RegionFailure{Reason: err.Error()})
		return result
	}

	result.Status = FileResolved
	slog.Info("file resolved", "path", path)
	return result
}

// abort marks every file skipped with the given reason, aborts the merge,
// and finishes the session.
func (s *Session) abort(report *Report, files []string, reason string) (*Report, error) {
	for _, path := range files {
		report.Files = append(report.Files, FileResult{
			Path:     path,
			Status:   FileSkipped,
			Failures: []RegionFailure{{Reason: reason}},
		})
	}
	report.CredentialFailure = reason
	return s.abortReported(report)
}

// abortReported rolls the repository back to its pre-merge state.
func (s *Session) abortReported(report *Report) (*Report, error) {
	if err := s.git.AbortMerge(); err != nil {
		return nil, fmt.Errorf("aborting merge: %w", err)
	}
	s.state = StateAborted
	report.FinalState = s.state.String()
	report.MergeAborted = true
	slog.Warn("merge aborted; unresolved conflicts remain", "target", s.target, "source", s.source)
	return report, nil
}
