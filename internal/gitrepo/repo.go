// Package gitrepo wraps the git CLI with the repository operations the
// merge pipeline needs: merge attempt, conflict enumeration, staging,
// abort, and commit listing. All mutation of the working tree funnels
// through this package.
package gitrepo

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repo is an opened git repository rooted at its top-level directory.
type Repo struct {
	root string
}

// MergeOutcome reports the result of a merge attempt.
type MergeOutcome struct {
	Clean           bool
	ConflictedFiles []string
}

// Commit is one entry in a commit listing.
type Commit struct {
	Hash    string
	Subject string
}

// Open resolves path to a git repository root.
func Open(path string) (*Repo, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = path
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s is not a git repository: %s", path, strings.TrimSpace(string(out)))
	}
	return &Repo{root: strings.TrimSpace(string(out))}, nil
}

// Root returns the repository's top-level directory.
func (r *Repo) Root() string {
	return r.root
}

// git runs a git command in the repository root, returning combined output.
func (r *Repo) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.root
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %s: %w",
			strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

// BranchExists reports whether a local branch exists.
func (r *Repo) BranchExists(name string) bool {
	_, err := r.git("rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// CurrentBranch returns the checked-out branch name.
func (r *Repo) CurrentBranch() (string, error) {
	out, err := r.git("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Checkout switches the working tree to the given branch.
func (r *Repo) Checkout(branch string) error {
	_, err := r.git("checkout", branch)
	return err
}

// AttemptMerge checks out target and merges source into it. A conflict-free
// merge (including fast-forward and already-up-to-date) is committed by git
// itself and reported clean. Conflicts leave the merge in progress and
// return the conflicted file list in git's order.
func (r *Repo) AttemptMerge(target, source string) (*MergeOutcome, error) {
	if err := r.Checkout(target); err != nil {
		return nil, err
	}

	if _, err := r.git("merge", "--no-edit", source); err != nil {
		files, listErr := r.ConflictedFiles()
		if listErr != nil {
			return nil, fmt.Errorf("merging %s into %s: %w", source, target, err)
		}
		if len(files) == 0 {
			// Failed for some reason other than content conflicts
			// (dirty tree, unrelated histories).
			return nil, fmt.Errorf("merging %s into %s: %w", source, target, err)
		}
		return &MergeOutcome{ConflictedFiles: files}, nil
	}

	return &MergeOutcome{Clean: true}, nil
}

// ConflictedFiles lists paths with unresolved merge conflicts.
func (r *Repo) ConflictedFiles() ([]string, error) {
	out, err := r.git("diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// AbortMerge restores the working tree and index to their pre-merge state.
func (r *Repo) AbortMerge() error {
	_, err := r.git("merge", "--abort")
	return err
}

// ReadFile reads a file relative to the repository root.
func (r *Repo) ReadFile(rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.root, rel))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", rel, err)
	}
	return string(data), nil
}

// WriteFile replaces a file's content relative to the repository root.
func (r *Repo) WriteFile(rel, content string) error {
	if err := os.WriteFile(filepath.Join(r.root, rel), []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}

// Stage marks a resolved file in the index.
func (r *Repo) Stage(rel string) error {
	_, err := r.git("add", "--", rel)
	return err
}

// ListUniqueCommits returns commits reachable from target but not from
// source, newest first.
func (r *Repo) ListUniqueCommits(target, source string) ([]Commit, error) {
	out, err := r.git("log", "--format=%h\x1f%s", source+".."+target)
	if err != nil {
		return nil, err
	}

	var commits []Commit
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		hash, subject, _ := strings.Cut(line, "\x1f")
		commits = append(commits, Commit{Hash: hash, Subject: subject})
	}
	return commits, nil
}
