package gitops

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// BranchPrefix namespaces all migration safety branches.
const BranchPrefix = "migration/"

// ErrGitUnavailable is returned when the git executable is not on PATH.
var ErrGitUnavailable = errors.New("git is not available")

// ErrNotARepository is returned when the target path is not inside a git
// repository. Mutating operations fail closed on this condition rather
// than silently skipping the safety step.
var ErrNotARepository = errors.New("not a git repository")

// RollbackPoint records the pre-migration state needed to restore a
// working directory.
type RollbackPoint struct {
	BranchName     string    `json:"branchName"`
	Timestamp      time.Time `json:"timestamp"`
	Description    string    `json:"description"`
	OriginalBranch string    `json:"originalBranch"`
	CommitSHA      string    `json:"commitSha,omitempty"`
}

// RollbackResult reports the outcome of a rollback attempt. Rollback never
// returns an error value: it is the last line of defense, and a failed
// rollback must not crash the migration orchestrator.
type RollbackResult struct {
	Success bool
	Errors  []string
}

// Service runs git subprocess operations. Every invocation is bounded by
// the configured timeout; a hung git process fails the call instead of
// stalling the caller.
type Service struct {
	timeout time.Duration
}

// DefaultTimeout bounds each git subprocess invocation.
const DefaultTimeout = 30 * time.Second

// NewService creates a git service. A non-positive timeout falls back to
// DefaultTimeout.
func NewService(timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{timeout: timeout}
}

// IsGitAvailable reports whether the git executable is on PATH.
func (s *Service) IsGitAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsGitRepository reports whether path is inside a git work tree.
func (s *Service) IsGitRepository(ctx context.Context, path string) bool {
	out, err := s.run(ctx, path, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// HasUncommittedChanges reports whether the work tree at path has staged
// or unstaged changes.
func (s *Service) HasUncommittedChanges(ctx context.Context, path string) (bool, error) {
	if !s.IsGitRepository(ctx, path) {
		return false, fmt.Errorf("%w: %s", ErrNotARepository, path)
	}
	out, err := s.run(ctx, path, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// CreateMigrationBranch records the current branch and HEAD, then checks
// out a fresh migration/ branch for the migration attempt to write on.
func (s *Service) CreateMigrationBranch(ctx context.Context, path, description string) (*RollbackPoint, error) {
	if !s.IsGitAvailable() {
		return nil, ErrGitUnavailable
	}
	if !s.IsGitRepository(ctx, path) {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
	}

	original, err := s.run(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("resolving current branch: %w", err)
	}

	// HEAD may not resolve in a repository with no commits; the rollback
	// point then carries no SHA and rollback falls back to a checkout of
	// the work tree.
	sha, _ := s.run(ctx, path, "rev-parse", "HEAD")

	now := time.Now()
	branch := BranchPrefix + slugify(description) + "-" + now.Format("20060102-150405")
	if _, err := s.run(ctx, path, "checkout", "-b", branch); err != nil {
		return nil, fmt.Errorf("creating migration branch %s: %w", branch, err)
	}

	return &RollbackPoint{
		BranchName:     branch,
		Timestamp:      now,
		Description:    description,
		OriginalBranch: original,
		CommitSHA:      sha,
	}, nil
}

// Rollback restores the original branch recorded in the rollback point,
// discarding whatever the failed migration wrote. It always returns a
// result object; callers branch on Success instead of catching errors.
func (s *Service) Rollback(ctx context.Context, path string, rp *RollbackPoint) *RollbackResult {
	result := &RollbackResult{Success: true}
	fail := func(err error) {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
	}

	if rp == nil {
		fail(errors.New("no rollback point provided"))
		return result
	}
	if !s.IsGitAvailable() {
		fail(ErrGitUnavailable)
		return result
	}
	if !s.IsGitRepository(ctx, path) {
		fail(fmt.Errorf("%w: %s", ErrNotARepository, path))
		return result
	}

	// Drop uncommitted migration output so the branch switch cannot
	// carry corrupted files back to the original branch.
	if rp.CommitSHA != "" {
		if _, err := s.run(ctx, path, "reset", "--hard", rp.CommitSHA); err != nil {
			fail(fmt.Errorf("resetting to pre-migration commit: %w", err))
		}
	} else {
		if _, err := s.run(ctx, path, "checkout", "--", "."); err != nil {
			fail(fmt.Errorf("discarding migration changes: %w", err))
		}
	}

	if _, err := s.run(ctx, path, "checkout", rp.OriginalBranch); err != nil {
		fail(fmt.Errorf("restoring branch %s: %w", rp.OriginalBranch, err))
	}

	return result
}

// DeleteBranch removes a migration branch once the caller decides not to
// keep it for inspection.
func (s *Service) DeleteBranch(ctx context.Context, path, branch string) error {
	if !strings.HasPrefix(branch, BranchPrefix) {
		return fmt.Errorf("refusing to delete non-migration branch %q", branch)
	}
	_, err := s.run(ctx, path, "branch", "-D", branch)
	return err
}

// SwitchBranch checks out an existing branch. Uncommitted work-tree
// changes are carried along, which is how a successful migration travels
// back to the original branch.
func (s *Service) SwitchBranch(ctx context.Context, path, branch string) error {
	_, err := s.run(ctx, path, "checkout", branch)
	return err
}

// CommitFile stages and commits a single file on the current branch.
func (s *Service) CommitFile(ctx context.Context, path, file, message string) error {
	if _, err := s.run(ctx, path, "add", "--", file); err != nil {
		return err
	}
	_, err := s.run(ctx, path, "commit", "-m", message, "--", file)
	return err
}

// ListMigrationBranches enumerates branches created by migration attempts.
func (s *Service) ListMigrationBranches(ctx context.Context, path string) ([]string, error) {
	if !s.IsGitRepository(ctx, path) {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
	}
	out, err := s.run(ctx, path, "branch", "--list", BranchPrefix+"*", "--format", "%(refname:short)")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// run executes a git subcommand in dir with the service timeout applied.
func (s *Service) run(ctx context.Context, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return strings.TrimSpace(string(output)), nil
}

// slugify reduces a description to the token alphabet allowed in branch
// names.
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "manifest"
	}
	return out
}
