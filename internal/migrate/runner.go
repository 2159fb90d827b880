package migrate

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/openstandardagents/ossa/internal/detect"
	"github.com/openstandardagents/ossa/internal/gitops"
	"github.com/openstandardagents/ossa/internal/manifest"
)

// Runner orchestrates a full migration of a manifest file: detect the
// current version, resolve a transform path, open a git safety branch,
// apply and validate each hop, and roll back on any failure.
type Runner struct {
	Detector *detect.Service
	Migrator *Service
	Git      *gitops.Service
}

// RunOptions control a migration attempt.
type RunOptions struct {
	Target string // target schema version

	// DryRun resolves and reports the transform path without writing.
	DryRun bool

	// NoGit skips the safety branch deliberately. Without it, migration
	// refuses to proceed when the file is not under git protection.
	NoGit bool

	// KeepBranch commits the migrated manifest on the migration branch
	// and leaves the repository on it for inspection. Otherwise the
	// migrated file is carried back to the original branch uncommitted
	// and the safety branch is deleted.
	KeepBranch bool
}

// Report describes what a migration attempt did.
type Report struct {
	Detection  detect.Result
	From       string
	To         string
	Path       []string
	Summary    []string
	Warnings   []string
	NoOp       bool
	Rollback   *gitops.RollbackPoint
	RolledBack bool
}

// MigrateFile migrates a manifest file in place. On any transform or
// validation failure the pre-migration state is restored from the safety
// branch before the error is returned.
func (r *Runner) MigrateFile(ctx context.Context, path string, opts RunOptions) (*Report, error) {
	doc, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	if err := doc.CheckShape(); err != nil {
		return nil, err
	}

	report := &Report{Detection: r.Detector.DetectVersion(doc)}
	report.From = report.Detection.Version
	report.To = opts.Target
	report.Warnings = append(report.Warnings, report.Detection.Warnings...)

	if report.From == detect.VersionUnknown {
		return report, fmt.Errorf("cannot migrate: manifest version could not be detected")
	}
	if !r.Detector.NeedsMigration(report.From, opts.Target) {
		report.NoOp = true
		return report, nil
	}

	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	report.Summary = r.Migrator.TransformSummary(report.From, opts.Target)

	if opts.DryRun {
		report.Path, err = r.Migrator.FindPath(report.From, opts.Target)
		return report, err
	}

	var rollback *gitops.RollbackPoint
	if !opts.NoGit {
		rollback, err = r.openSafetyBranch(ctx, dir, doc.Name(), report)
		if err != nil {
			return report, err
		}
		report.Rollback = rollback
	}

	outcome, err := r.Migrator.Run(doc, report.From, opts.Target)
	if err == nil {
		err = manifest.Save(outcome.Manifest, path, manifest.FormatForPath(path))
	}
	if err != nil {
		r.restore(ctx, dir, rollback, report)
		return report, err
	}

	report.Path = outcome.Path
	report.Warnings = append(report.Warnings, outcome.Warnings...)

	if rollback != nil {
		if err := r.settleBranch(ctx, dir, path, rollback, opts.KeepBranch); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("migration succeeded but branch cleanup failed: %v", err))
		}
	}
	return report, nil
}

// openSafetyBranch refuses to run an unprotected migration: the target
// must be a git repository with a clean work tree, since rollback discards
// uncommitted changes.
func (r *Runner) openSafetyBranch(ctx context.Context, dir, name string, report *Report) (*gitops.RollbackPoint, error) {
	if !r.Git.IsGitAvailable() {
		return nil, fmt.Errorf("%w; rerun with --no-git to migrate without a safety branch", gitops.ErrGitUnavailable)
	}
	if !r.Git.IsGitRepository(ctx, dir) {
		return nil, fmt.Errorf("%w: %s; rerun with --no-git to migrate without a safety branch", gitops.ErrNotARepository, dir)
	}
	dirty, err := r.Git.HasUncommittedChanges(ctx, dir)
	if err != nil {
		return nil, err
	}
	if dirty {
		return nil, fmt.Errorf("repository at %s has uncommitted changes; commit or stash them before migrating", dir)
	}
	return r.Git.CreateMigrationBranch(ctx, dir, name)
}

func (r *Runner) restore(ctx context.Context, dir string, rollback *gitops.RollbackPoint, report *Report) {
	if rollback == nil {
		return
	}
	result := r.Git.Rollback(ctx, dir, rollback)
	report.RolledBack = result.Success
	if !result.Success {
		report.Warnings = append(report.Warnings, result.Errors...)
		return
	}
	if err := r.Git.DeleteBranch(ctx, dir, rollback.BranchName); err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("rollback succeeded but branch %s was not deleted: %v", rollback.BranchName, err))
	}
}

// settleBranch applies the caller's branch retention policy after a
// successful migration.
func (r *Runner) settleBranch(ctx context.Context, dir, path string, rollback *gitops.RollbackPoint, keep bool) error {
	if keep {
		// Commit the migrated manifest on the safety branch and stay on
		// it; the original branch remains the atomic undo point.
		return r.Git.CommitFile(ctx, dir, filepath.Base(path), "migrate "+filepath.Base(path))
	}
	// Carry the rewritten file back to the original branch uncommitted
	// and discard the safety branch.
	result := r.Git.SwitchBranch(ctx, dir, rollback.OriginalBranch)
	if result != nil {
		return result
	}
	return r.Git.DeleteBranch(ctx, dir, rollback.BranchName)
}
