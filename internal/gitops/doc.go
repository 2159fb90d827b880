// Package gitops provides the version-control safety net around
// migrations. A disposable migration/ branch is opened before files are
// rewritten; if a transform or validation fails, the working directory is
// restored from the recorded rollback point. Only the minimal git
// operations needed for this are wrapped; this is not a general-purpose
// git client.
package gitops
