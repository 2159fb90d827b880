// Package validate checks OSSA manifests against the JSON Schema for a
// given (or marker-declared) version. Structural violations are reported
// as errors with JSON-pointer paths; a fixed set of best-practice checks
// is reported as warnings that never affect validity.
package validate
