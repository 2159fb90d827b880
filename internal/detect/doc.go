// Package detect infers the schema version of an arbitrary, possibly
// malformed manifest document. Detection is heuristic and confidence
// scored: an explicit apiVersion marker is trusted most, the legacy
// ossaVersion field less, and brute-force schema probing least.
package detect
