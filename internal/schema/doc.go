// Package schema loads and caches the JSON Schema documents that govern
// each OSSA manifest version. Schemas are embedded in the binary and
// compiled lazily; an optional overlay directory lets operators test
// unreleased schema drafts without rebuilding.
package schema
