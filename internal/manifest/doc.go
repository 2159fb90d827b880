// Package manifest handles loading, parsing, and shape detection of OSSA
// manifests. It supports both the modern document shape (apiVersion, kind,
// metadata, spec) and the legacy shape (ossaVersion plus a top-level agent
// object), in JSON or YAML.
package manifest
