// Package config manages user-level settings stored at ~/.ossa/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the default migration target version and the git subprocess timeout.
package config
