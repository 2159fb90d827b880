// Package cli wires the core services into cobra subcommands. Commands
// are thin: every validation, detection, migration, and conversion rule
// lives in the internal packages the commands call.
package cli
