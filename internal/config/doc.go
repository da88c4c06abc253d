// Package config provides application configuration loaded from
// environment variables (INSTR_ prefix) with an optional config.yaml
// overlay, plus executable-relative path resolution.
//
// Configuration precedence: environment variables win over the config
// file, which wins over the built-in defaults. Report defaults here are
// the starting values only; CLI flags override them per run.
package config
