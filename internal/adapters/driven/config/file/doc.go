// Package file loads the application configuration from a TOML file in
// the gourmet config directory, with environment overrides for secrets.
package file
