// Package config loads rscscan configuration from local and global YAML files.
// CLI code applies precedence (flags > local > global) and maps the result
// onto the engine configuration.
package config
