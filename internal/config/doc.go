// Package config handles configuration loading for partycollage.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Every field has a default, so a missing file is not an error
// for LoadOrDefault.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from PARTYCOLLAGE_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/partycollage/config.yaml
//  3. ~/.config/partycollage/config.yaml
//
// The format follows the extension: .toml is TOML, anything else is YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	database:
//	  path: "${PARTYCOLLAGE_DATA}/party.db"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string. The CLI
// loads a .env file from the working directory first, if one exists.
//
// # Example
//
//	database:
//	  path: "~/.local/share/partycollage/partycollage.db"
//	  driver: "sqlite"        # or "sqlite3" for the cgo driver
//	session:
//	  default_expiry_days: 7
//	auth:
//	  password_scheme: "plaintext"  # or "bcrypt"
//	logging:
//	  level: "info"           # debug, info, warn, error
//	  format: "text"          # text, json
//	metrics:
//	  enabled: true           # totals persist in the database across runs
//	  path: "/var/lib/node_exporter/textfile/partycollage.prom"  # optional
package config
