// Package config provides configuration loading and validation for helix-cli.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (HELIX_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"helix.yml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := helix.New(cfg.Credentials(), helix.WithTimeout(cfg.HTTP.Timeout))
//
// # Environment Variables
//
// All config keys map to environment variables with HELIX_ prefix:
//   - license_key → HELIX_LICENSE_KEY
//   - cache.type → HELIX_CACHE_TYPE
//   - http.timeout → HELIX_HTTP_TIMEOUT
//
// # Configuration Structure
//
// Credential keys (site, reseller, company, library, license_key,
// contributor, server) sit at the top level, matching the credentials file.
// Sections:
//   - cache: signature store type (memory/sqlite/postgres/redis), DSN and table
//   - http: client timeout
//   - log: level and format
//
// # Validation
//
// Configuration is validated using struct tags:
//   - site must be a URL and license_key must be set
//   - cache type must be memory, sqlite, postgres, or redis; other types need a DSN
//   - log level must be debug, info, warn, or error
package config
