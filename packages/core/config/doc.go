// Package config handles configuration loading and management for lazyreq.
//
// It provides functionality for:
//   - Loading configuration from .lazyreq.config.json, .lazyreqrc or
//     .lazyreq.yaml files
//   - Default configuration values
//   - Validation of loaded values
package config
