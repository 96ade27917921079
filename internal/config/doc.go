// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config file, environment variables, and CLI
// flags. It provides type-safe access to the ClickUp client, Gemini tier,
// extraction, logging, and metrics settings while keeping configuration
// details separate from the call layer.
package config
