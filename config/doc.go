// Package config loads service configuration from a YAML file, an optional
// .env file and prefixed environment variables.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("streamupload", &cfg)
//
// Environment variables override file values using the service prefix with
// underscore-separated paths (e.g. STREAMUPLOAD_STORAGE_BUCKET).
package config
