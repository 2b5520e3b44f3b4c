// Package config loads application configuration from an optional YAML file,
// environment variables, and a .env file, and owns the directory layout used
// by every tool (data, reports, charts, cache, logs).
//
// Resolution order: built-in defaults, then the YAML file if present, then
// environment overrides (TASKNINJA_* via envconfig). API keys such as
// WEATHER_API_KEY and NEWS_API_KEY are read from the environment only.
package config
