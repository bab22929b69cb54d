// Package config loads harvester settings from defaults, a YAML config file and
// HARVESTER_* environment variables, in increasing order of precedence.
package config
