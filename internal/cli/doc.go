// Package cli implements the command-line interface for compilation-harvester.
//
// The cli package provides the Cobra-based CLI: "harvest" runs the pipeline once and
// prints the matches as text, JSON or YAML, optionally saving a snapshot and flagging
// compilations that are new since the previous run; "serve" exposes the pipeline over
// HTTP. Settings come from the config package and can be overridden with flags.
package cli
