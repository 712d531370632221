// Package cli is responsible for the hopsgo command tree: it merges flags,
// HOPSGO_* environment variables and an optional config file into the
// application's configuration, runs the selected command and maps failures
// to process exit codes.
package cli
