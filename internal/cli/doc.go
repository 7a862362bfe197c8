// Package cli implements the rmsmonitor command-line interface.
//
// The root command is the status check itself:
//
//	rmsmonitor [config-file]          - Fetch, classify and show camera status
//	rmsmonitor init [path]            - Write a starter config
//	rmsmonitor exporter [config-file] - Serve status as Prometheus metrics
//	rmsmonitor version                - Print build information
//	rmsmonitor completion <shell>     - Generate shell completion
//
// # Check Pipeline
//
// A check runs the same steps regardless of output:
//
//  1. Load and validate the config (config.Load)
//  2. Fetch status pages, one request per segment run (fetch.Fetcher)
//  3. Classify every row against the thresholds (status.Evaluate)
//  4. Optionally write a Prometheus textfile (metrics.WriteTextfile)
//  5. Present the report with the presenter picked by output.SelectMode
//
// The widget presenter re-runs steps 2 to 4 when the user refreshes.
//
// # Errors
//
// Commands return *errors.Error values. Execute prints them to stderr, or as
// a failed JSON/YAML envelope on stdout when a machine format was requested,
// and exits 1.
package cli
