/*
main.go - Application entry point

PURPOSE:
  Entry point of the pension simulator. All behavior lives in cobra
  commands; main only executes the root command.

COMMANDS:
  serve      Start the HTTP API with graceful shutdown
  simulate   Run one calculation and print the result as JSON
  seed       Snapshot the demo bundle into the SQLite table store

GLOBAL FLAGS:
  --config     YAML configuration file (default: simulator.yaml, optional)
  --log-level  Overrides logging.level from the configuration

ENVIRONMENT:
  SIMULATOR_PORT, SIMULATOR_ALLOWED_ORIGINS, SIMULATOR_PROVIDERS,
  SIMULATOR_STORE, SIMULATOR_LOG_LEVEL (see config/config.go)

EXAMPLES:
  # Serve the demo bundle on port 3000
  ./server serve --port 3000

  # Seed stored tables, then serve them
  ./server seed --from 1950 --to 2100
  SIMULATOR_PROVIDERS=table ./server serve

  # One calculation from the command line
  ./server simulate --birth-year 1990 --gender M --start-work-year 2010 --gross-monthly 6500

SEE ALSO:
  - root.go: Configuration and logger setup
  - serve.go: Server startup
  - config/config.go: Configuration file format
*/
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
