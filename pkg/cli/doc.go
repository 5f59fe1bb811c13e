// Package cli implements the canaryd command line.
//
// Commands:
//   - serve (default): load the config, start the listener, stop on SIGINT/SIGTERM
//   - validate: check a config file and report shadowed routes
//   - init: write a starter config file, prompting for the first route
//   - version: print build information
package cli
