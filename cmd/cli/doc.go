// Package cli constructs the RepoRover command-line interface, wiring the
// Cobra command hierarchy, configuration loader, structured logging, and the
// shared GitHub client behind the subcommands. It exposes helpers to build
// reusable application instances and to execute the default command set as a
// reusable library.
package cli
