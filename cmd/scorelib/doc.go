// Package main hosts the scorelib CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the Drive client, listing cache, and catalog on demand, and hands them to
// the workflow service. Subcommands only parse flags and render results;
// anything reusable belongs in an internal package.
package main
