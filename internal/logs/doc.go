// Package logs reads back the scorelib log file for the CLI: the last N
// lines, optionally followed by lines appended afterwards.
package logs
