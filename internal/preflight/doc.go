// Package preflight provides readiness checks for the paths, catalog, and
// Drive access scorelib depends on.
//
// The CLI "scorelib doctor" command runs RunAll and renders each Result.
// Individual checks are exported so other commands can probe a single
// dependency before doing work that needs it.
package preflight
