// Package fileutil holds small filesystem helpers shared by the cache and the
// CLI.
package fileutil
