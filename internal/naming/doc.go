// Package naming derives piece titles from raw sheet-music file names and
// composes/parses names in the configured "{title} - {section}" convention.
package naming
