// Package vocabulary holds the instrument-section registry and the literal
// substring matcher that classifies raw sheet-music file names against it.
//
// A Vocabulary is built once from configuration and never mutated. Section
// registration order and alias declaration order are significant: the Matcher
// stops at the first section, and within it the first alias, that appears in a
// file name. Authors must therefore declare longer aliases before shorter ones
// they contain ("French Horn" before "Horn"), and place sections whose aliases
// overlap in the order they should win.
package vocabulary
