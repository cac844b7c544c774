// Package catalog persists scorelib's local records in SQLite: the pieces in
// the band's library, the instrument registry mirrored from the section
// vocabulary, and the history of reconciliation runs with one row per
// decision.
//
// Open applies embedded migrations on every start. All timestamps are stored
// as UTC RFC 3339 strings.
package catalog
