// Package reconcile decides, for every file in a per-section drive listing,
// whether its name already follows the instrument naming convention and, when
// it does not, what it should be renamed to.
//
// Reconciliation is pure: a pass reads one immutable Listing snapshot plus the
// frozen vocabulary and returns Decisions. Nothing is renamed, moved, or
// persisted here; the drive and catalog packages apply and record the plan.
//
// Per-file flow:
//
//	no alias found                      -> Unresolved (no_alias_match)
//	name already canonical, right folder -> Conforming
//	name already canonical, wrong folder -> Renamed, same name, new section (misplaced)
//	otherwise extract title              -> Renamed (non_canonical_name)
//	  extracted title empty              -> Unresolved (empty_title)
package reconcile
