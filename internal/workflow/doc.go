// Package workflow wires the reconciliation core to its collaborators.
//
// Service obtains a listing (from the listing cache or a live Drive fetch),
// runs the reconciler over it, records each pass in the catalog, and applies
// renamed decisions back to Drive. It also imports Dorico projects into the
// piece catalog, either from a local path or by downloading a Drive file to a
// temporary location first.
//
// Collaborators are optional: a Service without a Drive client can still
// plan from the cache, and one without a catalog skips run history.
package workflow
