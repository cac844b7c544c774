// Package drive talks to the Google Drive v3 REST API on behalf of scorelib.
//
// Client lists the files in each section folder of a shared drive, renames
// and moves files, and downloads file content. FetchListing assembles a
// reconcile.Listing from every section folder concurrently, and Apply turns
// reconcile decisions into Drive updates after checking the snapshot for name
// collisions.
//
// Failures that a later retry could fix (network errors, 401/403/429/5xx)
// surface as *TransientFetchError. Retries and token refresh belong to the
// caller.
package drive
