// Package scoreinfo reads piece metadata out of Dorico project files.
//
// A .dorico file is a zip archive. Its scoreinfo.xml entry carries the
// project title (kTitle) and composer (kComposer). Extract returns both and
// classifies failures as MalformedArchiveError or MissingFieldError.
package scoreinfo
