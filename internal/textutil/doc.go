// Package textutil holds small string helpers shared by the naming and catalog
// packages: making free text safe to embed in a Drive file name and deriving
// stable lowercase tokens for keys and scratch files.
package textutil
