// Package catalog is the declarative rules table for combat actions.
//
// Each action is a tagged configuration record (buff, task roll,
// toggle or special) interpreted by a small fixed set of executors in
// the resolver package, so new actions are new table rows rather than
// new handler code. The catalog is built once at startup and is
// read-only thereafter; availability checks take the acting ship as an
// argument instead of holding a live reference.
package catalog
