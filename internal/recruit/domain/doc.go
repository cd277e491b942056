// Package domain defines the recruitment data model shared across the
// module: per-category channel configuration, selector definitions, the live
// recruitment settings captured at publish time, per-user history, and the
// pure merge rules that decide what a new announcement starts with.
package domain
