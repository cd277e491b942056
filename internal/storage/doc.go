// Package storage defines the persistence interfaces consumed by the
// recruitment core: category/selector configuration and per-user history.
// Backend choices live in subpackages; the core depends only on these
// contracts.
package storage
