// Package store defines the persistence boundary of the application: the
// Repository capability set that every storage backend implements with
// identical semantics, the shared error taxonomy, and transaction
// helpers for the SQL-backed implementations. Callers depend only on the
// interfaces here, so the storage choice is runtime configuration rather
// than a compile-time dependency of the domain logic.
package store
