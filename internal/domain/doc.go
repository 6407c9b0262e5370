// Package domain contains the core business entities and value objects of
// the scheduling engine: the per-card memory state, the rating and lifecycle
// state enums, and the append-only review event record. It represents the
// heart of the system, independent of any specific infrastructure or
// delivery mechanism.
package domain
