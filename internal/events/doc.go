// Package events decouples the review workflow from background work. The
// review service emits a TaskRequestEvent when a user's history warrants a
// new optimization pass; the task package handles it. Neither imports the
// other, which keeps the dependency graph acyclic: both lean on this
// package's envelope and interfaces instead.
package events
