// Package stats derives aggregate snapshots from a card collection and its
// review history: per-state counts, due counts, memory-state means, and a
// reviews-per-day histogram. All derivations are pure; nothing here mutates
// cards or logs.
package stats
