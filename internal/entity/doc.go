// Package entity defines the domain entities the coaching core operates on:
// velocity metrics, sprint health, daily standups, interventions, ceremonies,
// the life wheel, coach messages, and settings.
//
// Entities are plain values. All mutation goes through the cache package's
// optimistic apply/commit/rollback API - nothing in this package holds locks
// or talks to the network. Derived views (sprint health, trailing velocity,
// neglected dimensions) are pure functions in derive.go so the derivability
// invariants can be checked client-side against whatever the server returns.
package entity
