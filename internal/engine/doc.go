// Package engine enforces the ceremony and intervention lifecycles against
// the entity cache and the remote coaching gateway.
//
// Two coordinators live here. Ceremonies drives the sprint ceremony machine
// (not_started -> in_progress -> completed) and the daily standup sub-case
// (pending -> completed | skipped, both terminal). Interventions drives the
// acknowledge/override/defer/dismiss contract.
//
// Every mutation follows the same shape: validate the transition locally,
// apply an optimistic mutation to the cache, call the gateway, then commit
// the canonical server entity or roll the speculation back. A transition
// rejected locally returns InvalidTransitionError before any network call,
// so the UI can tell "this was never started" apart from "try again".
package engine
