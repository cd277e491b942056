// Package session implements the per-channel recruitment state machine:
// ownership negotiation over single-use claim tokens, membership-driven role
// classification against capacity, the recruitment-post lifecycle, and the
// settings/history merge that seeds new announcements.
//
// Every session runs its own event loop. Inbound membership events and UI
// actions are queued and processed strictly one at a time to completion,
// including any store or surface call made along the way, so concurrent
// claims, edits, and membership churn cannot interleave within a channel.
// Sessions for different channels are fully independent.
package session
