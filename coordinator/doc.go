// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package coordinator orchestrates voting sessions over the persistence
and notification layers.

It owns the two concurrency rules the domain types cannot enforce on
their own:

  - at most one session is IN_PROGRESS across the whole backlog,
    guarded by a global start lock plus a partial unique index in the
    database
  - all mutation of a given session is serialized behind a per-session
    mutex, so concurrent votes and the expiry sweep never interleave

The sweep (SweepExpiredVoting) is driven by a ticker in main. When the
countdown passes, absent voters forfeit and partial results are
revealed; a session where nobody voted is cancelled and its card
reverted to NOT_ESTIMATED.
*/
package coordinator
