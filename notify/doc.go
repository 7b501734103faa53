// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify delivers estimation events to websocket subscribers.
// Clients subscribe per session and receive vote, reveal, and
// completion events as they happen.
package notify
