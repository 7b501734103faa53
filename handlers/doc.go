// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Story Poker API.

# Handler Types

Each handler is a struct with its dependencies injected:

  - AuthHandler: login and logout
  - PoolHandler: backlog pools and the cards inside them
  - CardHandler: story card read, update, and delete
  - SessionHandler: the voting session lifecycle
  - WSHandler: websocket event subscriptions

Handlers are created via constructor functions:

	sessionHandler := handlers.NewSessionHandler(coord, tokens)

# Estimation Flow

Cards progress NOT_ESTIMATED → ESTIMATING → ESTIMATED:

	POST /cards/{id}/session           → StartSession (host)
	POST /sessions/{id}/join           → JoinSession
	POST /sessions/{id}/start-voting   → StartVoting (host, 30s countdown)
	POST /sessions/{id}/votes          → SubmitVote (create or update)
	POST /sessions/{id}/complete       → CompleteSession (host)
	POST /sessions/{id}/cancel         → CancelSession (host)

Only one session may be in progress at a time. When the last
participant votes, results reveal automatically; when the countdown
expires, absent voters forfeit.

Authenticated operations require the X-Session-Token header, obtained
from POST /login.

# Event Subscriptions

Clients subscribe to a session's events over a websocket:

	GET /sessions/{id}/ws

They receive session-started, vote-submitted, votes-revealed, and
session-completed envelopes as JSON.
*/
package handlers
