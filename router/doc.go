// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Story Poker API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, coord, hub, tokens)

# Endpoints

Health:

	GET /health

Authentication:

	POST /login  - Claim a user name, returns X-Session-Token value
	POST /logout - Release the token

Estimation scale:

	GET /story-points - Suggested Fibonacci sequence (?max= caps it)

Backlog (authenticated, requires X-Session-Token):

	POST   /pools            - Create pool
	GET    /pools            - List pools
	GET    /pools/{id}       - Pool details
	POST   /pools/{id}/cards - Create card (creator becomes host)
	GET    /pools/{id}/cards - List cards
	GET    /cards/{id}       - Card details
	PUT    /cards/{id}       - Update card (host)
	DELETE /cards/{id}       - Delete card (host, NOT_ESTIMATED only)

Voting sessions:

	POST /cards/{id}/session          - Start estimation (host)
	GET  /sessions/{id}               - Session state
	POST /sessions/{id}/join          - Join as participant
	POST /sessions/{id}/start-voting  - Start countdown (host)
	POST /sessions/{id}/votes         - Submit or update vote
	POST /sessions/{id}/complete      - Finish with final point (host)
	POST /sessions/{id}/cancel        - Abort estimation (host)
	GET  /sessions/{id}/ws            - Websocket event stream

# Handler Initialization

The router creates handler instances with dependency injection:

	poolHandler := handlers.NewPoolHandler(st, tokens)
	sessionHandler := handlers.NewSessionHandler(coord, tokens)

Session handlers go through the coordinator; pool and card handlers
talk to the store directly.
*/
package router
