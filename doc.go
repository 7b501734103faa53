// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Story Poker API server.

Story Poker is a planning poker estimation service: teams organize
story cards into backlog pools, run one voting session at a time, and
estimate with Fibonacci story points. Votes stay hidden until everyone
has voted or the 30 second countdown forfeits the stragglers.

# Starting the Server

The server runs on SQLite out of the box:

	go run main.go

Or against PostgreSQL:

	go run main.go -t postgres -d "postgres://..."

# Configuration

All settings are optional and fall back to environment variables
(a .env file is loaded if present):

  - PORT (-p): Server port (default: 8080)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): File path or connection string
  - SWEEP_INTERVAL (-sweep): Seconds between countdown expiry sweeps
    (default: 2)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - domain: Story points, cards, pools, and the voting session rules
  - coordinator: Session orchestration, locking, and the expiry sweep
  - store: SQL persistence for all aggregates
  - notify: Websocket event hub
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, error mapping
  - models: Request/response types
  - auth: Login tokens
  - db: Connection setup and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
