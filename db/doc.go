// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database connection and creates the schema.

Two drivers are supported, selected by configuration:

  - sqlite (modernc.org/sqlite), the default; url is a file path
  - postgres (lib/pq); url is a connection string

Queries elsewhere in the codebase use $1-style placeholders, which both
drivers accept. The schema carries the one_active_session partial
unique index: at most one voting_session row may be IN_PROGRESS at any
time, system-wide.
*/
package db
