// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables.

Flags take precedence over environment variables; a .env file is loaded
automatically when present.

	-p / PORT             server port (default 8080)
	-d / DATABASE_URL     sqlite file path or postgres connection string
	-t / DATABASE_TYPE    sqlite (default) or postgres
	-sweep / SWEEP_INTERVAL  seconds between voting-expiry sweeps (default 2)
*/
package cliparse
