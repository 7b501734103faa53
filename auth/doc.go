// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides login-by-name session tokens and random ID
generation.

This is deliberately not an authentication system: anyone may log in
with any free name and receives a bearer token for the X-Session-Token
header. Host authorization is a name match on the card or session, done
in the coordinator. The SessionStore lives in memory only and is
injected where needed rather than held in package state.
*/
package auth
