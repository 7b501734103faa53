// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request and response types for the API.

# Request Types

Types for parsing incoming JSON:

  - LoginRequest: user_name
  - CreatePoolRequest: name, description
  - CreateCardRequest: title, description
  - UpdateCardRequest: title, description
  - SubmitVoteRequest: story_point
  - CompleteSessionRequest: final_point

# Response Types

Types for JSON responses:

  - LoginResponse: token, user_name
  - StoryPointsResponse: points
  - PoolResponse: pool metadata
  - CardResponse: card state, point only once estimated
  - SessionResponse: session state, votes only once revealed
  - ErrorResponse: error, message

# Conversions

Build responses from domain aggregates:

	resp := models.SessionFromDomain(session, time.Now())

SessionFromDomain enforces vote secrecy: individual votes and
statistics appear in the response only after reveal. Before that,
clients see just the names of participants who have voted.
*/
package models
