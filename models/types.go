package models

import (
	"time"

	"github.com/mhowell/story-poker/domain"
)

// Request types

type LoginRequest struct {
	UserName string `json:"user_name"`
}

type CreatePoolRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateCardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateCardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type SubmitVoteRequest struct {
	StoryPoint int `json:"story_point"`
}

type CompleteSessionRequest struct {
	FinalPoint int `json:"final_point"`
}

// Response types

type LoginResponse struct {
	Token    string `json:"token"`
	UserName string `json:"user_name"`
}

type StoryPointsResponse struct {
	Points []int `json:"points"`
}

type PoolResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type CardResponse struct {
	ID              string     `json:"id"`
	PoolID          string     `json:"pool_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Status          string     `json:"status"`
	StoryPoint      *int       `json:"story_point,omitempty"`
	CreatedBy       string     `json:"created_by"`
	HostName        string     `json:"host_name"`
	VotingSessionID string     `json:"voting_session_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	EstimatedAt     *time.Time `json:"estimated_at,omitempty"`
}

// SessionResponse hides individual votes until they are revealed.
// Before reveal only the names of participants who voted are visible.
type SessionResponse struct {
	ID               string             `json:"id"`
	StoryCardID      string             `json:"story_card_id"`
	Status           string             `json:"status"`
	HostName         string             `json:"host_name"`
	Participants     []string           `json:"participants"`
	VotedNames       []string           `json:"voted_names"`
	VoteCount        int                `json:"vote_count"`
	Revealed         bool               `json:"revealed"`
	Votes            map[string]int     `json:"votes,omitempty"`
	Statistics       *domain.Statistics `json:"statistics,omitempty"`
	VotingDeadline   *time.Time         `json:"voting_deadline,omitempty"`
	RemainingSeconds *int               `json:"remaining_seconds,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Conversions

func PoolFromDomain(p *domain.BacklogPool) PoolResponse {
	return PoolResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
}

func CardFromDomain(c *domain.StoryCard) CardResponse {
	resp := CardResponse{
		ID:              c.ID,
		PoolID:          c.PoolID,
		Title:           c.Title,
		Description:     c.Description,
		Status:          c.Status,
		CreatedBy:       c.CreatedBy,
		HostName:        c.HostName,
		VotingSessionID: c.VotingSessionID,
		CreatedAt:       c.CreatedAt,
		EstimatedAt:     c.EstimatedAt,
	}
	if c.StoryPoint != nil {
		v := c.StoryPoint.Value()
		resp.StoryPoint = &v
	}
	return resp
}

func SessionFromDomain(s *domain.VotingSession, now time.Time) SessionResponse {
	resp := SessionResponse{
		ID:           s.StoryCardID,
		StoryCardID:  s.StoryCardID,
		Status:       s.Status,
		HostName:     s.HostName,
		Participants: s.ParticipantNames(),
		VotedNames:   s.VoterNames(),
		VoteCount:    len(s.Votes),
		Revealed:     s.RevealedAt != nil,
		CreatedAt:    s.CreatedAt,
		CompletedAt:  s.CompletedAt,
	}
	if resp.Revealed {
		resp.Votes = s.VoteValues()
		if stats, err := s.GetStatistics(); err == nil {
			resp.Statistics = &stats
		}
	}
	if s.VotingDeadline != nil && s.Status == domain.SessionInProgress {
		resp.VotingDeadline = s.VotingDeadline
		remaining := int(s.VotingDeadline.Sub(now).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		resp.RemainingSeconds = &remaining
	}
	return resp
}
