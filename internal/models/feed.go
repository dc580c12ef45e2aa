package models

// Candidate is a profile offered to a viewer, with its primary photo if any
type Candidate struct {
	User  *User  `json:"user"`
	Photo *Photo `json:"photo,omitempty"`
}

// Outcome of recording a decision
type Outcome string

const (
	OutcomeNone    Outcome = "none"
	OutcomeMatched Outcome = "matched"
)

// MatchResult is returned after a decision is recorded.
// Created is false when the pair had already been matched before this decision.
type MatchResult struct {
	Outcome      Outcome `json:"outcome"`
	Match        *Match  `json:"match,omitempty"`
	Created      bool    `json:"created,omitempty"`
	Notification string  `json:"notification,omitempty"`
}
