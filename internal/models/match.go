package models

import "time"

// MatchStatus is the lifecycle state of a match
type MatchStatus string

const (
	MatchActive MatchStatus = "active"
	MatchEnded  MatchStatus = "ended"
)

// Match represents a mutual like between two users.
// UserAID is always the lexicographically smaller id.
type Match struct {
	ID        string      `json:"id" dynamodbav:"id"`
	UserAID   string      `json:"user_a_id" dynamodbav:"user_a_id"`
	UserBID   string      `json:"user_b_id" dynamodbav:"user_b_id"`
	Status    MatchStatus `json:"status" dynamodbav:"status"`
	CreatedAt time.Time   `json:"created_at" dynamodbav:"created_at"`
	EndedAt   *time.Time  `json:"ended_at,omitempty" dynamodbav:"ended_at,omitempty"`
}

// CanonicalPair orders two user ids so that an unordered pair has one representation
func CanonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// HasUser reports whether userID is one side of the match
func (m *Match) HasUser(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// OtherUser returns the id on the opposite side from userID
func (m *Match) OtherUser(userID string) (string, bool) {
	switch userID {
	case m.UserAID:
		return m.UserBID, true
	case m.UserBID:
		return m.UserAID, true
	}
	return "", false
}

// MatchView is a match as seen by one of its members
type MatchView struct {
	Match *Match `json:"match"`
	User  *User  `json:"user"`
	Photo *Photo `json:"photo,omitempty"`
}
