package models

import (
	"fmt"
	"time"
)

// DecisionKind is the verdict a user gives on a candidate
type DecisionKind string

const (
	KindLike      DecisionKind = "like"
	KindDislike   DecisionKind = "dislike"
	KindSuperlike DecisionKind = "superlike"
)

// SwipeThreshold is the horizontal drag distance, in pixels, that turns a swipe into a decision.
const SwipeThreshold = 120.0

// Valid reports whether k is one of the known kinds
func (k DecisionKind) Valid() bool {
	switch k {
	case KindLike, KindDislike, KindSuperlike:
		return true
	}
	return false
}

// Positive reports whether k expresses interest and can take part in a match
func (k DecisionKind) Positive() bool {
	return k == KindLike || k == KindSuperlike
}

// PositiveKinds lists the kinds that count as reciprocation
func PositiveKinds() []DecisionKind {
	return []DecisionKind{KindLike, KindSuperlike}
}

// ParseDecisionKind validates a raw kind string
func ParseDecisionKind(s string) (DecisionKind, error) {
	k := DecisionKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown decision kind %q", s)
	}
	return k, nil
}

// KindFromDrag maps a completed horizontal drag to a decision.
// Drags that stay within the threshold produce no decision.
func KindFromDrag(dx float64) (DecisionKind, bool) {
	switch {
	case dx > SwipeThreshold:
		return KindLike, true
	case dx < -SwipeThreshold:
		return KindDislike, true
	}
	return "", false
}

// Decision represents a directed verdict from one user about another
type Decision struct {
	ID            string       `json:"id" dynamodbav:"id"`
	OriginID      string       `json:"origin_id" dynamodbav:"origin_id"`
	DestinationID string       `json:"destination_id" dynamodbav:"destination_id"`
	Kind          DecisionKind `json:"kind" dynamodbav:"kind"`
	CreatedAt     time.Time    `json:"created_at" dynamodbav:"created_at"`
}
