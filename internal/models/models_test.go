package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindFromDrag(t *testing.T) {
	tests := []struct {
		name string
		dx   float64
		want DecisionKind
		ok   bool
	}{
		{"far right", 300, KindLike, true},
		{"just past right threshold", 120.5, KindLike, true},
		{"at right threshold", 120, "", false},
		{"small drag", 15, "", false},
		{"at left threshold", -120, "", false},
		{"far left", -250, KindDislike, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := KindFromDrag(tt.dx)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDecisionKind(t *testing.T) {
	k, err := ParseDecisionKind("superlike")
	require.NoError(t, err)
	assert.Equal(t, KindSuperlike, k)
	assert.True(t, k.Positive())

	_, err = ParseDecisionKind("maybe")
	require.Error(t, err)

	assert.False(t, KindDislike.Positive())
}

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair("b", "a")
	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)

	a, b = CanonicalPair("a", "b")
	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
}

func TestMatch_OtherUser(t *testing.T) {
	m := &Match{UserAID: "a", UserBID: "b"}

	other, ok := m.OtherUser("a")
	require.True(t, ok)
	assert.Equal(t, "b", other)

	other, ok = m.OtherUser("b")
	require.True(t, ok)
	assert.Equal(t, "a", other)

	_, ok = m.OtherUser("c")
	assert.False(t, ok)
	assert.False(t, m.HasUser("c"))
}

func TestUser_PublicProfile(t *testing.T) {
	token := "device"
	u := &User{ID: "1", Name: "Ana", Email: "ana@example.com", Phone: "555", City: "Bogota", PushToken: &token}

	p := u.PublicProfile()
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, "Bogota", p.City)
	assert.Empty(t, p.Email)
	assert.Empty(t, p.Phone)
	assert.Nil(t, p.PushToken)
}
