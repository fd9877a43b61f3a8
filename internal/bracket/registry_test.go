package bracket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveParticipants(t *testing.T) {
	regs := []Registration{
		{ID: uuid.New(), Kind: SoloRegistration, UserID: "u1", Username: "alice", CheckedIn: true},
		{ID: uuid.New(), Kind: TeamRegistration, UserID: "u2", Username: "bob", TeamID: strPtr("t1"), TeamName: strPtr("Falcons")},
		{ID: uuid.New(), Kind: TeamRegistration, UserID: "u3", Username: "carol", TeamID: strPtr("t2")},
	}

	participants, err := ResolveParticipants(regs)
	require.NoError(t, err)
	assert.Equal(t, []Participant{
		{ID: "u1", Name: "alice", CheckedIn: true},
		{ID: "t1", Name: "Falcons"},
		{ID: "t2", Name: "carol"},
	}, participants)
}

func TestResolveParticipantsMalformed(t *testing.T) {
	regs := []Registration{
		{ID: uuid.New(), Kind: SoloRegistration, UserID: "u1", Username: "alice"},
		{ID: uuid.New(), Kind: TeamRegistration, UserID: "u2", Username: "bob"},
	}

	participants, err := ResolveParticipants(regs)
	assert.ErrorIs(t, err, ErrMalformedRegistration)
	assert.Nil(t, participants)

	_, err = ResolveParticipants([]Registration{{ID: uuid.New(), Kind: SoloRegistration}})
	assert.ErrorIs(t, err, ErrMalformedRegistration)
}

func TestResolveParticipantsEmpty(t *testing.T) {
	participants, err := ResolveParticipants(nil)
	require.NoError(t, err)
	assert.Empty(t, participants)
}

func TestRegistryLookup(t *testing.T) {
	reg := Registry{
		{Kind: SoloRegistration, UserID: "u1", Username: "alice"},
		{Kind: TeamRegistration, UserID: "u2", Username: "bob", TeamID: strPtr("t1"), TeamName: strPtr("Falcons"), CheckedIn: true},
	}

	p, ok := reg.Lookup("t1")
	require.True(t, ok)
	assert.Equal(t, Participant{ID: "t1", Name: "Falcons", CheckedIn: true}, p)

	_, ok = reg.Lookup("u2")
	assert.False(t, ok, "team captains are represented by their team")

	_, ok = reg.Lookup("")
	assert.False(t, ok)
}

func TestRegistrationCovers(t *testing.T) {
	solo := Registration{Kind: SoloRegistration, UserID: "u1"}
	team := Registration{Kind: TeamRegistration, UserID: "u2", TeamID: strPtr("t1")}

	assert.True(t, solo.Covers("u1", nil))
	assert.False(t, solo.Covers("u2", strPtr("t1")))
	assert.True(t, team.Covers("u3", strPtr("t1")))
	assert.False(t, team.Covers("u2", nil))
	assert.False(t, team.Covers("u3", strPtr("t2")))
}

func TestParseEliminationType(t *testing.T) {
	testCases := []struct {
		input       string
		expected    EliminationType
		expectedErr error
	}{
		{"", SingleElimination, nil},
		{"single", SingleElimination, nil},
		{"double", DoubleElimination, nil},
		{"triple", "", ErrInvalidEliminationType},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseEliminationType(tc.input)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
