package views

import (
	"fmt"

	"github.com/slovakpatriot/arena/internal/bracket"
)

type MatchView struct {
	bracket.Match
	Side bracket.Side `json:"side"`
	// Highlight marks a match the viewer plays in.
	Highlight bool `json:"highlight"`
	Bye       bool `json:"bye"`
}

type RoundView struct {
	Label   string      `json:"label"`
	Matches []MatchView `json:"matches"`
}

type BracketView struct {
	Generated bool                 `json:"generated"`
	Winners   []RoundView          `json:"winners"`
	Losers    []RoundView          `json:"losers,omitempty"`
	Champion  *bracket.Participant `json:"champion,omitempty"`
	// Pending lists seated participants still waiting to check in.
	Pending []bracket.Participant `json:"pending,omitempty"`
}

// PrepareBracketView labels the rounds of both brackets and highlights the
// matches of viewerID, which may be empty for anonymous viewers.
func PrepareBracketView(state bracket.State, checkInRequired bool, viewerID string) BracketView {
	view := BracketView{Generated: state.Generated()}
	if !view.Generated {
		return view
	}

	view.Winners = prepareRounds(state.Bracket, bracket.WinnersSide, viewerID)
	if state.EliminationType == bracket.DoubleElimination {
		view.Losers = prepareRounds(state.LoserBracket, bracket.LosersSide, viewerID)
	}
	view.Champion = state.Champion()
	if checkInRequired {
		view.Pending = bracket.CheckInGate{Required: true}.Pending(state)
	}
	return view
}

func prepareRounds(b bracket.Bracket, side bracket.Side, viewerID string) []RoundView {
	rounds := make([]RoundView, len(b))
	for r, round := range b {
		rounds[r] = RoundView{
			Label:   RoundLabel(side, r, len(b)),
			Matches: make([]MatchView, len(round)),
		}
		for i, m := range round {
			rounds[r].Matches[i] = MatchView{
				Match:     m,
				Side:      side,
				Highlight: viewerID != "" && m.Has(viewerID),
				Bye:       m.IsBye(),
			}
		}
	}
	return rounds
}

// RoundLabel names the last three rounds of a bracket and numbers the rest.
// Loser bracket labels carry a "Losers " prefix.
func RoundLabel(side bracket.Side, round, total int) string {
	var label string
	switch total - round {
	case 1:
		label = "Final"
	case 2:
		label = "Semi-Finals"
	case 3:
		label = "Quarter-Finals"
	default:
		label = fmt.Sprintf("Round %d", round+1)
	}
	if side == bracket.LosersSide {
		return "Losers " + label
	}
	return label
}
