// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// SubmissionScore is one named score of a round submission as returned by the
// scoring API. Any numeric field may be null.
type SubmissionScore struct {
	DisplayName   string              `json:"displayName"`
	Value         decimal.NullDecimal `json:"value"`
	Percentile    decimal.NullDecimal `json:"percentile"`
	PayoutPending decimal.NullDecimal `json:"payoutPending"`
	PayoutSettled decimal.NullDecimal `json:"payoutSettled"`
}

// RoundRecord is the performance of one model in one round.
type RoundRecord struct {
	RoundNumber         int                 `json:"roundNumber"`
	RoundResolved       bool                `json:"roundResolved"`
	RoundPayoutFactor   decimal.NullDecimal `json:"roundPayoutFactor"`
	AtRisk              decimal.NullDecimal `json:"atRisk"`
	PrevWeekTurnoverMax decimal.NullDecimal `json:"prevWeekTurnoverMax"`
	SubmissionScores    []SubmissionScore   `json:"submissionScores"`
}

// State returns the resolution state of the round.
func (r *RoundRecord) State() RoundState {
	return StateOf(r.RoundResolved)
}

// Model identifies a model registered on the account.
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoundState partitions rounds by resolution status.
type RoundState string

// Round states, in emission order.
const (
	Resolved   RoundState = "resolved"
	Unresolved RoundState = "unresolved"
)

// RoundStates lists every RoundState.
func RoundStates() []RoundState {
	return []RoundState{Resolved, Unresolved}
}

// StateOf maps the API's resolved flag to a RoundState.
func StateOf(resolved bool) RoundState {
	if resolved {
		return Resolved
	}
	return Unresolved
}

// MustValid panics when s is not a known state. No API input can produce an
// unknown state, so reaching it is a bug in the caller.
func (s RoundState) MustValid() RoundState {
	switch s {
	case Resolved, Unresolved:
		return s
	default:
		panic(fmt.Sprintf("model: unknown round state %q", string(s)))
	}
}

// SortRounds orders records by descending round number and keeps one record
// per round (the last one seen wins). The input slice is not modified.
func SortRounds(records []RoundRecord) []RoundRecord {
	byRound := make(map[int]int, len(records))
	out := make([]RoundRecord, 0, len(records))
	for i := range records {
		if idx, ok := byRound[records[i].RoundNumber]; ok {
			out[idx] = records[i]
			continue
		}
		byRound[records[i].RoundNumber] = len(out)
		out = append(out, records[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RoundNumber > out[j].RoundNumber
	})
	return out
}
