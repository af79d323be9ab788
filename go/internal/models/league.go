package models

import (
	"time"

	"github.com/google/uuid"
)

// LeagueType represents the type of league
type LeagueType string

const (
	LeagueTypeRedraft LeagueType = "REDRAFT"
	LeagueTypeKeeper  LeagueType = "KEEPER"
	LeagueTypeDynasty LeagueType = "DYNASTY"
)

type LeagueStatus string

const (
	LeagueStatusPending   LeagueStatus = "PENDING"
	LeagueStatusActive    LeagueStatus = "ACTIVE"
	LeagueStatusCompleted LeagueStatus = "COMPLETED"
	LeagueStatusCancelled LeagueStatus = "CANCELLED"
)

// DraftType is the pick-ordering algorithm used to generate a league's
// draft picks (§4.2). Only SNAKE and LINEAR are wired through the FSM;
// auction/rookie variants mentioned elsewhere are out of scope here.
type DraftType string

const (
	DraftTypeSnake  DraftType = "SNAKE"
	DraftTypeLinear DraftType = "LINEAR"
)

// RosterTemplate is the per-position starter/bench allocation a league
// enforces. It is informational to the draft core — the core never
// rejects a pick for roster-shape reasons, but the Snapshot Builder
// copies it into StateSync verbatim.
type RosterTemplate struct {
	StarterCounts map[string]int `json:"starter_counts"`
	BenchCount    int            `json:"bench_count"`
}

// LeagueSettings holds the static, commissioner-owned configuration that
// governs how a league's draft behaves.
type LeagueSettings struct {
	MaxTeams           int            `json:"max_teams"`
	RosterTemplate     RosterTemplate `json:"roster_template"`
	DraftType          DraftType      `json:"draft_type"`
	TotalRounds        int            `json:"total_rounds"`
	TimerDurationSec   int            `json:"timer_duration_sec"`
	ReserveTimeSec     int            `json:"reserve_time_sec"`
	PauseOnTrade       bool           `json:"pause_on_trade"`
	MaxKeepers         int            `json:"max_keepers"`
	ScheduledStartTime *time.Time     `json:"scheduled_start_time,omitempty"`
	KeeperDeadline     *time.Time     `json:"keeper_deadline,omitempty"`
}

// League represents a fantasy sports league
type League struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	SportID        string         `json:"sport_id"`
	LeagueType     LeagueType     `json:"league_type"`
	CommissionerID uuid.UUID      `json:"commissioner_id"`
	LeagueSettings LeagueSettings `json:"league_settings"`
	Status         LeagueStatus   `json:"league_status"`
	Season         string         `json:"season"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
