package schemas

import (
	"time"

	"github.com/google/uuid"
)

// FleetEvent is one row of the in-game event list.
type FleetEvent struct {
	MissionLabel string `json:"mission_label"`
	ArrivalTime  string `json:"arrival_time"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
}

// Mission classifies the event from its raw label.
func (e FleetEvent) Mission() (MissionType, error) {
	return ParseMissionType(e.MissionLabel)
}

// CycleRecord summarises one sentinel cycle for persistence.
type CycleRecord struct {
	ID         uuid.UUID       `json:"id"`
	StartedAt  time.Time       `json:"started_at"`
	NextWake   time.Time       `json:"next_wake"`
	Overview   *EmpireOverview `json:"overview"`
	FleetSaves int             `json:"fleet_saves"`
}

// CycleSummary is a row of the cycle history as read back from the store.
type CycleSummary struct {
	ID           uuid.UUID `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	NextWake     time.Time `json:"next_wake"`
	PlanetCount  int       `json:"planet_count"`
	EventCount   int       `json:"event_count"`
	HostileCount int       `json:"hostile_count"`
	FleetSaves   int       `json:"fleet_saves"`
}

// FleetSaveRecord captures one protective dispatch.
type FleetSaveRecord struct {
	CycleID  uuid.UUID `json:"cycle_id"`
	PlanetID string    `json:"planet_id"`
	Location string    `json:"location"`
	Origin   string    `json:"origin"`
	Arrival  string    `json:"arrival"`
	Ships    int       `json:"ships"`
	SentAt   time.Time `json:"sent_at"`
}
