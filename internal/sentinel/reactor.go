package sentinel

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
)

// Relocator sends a planet's fleet away so an incoming attack finds nothing.
type Relocator interface {
	FleetSave(ctx context.Context, planetID string) error
}

// Outcome tallies what the reactor saw and did in one cycle.
type Outcome struct {
	Attacks    int
	Espionage  int
	FleetSaves []schemas.FleetSaveRecord
}

// Reactor walks the fleet events of a snapshot in order and fleet-saves every
// attacked planet that still has ships.
type Reactor struct {
	relocator Relocator
	logger    *zap.Logger
	now       func() time.Time
}

// NewReactor creates a reactor. A nil clock means time.Now.
func NewReactor(relocator Relocator, logger *zap.Logger, now func() time.Time) *Reactor {
	if now == nil {
		now = time.Now
	}
	return &Reactor{
		relocator: relocator,
		logger:    logger.Named("reactor"),
		now:       now,
	}
}

// React classifies every event and acts on hostile attacks. The first error
// stops processing; saves already sent are still reported in the outcome.
func (r *Reactor) React(ctx context.Context, overview *schemas.EmpireOverview) (Outcome, error) {
	var out Outcome
	if overview == nil {
		return out, nil
	}

	for i, ev := range overview.Events {
		mission, err := ev.Mission()
		if err != nil {
			return out, fmt.Errorf("event %d: %w", i, err)
		}

		switch mission {
		case schemas.MissionEnemyEspionage:
			out.Espionage++
			r.logger.Info("Hostile espionage probe inbound.",
				zap.String("destination", ev.Destination),
				zap.String("origin", ev.Origin),
				zap.String("arrival", ev.ArrivalTime))
			continue
		case schemas.MissionEnemyAttacking:
			out.Attacks++
		default:
			continue
		}

		r.logger.Warn(fmt.Sprintf("%s is being attacked by %s", ev.Destination, ev.Origin),
			zap.String("destination", ev.Destination),
			zap.String("origin", ev.Origin),
			zap.String("arrival", ev.ArrivalTime))

		planet, ok := overview.PlanetByLocation(ev.Destination)
		if !ok {
			return out, fmt.Errorf("%w: %s", ErrNoMatchingLocation, ev.Destination)
		}

		ships := planet.Fleet.Total()
		if ships == 0 {
			r.logger.Info("No ships stationed at attacked planet, nothing to save.",
				zap.String("planet_id", planet.ID),
				zap.String("location", planet.Location))
			continue
		}

		r.logger.Info("Fleet saving.",
			zap.String("planet_id", planet.ID),
			zap.String("location", planet.Location),
			zap.Int("ships", ships))
		if err := r.relocator.FleetSave(ctx, planet.ID); err != nil {
			return out, fmt.Errorf("fleet save from planet %s: %w", planet.ID, err)
		}

		out.FleetSaves = append(out.FleetSaves, schemas.FleetSaveRecord{
			PlanetID: planet.ID,
			Location: planet.Location,
			Origin:   ev.Origin,
			Arrival:  ev.ArrivalTime,
			Ships:    ships,
			SentAt:   r.now(),
		})
	}
	return out, nil
}
