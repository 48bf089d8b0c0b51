package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"carrental-backend/availability"
)

// Invalidator is told which vehicle changed after a booking or note write.
type Invalidator interface {
	Invalidate(ctx context.Context, vehicleID uint)
}

// AvailabilityService puts the Redis cache in front of the engine. The
// engine result is authoritative: cache failures only cost a recompute.
type AvailabilityService struct {
	Engine *availability.Engine
	Fleet  availability.Fleet
	Cache  *AvailabilityCache
}

func NewAvailabilityService(engine *availability.Engine, fleet availability.Fleet, cache *AvailabilityCache) *AvailabilityService {
	return &AvailabilityService{Engine: engine, Fleet: fleet, Cache: cache}
}

func (s *AvailabilityService) Location() *time.Location { return s.Engine.Location() }

// Window validates q's range without computing anything.
func (s *AvailabilityService) Window(q availability.Query) (time.Time, time.Time, error) {
	return s.Engine.Window(q)
}

// Compute answers q from cache where possible and computes the rest.
// Vehicle order in the result always follows q (or the fleet order).
func (s *AvailabilityService) Compute(ctx context.Context, q availability.Query) (availability.Result, error) {
	if s.Cache == nil {
		return s.Engine.Compute(ctx, q)
	}

	start, end, err := s.Engine.Window(q)
	if err != nil {
		return availability.Result{}, err
	}

	ids := q.VehicleIDs
	if len(ids) == 0 {
		if s.Fleet == nil {
			return s.Engine.Compute(ctx, q)
		}
		ids, err = s.Fleet.VehicleIDs(ctx)
		if err != nil {
			return availability.Result{}, fmt.Errorf("%w: list vehicles: %v", availability.ErrSourceUnavailable, err)
		}
	}

	res := availability.Result{Start: start, End: end, Vehicles: make([]availability.VehicleCalendar, len(ids))}
	versions := make(map[uint]int64, len(ids))
	var misses []uint
	missAt := make(map[uint][]int)

	for i, id := range ids {
		// Version is read before computing: a write racing with us bumps it
		// and our entry lands under a key nobody reads again.
		v, err := s.Cache.Version(ctx, id)
		if err != nil {
			log.Printf("⚠️  availability cache version vehicle=%d: %v", id, err)
			misses, missAt[id] = appendMiss(misses, missAt[id], id, i)
			continue
		}
		versions[id] = v
		if days, ok := s.Cache.Get(ctx, id, start, end, v); ok {
			res.Vehicles[i] = availability.VehicleCalendar{VehicleID: id, Days: days}
			continue
		}
		misses, missAt[id] = appendMiss(misses, missAt[id], id, i)
	}

	if len(misses) == 0 {
		return res, nil
	}

	computed, err := s.Engine.Compute(ctx, availability.Query{VehicleIDs: misses, Start: start, End: end})
	if err != nil {
		return availability.Result{}, err
	}
	for _, vc := range computed.Vehicles {
		for _, i := range missAt[vc.VehicleID] {
			res.Vehicles[i] = vc
		}
		if vc.Err != nil {
			continue
		}
		if v, ok := versions[vc.VehicleID]; ok {
			s.Cache.Set(ctx, vc.VehicleID, start, end, v, vc.Days)
		}
	}
	return res, nil
}

// appendMiss records position i for id, adding id to misses only once so a
// query naming a vehicle twice computes it once.
func appendMiss(misses []uint, at []int, id uint, i int) ([]uint, []int) {
	if len(at) == 0 {
		misses = append(misses, id)
	}
	return misses, append(at, i)
}
