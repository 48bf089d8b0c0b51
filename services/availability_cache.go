package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"carrental-backend/availability"
)

// AvailabilityCache stores computed vehicle calendars in Redis. Keys carry
// a per-vehicle version, so bumping the version on any booking or note
// change orphans every stale entry at once; they expire with the TTL.
//
// A nil *AvailabilityCache is valid and caches nothing.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	loc    *time.Location
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration, loc *time.Location) *AvailabilityCache {
	if client == nil {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityCache{client: client, ttl: ttl, loc: loc}
}

func versionKey(vehicleID uint) string {
	return fmt.Sprintf("availability:version:%d", vehicleID)
}

func calendarKey(vehicleID uint, start, end time.Time, version int64) string {
	return fmt.Sprintf("availability:%d:%s:%s:v%d",
		vehicleID, start.Format(availability.DateLayout), end.Format(availability.DateLayout), version)
}

// Version returns the vehicle's current cache version, 0 if never bumped.
func (c *AvailabilityCache) Version(ctx context.Context, vehicleID uint) (int64, error) {
	if c == nil {
		return 0, nil
	}
	v, err := c.client.Get(ctx, versionKey(vehicleID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Get returns the cached days for one vehicle and window at version.
func (c *AvailabilityCache) Get(ctx context.Context, vehicleID uint, start, end time.Time, version int64) ([]availability.DayInfo, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, calendarKey(vehicleID, start, end, version)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("⚠️  availability cache get vehicle=%d: %v", vehicleID, err)
		}
		return nil, false
	}
	var days []availability.DayInfo
	if err := json.Unmarshal(raw, &days); err != nil {
		log.Printf("⚠️  availability cache decode vehicle=%d: %v", vehicleID, err)
		return nil, false
	}
	for i := range days {
		days[i].Date = availability.DateOf(days[i].Date, c.loc)
	}
	return days, true
}

func (c *AvailabilityCache) Set(ctx context.Context, vehicleID uint, start, end time.Time, version int64, days []availability.DayInfo) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(days)
	if err != nil {
		log.Printf("⚠️  availability cache encode vehicle=%d: %v", vehicleID, err)
		return
	}
	if err := c.client.Set(ctx, calendarKey(vehicleID, start, end, version), raw, c.ttl).Err(); err != nil {
		log.Printf("⚠️  availability cache set vehicle=%d: %v", vehicleID, err)
	}
}

// Invalidate bumps the vehicle's version. Failures are logged only; the
// stale entries still expire with the TTL.
func (c *AvailabilityCache) Invalidate(ctx context.Context, vehicleID uint) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, versionKey(vehicleID)).Err(); err != nil {
		log.Printf("⚠️  availability cache invalidate vehicle=%d: %v", vehicleID, err)
	}
}
