package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"carrental-backend/availability"
)

// Computer is the read side the board needs; AvailabilityService and
// availability.Engine both satisfy it.
type Computer interface {
	Compute(ctx context.Context, q availability.Query) (availability.Result, error)
}

// Broadcaster pushes an encoded snapshot to live clients.
type Broadcaster interface {
	Broadcast(message []byte)
}

// BoardSnapshot is the fleet board for [Start, End] as of GeneratedAt.
type BoardSnapshot struct {
	Seq         uint64                `json:"seq"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Start       string                `json:"start"`
	End         string                `json:"end"`
	Vehicles    []VehicleCalendarView `json:"vehicles"`
}

// BoardService keeps the fleet board fresh on a cron schedule.
//
// Every refresh takes a sequence number before computing. Refreshes can
// overlap and finish out of order, so Publish only accepts a snapshot
// newer than the one already published.
type BoardService struct {
	avail       Computer
	hub         Broadcaster
	loc         *time.Location
	horizonDays int
	now         func() time.Time

	seq atomic.Uint64

	mu     sync.RWMutex
	latest *BoardSnapshot

	cron *cron.Cron
}

func NewBoardService(avail Computer, hub Broadcaster, loc *time.Location, horizonDays int) *BoardService {
	if loc == nil {
		loc = time.UTC
	}
	if horizonDays <= 0 {
		horizonDays = 14
	}
	return &BoardService{
		avail:       avail,
		hub:         hub,
		loc:         loc,
		horizonDays: horizonDays,
		now:         time.Now,
	}
}

// Refresh computes [today, today+horizon) for every vehicle and publishes it.
func (b *BoardService) Refresh(ctx context.Context) error {
	seq := b.seq.Add(1)
	today := availability.Day(b.now(), b.loc)
	end := today.AddDate(0, 0, b.horizonDays-1)

	res, err := b.avail.Compute(ctx, availability.Query{Start: today, End: end})
	if err != nil {
		return fmt.Errorf("board refresh %d: %w", seq, err)
	}
	if err := res.Err(); err != nil {
		log.Printf("⚠️  board refresh %d: partial result: %v", seq, err)
	}

	b.Publish(BoardSnapshot{
		Seq:         seq,
		GeneratedAt: b.now().In(b.loc),
		Start:       today.Format(availability.DateLayout),
		End:         end.Format(availability.DateLayout),
		Vehicles:    CalendarViews(res),
	})
	return nil
}

// Publish stores snap and broadcasts it unless a snapshot with the same or
// a later sequence number was already published. It reports whether snap
// was accepted.
func (b *BoardService) Publish(snap BoardSnapshot) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.latest != nil && snap.Seq <= b.latest.Seq {
		log.Printf("board snapshot %d discarded, %d already published", snap.Seq, b.latest.Seq)
		return false
	}
	b.latest = &snap

	if b.hub != nil {
		msg, err := json.Marshal(snap)
		if err != nil {
			log.Printf("⚠️  board snapshot %d encode: %v", snap.Seq, err)
			return true
		}
		// Broadcasting under the lock keeps clients in sequence order.
		b.hub.Broadcast(msg)
	}
	return true
}

// Latest returns the most recently published snapshot.
func (b *BoardService) Latest() (BoardSnapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.latest == nil {
		return BoardSnapshot{}, false
	}
	return *b.latest, true
}

// Start schedules Refresh on spec (standard five-field cron) and runs one
// refresh right away.
func (b *BoardService) Start(spec string, timeout time.Duration) error {
	c := cron.New(cron.WithLocation(b.loc))
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := b.Refresh(ctx); err != nil {
			log.Printf("❌ %v", err)
		}
	}
	if _, err := c.AddFunc(spec, run); err != nil {
		return fmt.Errorf("board refresh schedule %q: %w", spec, err)
	}
	b.cron = c
	c.Start()
	log.Printf("🗓️  Board refresher scheduled (%s, %d days)", spec, b.horizonDays)

	go run()
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (b *BoardService) Stop() {
	if b.cron == nil {
		return
	}
	<-b.cron.Stop().Done()
}
