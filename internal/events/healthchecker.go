package events

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// BusHealthChecker reports the bus healthy while it still accepts events.
type BusHealthChecker struct {
	bus     *Bus
	healthy atomic.Int32
	log     zerolog.Logger
}

func NewBusHealthChecker(bus *Bus, log zerolog.Logger) *BusHealthChecker {
	return &BusHealthChecker{bus: bus, log: log}
}

func (hc *BusHealthChecker) Name() string { return "events" }

func (hc *BusHealthChecker) IsHealthy() bool { return hc.healthy.Load() == 1 }

// Start begins periodic health checking.
func (hc *BusHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	hc.Check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hc.Check()
		}
	}
}

// Check refreshes the cached status. A closed bus is unhealthy.
func (hc *BusHealthChecker) Check() {
	var v int32
	if !hc.bus.Closed() {
		v = 1
	}
	if prev := hc.healthy.Swap(v); prev != v {
		hc.log.Info().Bool("healthy", v == 1).Int64("dropped", hc.bus.Dropped()).Msg("Event bus health changed")
	}
}
