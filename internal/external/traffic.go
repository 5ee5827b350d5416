package external

import (
	"context"
	"strings"
)

// Traffic is a connected traffic feed keyed by city sector.
type Traffic interface {
	Service
	VehicleCount(ctx context.Context, sector string) (int, error)
	// AverageSpeed is in km/h.
	AverageSpeed(ctx context.Context, sector string) (float64, error)
	// CongestionPercent maps the feed's level to 25, 50, 75 or 95.
	CongestionPercent(ctx context.Context, sector string) (float64, error)
}

var congestionLevels = []string{"low", "medium", "high", "critical"}

var congestionPercent = map[string]float64{
	"low":      25,
	"medium":   50,
	"high":     75,
	"critical": 95,
}

// CongestionPercentFor maps a congestion level name to percent. Unknown
// levels map to 0.
func CongestionPercentFor(level string) float64 {
	return congestionPercent[strings.ToLower(level)]
}

// trafficAPI is the vendor feed with open/close semantics.
type trafficAPI struct {
	url    string
	active bool
	opts   options
}

func (a *trafficAPI) open() {
	a.opts.logger.Info("traffic api opening", "url", a.url)
	a.active = true
}

func (a *trafficAPI) close() { a.active = false }

func (a *trafficAPI) vehicleCount(string) int { return a.opts.source.IntN(500) }
func (a *trafficAPI) averageSpeed(string) int { return a.opts.source.IntN(60) + 20 }

func (a *trafficAPI) congestionLevel(string) string {
	return congestionLevels[a.opts.source.IntN(len(congestionLevels))]
}

// TrafficFeed adapts the traffic vendor API.
type TrafficFeed struct {
	link
	api *trafficAPI
}

// NewTrafficFeed returns a disconnected adapter for url.
func NewTrafficFeed(url string, opts ...Option) *TrafficFeed {
	return &TrafficFeed{api: &trafficAPI{url: url, opts: buildOptions(opts)}}
}

func (t *TrafficFeed) Connect(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	t.api.open()
	t.set(true)
	return true
}

func (t *TrafficFeed) Disconnect(context.Context) {
	t.api.close()
	t.set(false)
}

func (t *TrafficFeed) VehicleCount(ctx context.Context, sector string) (int, error) {
	if err := t.ready(ctx); err != nil {
		return 0, err
	}
	return t.api.vehicleCount(sector), nil
}

func (t *TrafficFeed) AverageSpeed(ctx context.Context, sector string) (float64, error) {
	if err := t.ready(ctx); err != nil {
		return 0, err
	}
	return float64(t.api.averageSpeed(sector)), nil
}

func (t *TrafficFeed) CongestionPercent(ctx context.Context, sector string) (float64, error) {
	if err := t.ready(ctx); err != nil {
		return 0, err
	}
	level := t.api.congestionLevel(sector)
	pct := CongestionPercentFor(level)
	t.api.opts.logger.Debug("traffic congestion", "sector", sector, "level", level, "percent", pct)
	return pct, nil
}
