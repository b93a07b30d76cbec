package anomaly

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hydroguard/hydroguard/pkg/types"
)

// Status describes one stream's window and baseline.
type Status struct {
	Stream             string    `json:"stream"`
	WindowSize         int       `json:"window_size"`
	Capacity           int       `json:"capacity"`
	BaselineEfficiency float64   `json:"baseline_efficiency"`
	BaselinePowerMW    float64   `json:"baseline_power_mw"`
	LastSample         time.Time `json:"last_sample,omitempty"`
}

type baseline struct {
	efficiency float64
	powerMW    float64
}

// stream is the per-stream window, newest last.
type stream struct {
	window []types.TelemetrySnapshot
	base   baseline
}

// Detector holds one window per stream. All exported methods are safe for
// concurrent use; a stream's window is never appended while being evaluated.
type Detector struct {
	mu      sync.Mutex
	cfg     Config
	streams map[string]*stream
	now     func() time.Time
}

// New returns a Detector using cfg.
func New(cfg Config) *Detector {
	return &Detector{
		cfg:     cfg,
		streams: make(map[string]*stream),
		now:     time.Now,
	}
}

// Ingest appends snap to the stream's window and returns the first anomaly
// that fires, or nil.
func (d *Detector) Ingest(id string, snap types.TelemetrySnapshot) *types.DetectedAnomaly {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := d.streamFor(id)
	if len(st.window) >= d.cfg.WindowSize {
		st.window = st.window[1:]
	}
	st.window = append(st.window, snap)

	for _, r := range rules {
		if a := r(d.cfg, st.base, st.window); a != nil {
			return d.finish(id, a, st.window)
		}
	}
	return nil
}

// Scan evaluates every detector against the stream's current window and
// returns all that fire, in priority order.
func (d *Detector) Scan(id string) []types.DetectedAnomaly {
	d.mu.Lock()
	defer d.mu.Unlock()

	st, ok := d.streams[id]
	if !ok || len(st.window) == 0 {
		return nil
	}
	var out []types.DetectedAnomaly
	for _, r := range rules {
		if a := r(d.cfg, st.base, st.window); a != nil {
			out = append(out, *d.finish(id, a, st.window))
		}
	}
	return out
}

// SetBaseline replaces the stream's reference efficiency and power.
func (d *Detector) SetBaseline(id string, efficiency, powerMW float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streamFor(id).base = baseline{efficiency: efficiency, powerMW: powerMW}
}

// Status reports the stream's window and baseline. Unknown streams report
// an empty window with the default baseline.
func (d *Detector) Status(id string) Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Status{
		Stream:             id,
		Capacity:           d.cfg.WindowSize,
		BaselineEfficiency: d.cfg.BaselineEfficiency,
		BaselinePowerMW:    d.cfg.BaselinePowerMW,
	}
	if st, ok := d.streams[id]; ok {
		s.WindowSize = len(st.window)
		s.BaselineEfficiency = st.base.efficiency
		s.BaselinePowerMW = st.base.powerMW
		if n := len(st.window); n > 0 {
			s.LastSample = st.window[n-1].Timestamp
		}
	}
	return s
}

// Reset discards the stream's window. The baseline is kept.
func (d *Detector) Reset(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, ok := d.streams[id]; ok {
		st.window = st.window[:0]
	}
}

// Streams returns the known stream IDs, sorted.
func (d *Detector) Streams() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.streams))
	for id := range d.streams {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (d *Detector) streamFor(id string) *stream {
	if st, ok := d.streams[id]; ok {
		return st
	}
	st := &stream{
		window: make([]types.TelemetrySnapshot, 0, d.cfg.WindowSize),
		base:   baseline{efficiency: d.cfg.BaselineEfficiency, powerMW: d.cfg.BaselinePowerMW},
	}
	d.streams[id] = st
	return st
}

func (d *Detector) finish(id string, a *types.DetectedAnomaly, window []types.TelemetrySnapshot) *types.DetectedAnomaly {
	a.ID = uuid.NewString()
	a.Stream = id
	a.DetectedAt = d.now()
	a.WindowDigest = digest(window)
	return a
}
