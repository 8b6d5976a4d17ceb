// Package metrics exposes analysis results as Prometheus gauges for the
// node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the gauges of one analysis run in a private registry.
type Recorder struct {
	registry *prometheus.Registry

	candidates prometheus.Gauge
	reachable  prometheus.Gauge
	unused     prometheus.Gauge
	edges      prometheus.Gauge
	roots      prometheus.Gauge
	duration   prometheus.Gauge
}

// Summary is what a run reports.
type Summary struct {
	Candidates int
	Reachable  int
	Unused     int
	Edges      int
	Roots      int
	Duration   time.Duration
}

// NewRecorder creates a recorder with every gauge registered at zero.
func NewRecorder() *Recorder {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orphans",
			Name:      name,
			Help:      help,
		})
	}

	r := &Recorder{
		registry:   prometheus.NewRegistry(),
		candidates: gauge("candidate_files", "Source files considered by the analysis."),
		reachable:  gauge("reachable_files", "Candidate files reachable from an entry point."),
		unused:     gauge("unused_files", "Unreachable files reported as unused."),
		edges:      gauge("import_edges", "Resolved import edges between candidate files."),
		roots:      gauge("roots", "Entry points and global stylesheets."),
		duration:   gauge("analysis_duration_seconds", "Wall time of the last analysis."),
	}
	r.registry.MustRegister(r.candidates, r.reachable, r.unused, r.edges, r.roots, r.duration)
	return r
}

// Observe sets every gauge from s.
func (r *Recorder) Observe(s Summary) {
	r.candidates.Set(float64(s.Candidates))
	r.reachable.Set(float64(s.Reachable))
	r.unused.Set(float64(s.Unused))
	r.edges.Set(float64(s.Edges))
	r.roots.Set(float64(s.Roots))
	r.duration.Set(s.Duration.Seconds())
}

// Registry returns the registry the gauges live in.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes the gauges in text exposition format. The file is replaced
// atomically.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
