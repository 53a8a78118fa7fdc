// Package metrics records what a generator run produced. The registry is
// written once per run to a node_exporter textfile collector file.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Artifact kinds used as the "kind" label.
const (
	KindSupplicant   = "supplicant"
	KindKeyfile      = "keyfile"
	KindUnit         = "unit"
	KindCoordination = "coordination"
)

// Registry holds the generator metrics of a single run.
type Registry struct {
	reg *prometheus.Registry

	FilesRendered    *prometheus.CounterVec
	FilesWritten     *prometheus.CounterVec
	StaleRemoved     prometheus.Counter
	ValidationErrors prometheus.Counter
	Interfaces       *prometheus.GaugeVec
	LastRun          prometheus.Gauge
	Duration         prometheus.Gauge
}

// New creates a registry backed by its own prometheus.Registry, so repeated
// runs in one process (and tests) never collide on registration.
func New() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Registry{
		reg: reg,
		FilesRendered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "netgen_files_rendered_total",
			Help: "Artifacts rendered, by kind",
		}, []string{"kind"}),
		FilesWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "netgen_files_written_total",
			Help: "Artifacts whose on-disk content changed, by kind",
		}, []string{"kind"}),
		StaleRemoved: f.NewCounter(prometheus.CounterOpts{
			Name: "netgen_stale_files_removed_total",
			Help: "Previously generated files removed because no definition produces them anymore",
		}),
		ValidationErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "netgen_validation_errors_total",
			Help: "Validation errors found in the network definitions",
		}),
		Interfaces: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netgen_interfaces",
			Help: "Interfaces defined, by renderer",
		}, []string{"renderer"}),
		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "netgen_last_run_timestamp_seconds",
			Help: "Unix time of the last generator run",
		}),
		Duration: f.NewGauge(prometheus.GaugeOpts{
			Name: "netgen_run_duration_seconds",
			Help: "Wall time of the last generator run",
		}),
	}
}

// ObserveRun records the run timestamp and duration.
func (r *Registry) ObserveRun(start time.Time) {
	r.LastRun.Set(float64(start.Unix()))
	r.Duration.Set(time.Since(start).Seconds())
}

// WriteTextfile writes the registry in the text exposition format. The write
// goes through a temporary file and a rename.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
