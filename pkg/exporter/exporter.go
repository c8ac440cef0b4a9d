// Package exporter contains the scrape pipeline: device state in, metric
// families out. Every scrape recomputes snapshot and peer metadata from
// scratch, a failed scrape never yields a partial document.
package exporter

import (
	"context"
	"time"

	"github.com/mrincompetent/wireguard-exporter/pkg/wireguard/dump"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

const name = "exporter"

// DeviceSource provides the live WireGuard state for a set of interfaces.
// An empty interface list means all interfaces.
type DeviceSource interface {
	Snapshot(ctx context.Context, interfaces []string) (*dump.Snapshot, error)
}

type Exporter struct {
	log              *zap.Logger
	source           DeviceSource
	interfaces       []string
	namesConfigFiles []string
	peerNamesFile    string
	options          Options
	now              func() time.Time

	scrapes        prometheus.Counter
	scrapeErrors   prometheus.Counter
	scrapeDuration prometheus.Histogram
}

var _ prometheus.Gatherer = &Exporter{}

func New(
	log *zap.Logger,
	source DeviceSource,
	interfaces []string,
	namesConfigFiles []string,
	peerNamesFile string,
	options Options,
) *Exporter {
	return &Exporter{
		log:              log.Named(name),
		source:           source,
		interfaces:       interfaces,
		namesConfigFiles: namesConfigFiles,
		peerNamesFile:    peerNamesFile,
		options:          options,
		now:              time.Now,
		scrapes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wireguard_exporter_scrapes_total",
			Help: "Number of scrapes performed.",
		}),
		scrapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wireguard_exporter_scrape_errors_total",
			Help: "Number of scrapes that failed.",
		}),
		scrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "wireguard_exporter_scrape_duration_seconds",
			Help: "Duration of a scrape, including the wg invocations.",
		}),
	}
}

func (e *Exporter) Register(registry prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{e.scrapes, e.scrapeErrors, e.scrapeDuration} {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

// Gather implements prometheus.Gatherer.
func (e *Exporter) Gather() ([]*dto.MetricFamily, error) {
	start := e.now()
	e.scrapes.Inc()

	families, err := e.scrape(context.Background())
	e.scrapeDuration.Observe(e.now().Sub(start).Seconds())

	if err != nil {
		e.scrapeErrors.Inc()
		e.log.Error("Scrape failed", zap.Error(err))

		return nil, err
	}

	return families, nil
}

func (e *Exporter) scrape(ctx context.Context) ([]*dto.MetricFamily, error) {
	table, err := e.loadPeerTable()
	if err != nil {
		return nil, err
	}

	snapshot, err := e.source.Snapshot(ctx, e.interfaces)
	if err != nil {
		return nil, err
	}

	return Render(snapshot, table, e.options, e.now()), nil
}
