package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector: метрики сервиса на собственном реестре.
type Collector struct {
	reg *prometheus.Registry

	InterestRegistrations prometheus.Counter
	InterestRejections    *prometheus.CounterVec // reason: already_departed|not_next|unknown_slot
	ResetCounters         prometheus.Counter
	ResolveDuration       prometheus.Histogram

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		InterestRegistrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busline_interest_registrations_total",
			Help: "Total successful interest registrations.",
		}),
		InterestRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busline_interest_rejections_total",
			Help: "Interest registrations rejected by the eligibility gate.",
		}, []string{"reason"}),
		ResetCounters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busline_interest_counters_reset_total",
			Help: "Interest counters zeroed after their departure elapsed.",
		}),
		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "busline_resolve_duration_seconds",
			Help:    "Duration of current/next slot resolution.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busline_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busline_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "busline_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "busline_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
	}

	reg.MustRegister(
		c.InterestRegistrations, c.InterestRejections, c.ResetCounters, c.ResolveDuration,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
	)
	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Registry отдаёт реестр, например для проверок в тестах.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) InterestRegistered() { c.InterestRegistrations.Inc() }

func (c *Collector) InterestRejected(reason string) {
	c.InterestRejections.WithLabelValues(reason).Inc()
}

func (c *Collector) CountersReset(n int) {
	c.ResetCounters.Add(float64(n))
}

func (c *Collector) ObserveResolve(d time.Duration) { c.ResolveDuration.Observe(d.Seconds()) }

func (c *Collector) NATSPublishedInc()              { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc()             { c.NATSPublishErrs.Inc() }
func (c *Collector) PublishObserve(d time.Duration) { c.PublishDuration.Observe(d.Seconds()) }

func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
		return
	}
	c.NATSConnected.Set(0)
}
