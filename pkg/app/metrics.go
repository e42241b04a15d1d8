package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"github.com/womat/debug"
)

const (
	metricsNamespace = "radrx"
	metricsSubsystem = "receiver"
)

// initMetrics registers the receiver counters in the metrics registry.
// The values are read from the receiver on every scrape.
func (app *App) initMetrics() {
	factory := promauto.With(app.metrics)

	for _, c := range app.config.Codecs {
		p := c.Protocol()
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "valid_messages_total",
			Help:        "Total number of valid messages",
			ConstLabels: prometheus.Labels{"protocol": p.String()},
		}, func() float64 { return float64(app.receiver.Stats().Valid[p]) })
	}

	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "invalid_messages_total",
		Help:      "Total number of messages no protocol accepted",
	}, func() float64 { return float64(app.receiver.Stats().Invalid) })

	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "abandoned_messages_total",
		Help:      "Total number of messages stopped before they were resolved",
	}, func() float64 { return float64(app.receiver.Stats().Abandoned) })

	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "dropped_samples_total",
		Help:      "Total number of samples dropped because the message buffer was full",
	}, func() float64 { return float64(app.receiver.Stats().Dropped) })

	if app.line != nil {
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "event_overruns_total",
			Help:      "Total number of gpio events lost because the event buffer was full",
		}, func() float64 { return float64(app.line.Overruns()) })
	}

	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "damage_total",
		Help:      "Total damage of all hits",
	}, func() float64 {
		_, _, damage := app.hits.get()
		return float64(damage)
	})

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "protocols_enabled",
		Help:      "Number of enabled protocols",
	}, func() float64 { return float64(len(app.config.Codecs)) })

	app.metrics.MustRegister(collectors.NewGoCollector())
}

// HandleMetrics is the prometheus scrape web handler.
func (app *App) HandleMetrics() fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(app.metrics, promhttp.HandlerOpts{}))

	return func(ctx *fiber.Ctx) error {
		debug.TraceLog.Print("web request metrics")

		h(ctx.Context())
		return nil
	}
}
