package generator

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Recorder receives build measurements.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	ObservePageRender(locale string, d time.Duration, err error)
	IncPages(result string, n int)
	IncAssets(result string, n int)
	IncRoutes(n int)
}

// Result labels.
const (
	ResultBuilt   = "built"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

// NoopRecorder discards measurements.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)             {}
func (NoopRecorder) ObservePageRender(string, time.Duration, error) {}
func (NoopRecorder) IncPages(string, int)                           {}
func (NoopRecorder) IncAssets(string, int)                          {}
func (NoopRecorder) IncRoutes(int)                                  {}

// PrometheusRecorder exports build metrics.
type PrometheusRecorder struct {
	once          sync.Once
	buildDuration prom.Histogram
	pageDuration  *prom.HistogramVec
	pages         *prom.CounterVec
	assets        *prom.CounterVec
	routes        prom.Counter
}

// NewPrometheusRecorder registers the generator metrics on reg, or on a
// private registry when reg is nil.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "pagebuilder",
			Name:      "build_duration_seconds",
			Help:      "Duration of complete site builds",
			Buckets:   prom.DefBuckets,
		})
		pr.pageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pagebuilder",
			Name:      "page_render_duration_seconds",
			Help:      "Duration of single document builds",
			Buckets:   prom.DefBuckets,
		}, []string{"locale", "result"})
		pr.pages = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pagebuilder",
			Name:      "pages_total",
			Help:      "Pages processed by result",
		}, []string{"result"})
		pr.assets = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pagebuilder",
			Name:      "assets_total",
			Help:      "Assets processed by result",
		}, []string{"result"})
		pr.routes = prom.NewCounter(prom.CounterOpts{
			Namespace: "pagebuilder",
			Name:      "routes_written_total",
			Help:      "Route provider outputs written",
		})
		reg.MustRegister(pr.buildDuration, pr.pageDuration, pr.pages, pr.assets, pr.routes)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePageRender(locale string, d time.Duration, err error) {
	if p == nil || p.pageDuration == nil {
		return
	}
	result := ResultBuilt
	if err != nil {
		result = ResultFailed
	}
	p.pageDuration.WithLabelValues(locale, result).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPages(result string, n int) {
	if p == nil || p.pages == nil || n <= 0 {
		return
	}
	p.pages.WithLabelValues(result).Add(float64(n))
}

func (p *PrometheusRecorder) IncAssets(result string, n int) {
	if p == nil || p.assets == nil || n <= 0 {
		return
	}
	p.assets.WithLabelValues(result).Add(float64(n))
}

func (p *PrometheusRecorder) IncRoutes(n int) {
	if p == nil || p.routes == nil || n <= 0 {
		return
	}
	p.routes.Add(float64(n))
}
