package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LeadsProcessed  *prometheus.CounterVec
	PagesCrawled    prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
	ContactsFound   *prometheus.CounterVec
	CrawlDuration   prometheus.Histogram
	CacheLookups    *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPRequestTime *prometheus.HistogramVec
}

// NewMetrics registers the application metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LeadsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgen_leads_processed_total",
			Help: "The total number of leads run through the pipeline",
		}, []string{"outcome"}), // 'crawled', 'cached', 'no_website', 'browser_error'
		PagesCrawled: f.NewCounter(prometheus.CounterOpts{
			Name: "leadgen_pages_crawled_total",
			Help: "The total number of website pages loaded",
		}),
		ErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgen_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g., 'page_failed', 'browser_launch', 'db_save_failed'
		ContactsFound: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgen_contacts_found_total",
			Help: "Contacts extracted from websites, by kind",
		}, []string{"kind"}),
		CrawlDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "leadgen_site_crawl_duration_seconds",
			Help:    "Time spent crawling one website",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgen_crawl_cache_lookups_total",
			Help: "Crawl cache lookups by result",
		}, []string{"result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgen_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadgen_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncLeadsProcessed(outcome string) {
	m.LeadsProcessed.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddPagesCrawled(n int) {
	m.PagesCrawled.Add(float64(n))
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) IncContactFound(kind string) {
	m.ContactsFound.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveCrawl(seconds float64) {
	m.CrawlDuration.Observe(seconds)
}

func (m *Metrics) IncCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}
