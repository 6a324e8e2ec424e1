// Package metrics Prometheus 指標
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipe_suggester"

// 推薦與索引指標
var (
	SuggestRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggest_requests_total",
			Help:      "Total number of suggestion requests",
		},
		[]string{"status"}, // "ok" / "invalid" / "unavailable" / "error"
	)

	SuggestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggest_duration_seconds",
			Help:      "Suggestion latency in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
	)

	SuggestResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggest_results",
			Help:      "Number of recipes returned per suggestion",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)

	SuggestCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggest_cache_total",
			Help:      "Suggestion cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CorpusRecipes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_recipes",
			Help:      "Number of recipes in the active index",
		},
	)

	IndexVocabulary = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_vocabulary_terms",
			Help:      "Number of terms in the active TF-IDF vocabulary",
		},
	)

	IndexVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_version",
			Help:      "Version of the active index snapshot",
		},
	)

	IndexReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_reloads_total",
			Help:      "Total number of corpus reloads",
		},
		[]string{"trigger", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		SuggestRequestsTotal,
		SuggestDuration,
		SuggestResults,
		SuggestCacheTotal,
		CorpusRecipes,
		IndexVocabulary,
		IndexVersion,
		IndexReloadsTotal,
		httpRequestDuration,
		httpRequestsTotal,
	)
}

// ObserveIndex 更新目前索引的大小與版本
func ObserveIndex(recipes, vocabulary int, version uint64) {
	CorpusRecipes.Set(float64(recipes))
	IndexVocabulary.Set(float64(vocabulary))
	IndexVersion.Set(float64(version))
}

// Handler Prometheus exposition handler
func Handler() http.Handler {
	return promhttp.Handler()
}
