// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェア・ハンドラー・サービス層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordMutation(resource, operation string)
	RecordStorageError()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	mutations     *prometheus.CounterVec
	storageErrors prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_http_requests_total",
			Help: "HTTPリクエスト数（メソッド・ルート・ステータス別）",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsletter_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_mutations_total",
			Help: "リソース変更操作の成功数",
		}, []string{"resource", "operation"}),
		storageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsletter_storage_errors_total",
			Help: "ストレージエラーとして500を返した回数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.mutations,
		c.storageErrors,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの結果と処理時間を記録する。
// routeにはchiのルートパターンを渡し、ラベルのカーディナリティを抑える。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordMutation はcreate/update/deleteの成功を記録する。
func (c *Collector) RecordMutation(resource, operation string) {
	c.mutations.WithLabelValues(resource, operation).Inc()
}

// RecordStorageError はストレージエラーを記録する。
func (c *Collector) RecordStorageError() {
	c.storageErrors.Inc()
}

// RegisterDBStats はコネクションプールの統計情報をレジストリに登録する。
func RegisterDBStats(reg prometheus.Registerer, db *sql.DB, dbName string) {
	reg.MustRegister(collectors.NewDBStatsCollector(db, dbName))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordMutation(string, string)                         {}
func (Nop) RecordStorageError()                                   {}
