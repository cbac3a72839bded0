// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証・チェックリストの結果ラベル
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層、ミドルウェア、ワーカーから利用する。
type MetricsCollector interface {
	RecordSignIn(mode, outcome string)
	RecordSignUp(mode, outcome string)
	RecordChecklistSubmission(outcome string)
	RecordRecordWriteLatency(duration time.Duration)
	SetOpenChecklistSessions(count int)
	RecordReferenceFallback(dataset string)
	RecordHTTPStatus(statusCode int)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signIn             *prometheus.CounterVec
	signUp             *prometheus.CounterVec
	checklistSubmit    *prometheus.CounterVec
	recordWriteLatency prometheus.Histogram
	openChecklists     prometheus.Gauge
	referenceFallback  *prometheus.CounterVec
	httpStatus         *prometheus.CounterVec
	sessionsCleaned    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "injexpro_sign_in_total",
			Help: "認証モード・結果別のサインイン試行数",
		}, []string{"mode", "outcome"}),
		signUp: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "injexpro_sign_up_total",
			Help: "認証モード・結果別のサインアップ試行数",
		}, []string{"mode", "outcome"}),
		checklistSubmit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "injexpro_checklist_submissions_total",
			Help: "結果別のチェックリスト送信数",
		}, []string{"outcome"}),
		recordWriteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "injexpro_record_write_latency_seconds",
			Help:    "完了記録の書き込みレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		openChecklists: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "injexpro_open_checklist_sessions",
			Help: "開いているチェックリストセッション数",
		}),
		referenceFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "injexpro_reference_fallback_total",
			Help: "データセット別のフォールバックデータ使用回数",
		}, []string{"dataset"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "injexpro_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "injexpro_sessions_cleaned_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.signIn,
		c.signUp,
		c.checklistSubmit,
		c.recordWriteLatency,
		c.openChecklists,
		c.referenceFallback,
		c.httpStatus,
		c.sessionsCleaned,
	)

	return c
}

// RecordSignIn はサインイン試行の結果を記録する。
func (c *Collector) RecordSignIn(mode, outcome string) {
	c.signIn.WithLabelValues(mode, outcome).Inc()
}

// RecordSignUp はサインアップ試行の結果を記録する。
func (c *Collector) RecordSignUp(mode, outcome string) {
	c.signUp.WithLabelValues(mode, outcome).Inc()
}

// RecordChecklistSubmission はチェックリスト送信の結果を記録する。
func (c *Collector) RecordChecklistSubmission(outcome string) {
	c.checklistSubmit.WithLabelValues(outcome).Inc()
}

// RecordRecordWriteLatency は完了記録の書き込みレイテンシを記録する。
func (c *Collector) RecordRecordWriteLatency(duration time.Duration) {
	c.recordWriteLatency.Observe(duration.Seconds())
}

// SetOpenChecklistSessions は開いているチェックリストセッション数を設定する。
func (c *Collector) SetOpenChecklistSessions(count int) {
	c.openChecklists.Set(float64(count))
}

// RecordReferenceFallback はフォールバックデータの使用を記録する。
func (c *Collector) RecordReferenceFallback(dataset string) {
	c.referenceFallback.WithLabelValues(dataset).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSessionsCleaned は削除した期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// APIサーバーとは別ポートで公開する場合に使用する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
