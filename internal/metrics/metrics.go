// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordSignup()
	RecordMemberCreated(treeID string)
	RecordFileUpload(bytes int64)
	RecordFileUploadFailure()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signups        prometheus.Counter
	membersCreated prometheus.Counter
	fileUploads    prometheus.Counter
	uploadBytes    prometheus.Counter
	uploadFails    prometheus.Counter
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kakeizu_signup_total",
			Help: "アカウント作成成功の合計数",
		}),
		membersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kakeizu_member_created_total",
			Help: "メンバー作成成功の合計数",
		}),
		fileUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kakeizu_file_upload_total",
			Help: "ファイルアップロード成功の合計数",
		}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kakeizu_file_upload_bytes_total",
			Help: "アップロードされたファイルの合計バイト数",
		}),
		uploadFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kakeizu_file_upload_fail_total",
			Help: "ファイルアップロード失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kakeizu_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kakeizu_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signups,
		c.membersCreated,
		c.fileUploads,
		c.uploadBytes,
		c.uploadFails,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordSignup はアカウント作成成功を記録する。
func (c *Collector) RecordSignup() {
	c.signups.Inc()
}

// RecordMemberCreated はメンバー作成成功を記録する。
func (c *Collector) RecordMemberCreated(treeID string) {
	c.membersCreated.Inc()
}

// RecordFileUpload はアップロード成功とそのバイト数を記録する。
func (c *Collector) RecordFileUpload(bytes int64) {
	c.fileUploads.Inc()
	if bytes > 0 {
		c.uploadBytes.Add(float64(bytes))
	}
}

// RecordFileUploadFailure はアップロード失敗を記録する。
func (c *Collector) RecordFileUploadFailure() {
	c.uploadFails.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
