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
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(path string, duration time.Duration)
	RecordSignUp()
	RecordSignInFailure()
	RecordUploadFailure()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	signUps        prometheus.Counter
	signInFails    prometheus.Counter
	uploadFails    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsubuyaki_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tsubuyaki_request_latency_seconds",
			Help:    "リクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		signUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsubuyaki_signups_total",
			Help: "アカウント登録成功の合計数",
		}),
		signInFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsubuyaki_signin_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		uploadFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsubuyaki_upload_fail_total",
			Help: "画像アップロード失敗の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.signUps,
		c.signInFails,
		c.uploadFails,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
// pathはルートパターン（/api/users/{id}など）を渡す。生のURLは渡さない。
func (c *Collector) RecordRequestLatency(path string, duration time.Duration) {
	c.requestLatency.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordSignUp はアカウント登録成功を記録する。
func (c *Collector) RecordSignUp() {
	c.signUps.Inc()
}

// RecordSignInFailure はログイン失敗を記録する。
func (c *Collector) RecordSignInFailure() {
	c.signInFails.Inc()
}

// RecordUploadFailure は画像アップロード失敗を記録する。
func (c *Collector) RecordUploadFailure() {
	c.uploadFails.Inc()
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
