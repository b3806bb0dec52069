package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ MetricsCollector = (*Collector)(nil)

// HTTPステータスコードがラベル別にカウントされることを検証
func TestCollector_RecordHTTPStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("200")); got != 2 {
		t.Errorf("status 200 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("404")); got != 1 {
		t.Errorf("status 404 count = %v, want 1", got)
	}
}

// 登録・ログイン失敗・アップロード失敗カウンターの動作を検証
func TestCollector_DomainCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignUp()
	c.RecordSignUp()
	c.RecordSignInFailure()
	c.RecordUploadFailure()

	if got := testutil.ToFloat64(c.signUps); got != 2 {
		t.Errorf("signups = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.signInFails); got != 1 {
		t.Errorf("signin failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.uploadFails); got != 1 {
		t.Errorf("upload failures = %v, want 1", got)
	}
}

// /metricsエンドポイントが登録済みメトリクスを公開することを検証
func TestSetupMetricsRoute_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordRequestLatency("/api/users/{id}", 42*time.Millisecond)

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body := w.Body.String()
	if !strings.Contains(body, "tsubuyaki_http_status_total") {
		t.Error("expected tsubuyaki_http_status_total in /metrics output")
	}
	if !strings.Contains(body, "tsubuyaki_request_latency_seconds") {
		t.Error("expected tsubuyaki_request_latency_seconds in /metrics output")
	}
}
