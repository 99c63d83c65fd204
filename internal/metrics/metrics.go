// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/postmock/internal/model"
)

// Collector はPrometheusメトリクスを収集する実装。
// export.Observer、studio.IntakeObserver、subscription.Observerを満たす。
type Collector struct {
	exports        *prometheus.CounterVec
	exportDuration prometheus.Histogram
	intakes        *prometheus.CounterVec
	subscriptions  *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postmock_export_total",
			Help: "プラットフォーム・結果別のPNGエクスポート数",
		}, []string{"platform", "result"}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "postmock_export_duration_seconds",
			Help:    "PNGエクスポートの所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		intakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postmock_image_intake_total",
			Help: "取り込み元・結果別の画像取り込み数",
		}, []string{"source", "result"}),
		subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postmock_subscription_total",
			Help: "結果別のニュースレター登録数",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postmock_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.exports,
		c.exportDuration,
		c.intakes,
		c.subscriptions,
		c.httpStatus,
	)

	return c
}

// ObserveExport はエクスポートの結果と所要時間を記録する。
func (c *Collector) ObserveExport(platform string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.exports.WithLabelValues(platform, result).Inc()
	c.exportDuration.Observe(duration.Seconds())
}

// ObserveIntake は画像取り込みの結果を記録する。
// 失敗時はAPIErrorのコードを小文字化せずそのまま結果ラベルに使う。
func (c *Collector) ObserveIntake(source string, err error) {
	c.intakes.WithLabelValues(source, intakeResult(err)).Inc()
}

// ObserveSubscription はニュースレター登録の結果を記録する。
func (c *Collector) ObserveSubscription(outcome string) {
	c.subscriptions.WithLabelValues(outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func intakeResult(err error) string {
	if err == nil {
		return "success"
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return "error"
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
