package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
)

func TestRecorder(t *testing.T) {
	m := metrics.New("stock_ledger")

	m.ReceiptApplied(true)
	m.ReceiptApplied(false)
	m.ReceiptApplied(false)
	m.DispatchTarget("removed")
	m.IdentifierIssued()
	m.LabelPrinted(true)
	m.LabelPrinted(false)
	m.StoreError("unavailable")
	m.ObserveMutation("receipt", 120*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReceiptsTotal.WithLabelValues("merged")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReceiptsTotal.WithLabelValues("appended")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DispatchTargets.WithLabelValues("removed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IdentifiersIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LabelsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrors.WithLabelValues("unavailable")))
}

func TestMiddlewareYHandler(t *testing.T) {
	m := metrics.New("stock_ledger")
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/ledger/lines/:x", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/ledger/lines/7", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/ledger/lines/:x", "200")))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "stock_ledger_http_requests_total")
}
