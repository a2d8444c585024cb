package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/labels"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/snapshot"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu    sync.Mutex
	table *entity.Table
	err   error
}

func (m *memStore) Load(context.Context) (*entity.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	t := m.table.Clone()
	for i := range t.Lines {
		t.Lines[i].Row = i
	}
	return t, nil
}

func (m *memStore) Save(_ context.Context, t *entity.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table = t.Clone()
	return nil
}

type seqIssuer struct {
	mu sync.Mutex
	n  int
}

func (s *seqIssuer) Issue(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("QR%014d", s.n), nil
}

type okLabels struct{}

func (okLabels) Issue(_ context.Context, _ entity.Label, count int) labels.Report {
	return labels.Report{Requested: count, Printed: count}
}

type fakePDF struct{}

func (fakePDF) GenerateLabelPDF(_ context.Context, l entity.Label) ([]byte, error) {
	return []byte("%PDF-1.3 " + l.Identifier), nil
}

func newTestApp(store *memStore, secret string) *fiber.App {
	uc := inventory.NewLedgerUseCase(
		snapshot.NewRunner(store), store, &seqIssuer{}, okLabels{},
		inventory.WithPDFGenerator(fakePDF{}),
	)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{LedgerUC: uc, JWTSecret: secret})
	return app
}

func stocked() *memStore {
	t := entity.NewTable()
	t.Lines = []entity.StockLine{
		{ArticleCode: "A100", Description: "Widget", AvailableQuantity: decimal.NewFromInt(10), Identifier: "QRA0000000000000"},
		{ArticleCode: "B200", Description: "Bolt", AvailableQuantity: decimal.NewFromInt(5)},
	}
	return &memStore{table: t}
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, header ...string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if len(header) == 1 {
		req.Header.Set("Authorization", header[0])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, b
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_JSONYFormularioConsolidan(t *testing.T) {
	store := &memStore{table: entity.NewTable()}
	app := newTestApp(store, "")

	resp, body := doJSON(t, app, http.MethodPost, "/api/ledger/receipts",
		`{"po":"P1","grn":"G1","article_code":"A100","supplier_batch":"B1","location":"L1","item":"Widget","quantity":10,"print_quantity":"2"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var first dto.ReceiptResponse
	require.NoError(t, json.Unmarshal(body, &first))
	assert.False(t, first.Merged)
	assert.Equal(t, "QR00000000000001", first.Identifier)
	assert.Equal(t, dto.LabelReportResponse{Requested: 2, Printed: 2}, first.Labels)
	assert.Equal(t, 0, first.Line.Index)

	form := url.Values{}
	form.Set("po-number", "P1")
	form.Set("grn-number", "G1")
	form.Set("article-code", "A100")
	form.Set("batch-number", "B2")
	form.Set("location", "L1")
	form.Set("item", "Widget")
	form.Set("quantity", "5")
	form.Set("print-quantity", "1")
	req := httptest.NewRequest(http.MethodPost, "/api/ledger/receipts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp2, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusCreated, resp2.StatusCode)

	var second dto.ReceiptResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&second))
	assert.True(t, second.Merged)
	assert.Empty(t, second.Identifier)
	assert.Equal(t, "B2", second.Line.SupplierBatch)
	assert.True(t, decimal.NewFromInt(15).Equal(second.Line.AvailableQuantity))
}

func TestReceive_CantidadInvalida(t *testing.T) {
	app := newTestApp(&memStore{table: entity.NewTable()}, "")

	resp, body := doJSON(t, app, http.MethodPost, "/api/ledger/receipts",
		`{"article_code":"A100","item":"Widget","quantity":"diez"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"code":"VALIDATION"`)
}

func TestReceive_AlmacenNoDisponible(t *testing.T) {
	store := &memStore{err: errors.Join(domain.ErrStoreUnavailable, errors.New("bloqueado"))}
	app := newTestApp(store, "")

	resp, body := doJSON(t, app, http.MethodPost, "/api/ledger/receipts", `{"quantity":"1"}`)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "STORE_UNAVAILABLE")
}

func TestReceive_ConAutenticacion(t *testing.T) {
	app := newTestApp(&memStore{table: entity.NewTable()}, testJWTSecret)
	payload := `{"article_code":"A100","item":"Widget","quantity":"1"}`

	resp, _ := doJSON(t, app, http.MethodPost, "/api/ledger/receipts", payload)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/ledger/receipts", payload, tokenForRole(t, pkgjwt.RoleOperator))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/ledger/lines", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "las consultas no requieren token")
}

// ──────────────────────────────────────────────────────────────────────────────
// Salidas
// ──────────────────────────────────────────────────────────────────────────────

func TestDispatch_ResultadoAgregado(t *testing.T) {
	store := stocked()
	app := newTestApp(store, "")

	resp, body := doJSON(t, app, http.MethodPost, "/api/ledger/dispatches",
		`{"rows":[0,"1",7],"adjust":{"0":4,"1":null}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out dto.DispatchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.Adjusted)
	assert.Equal(t, 1, out.Removed)
	assert.Equal(t, 1, out.Skipped)
	require.Len(t, out.Results, 3)
	require.NotNil(t, out.Results[0].Remaining)
	assert.True(t, decimal.NewFromInt(6).Equal(*out.Results[0].Remaining))
	assert.Equal(t, "skipped", out.Results[2].Status)

	require.Len(t, store.table.Lines, 1)
	assert.Equal(t, "A100", store.table.Lines[0].ArticleCode)
}

func TestDispatch_SinFilas(t *testing.T) {
	app := newTestApp(stocked(), "")

	resp, body := doJSON(t, app, http.MethodPost, "/api/ledger/dispatches", `{"rows":[]}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out dto.DispatchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas y etiquetas
// ──────────────────────────────────────────────────────────────────────────────

func TestSearch(t *testing.T) {
	app := newTestApp(stocked(), "")

	resp, body := doJSON(t, app, http.MethodGet, "/api/ledger/search?q=BOLT", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.StockLineListResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, 1, out.Total)
	assert.Equal(t, "B200", out.Lines[0].ArticleCode)
	assert.Equal(t, 1, out.Lines[0].Index)
}

func TestList_Paginado(t *testing.T) {
	app := newTestApp(stocked(), "")

	resp, body := doJSON(t, app, http.MethodGet, "/api/ledger/lines?limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.StockLineListResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 2, out.Total)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, "B200", out.Lines[0].ArticleCode)
	require.NotNil(t, out.Page)
	assert.Equal(t, 1, out.Page.Offset)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/ledger/lines?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReprintYPDF(t *testing.T) {
	app := newTestApp(stocked(), "")

	resp, body := doJSON(t, app, http.MethodPost, "/api/labels/QRA0000000000000/reprint?copies=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var rep dto.LabelReportResponse
	require.NoError(t, json.Unmarshal(body, &rep))
	assert.Equal(t, 2, rep.Printed)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/labels/NOEXISTE/reprint", `{"copies":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/labels/QRA0000000000000/pdf", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(body), "%PDF-"))
}
