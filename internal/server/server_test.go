package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespro-go/internal/advisor"
	"salespro-go/internal/config"
	"salespro-go/internal/logger"
	"salespro-go/internal/processor"
	"salespro-go/internal/store"
	"salespro-go/internal/testutil"
)

func init() {
	logger.SetOutput(&bytes.Buffer{})
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	return New(cfg, store.New(time.Hour), processor.New(cfg, advisor.Mock{})).Routes()
}

func multipartBody(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func uploadSample(t *testing.T, h http.Handler) string {
	t.Helper()
	data, err := testutil.SampleXLSX()
	require.NoError(t, err)
	body, ct := multipartBody(t, "sales.xlsx", data, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", ct)
	rec := do(h, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"Филиал Север", "Филиал Юг"}, got.Branches)
	assert.Equal(t, 1, got.Skipped)
	require.NotEmpty(t, got.UploadID)
	return got.UploadID
}

func branchURL(id, branch, suffix string) string {
	return "/api/uploads/" + id + "/branches/" + url.PathEscape(branch) + suffix
}

func TestHealthz(t *testing.T) {
	rec := do(newTestServer(t), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestIndex(t *testing.T) {
	rec := do(newTestServer(t), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `enctype="multipart/form-data"`)
}

func TestUpload_Rejects(t *testing.T) {
	h := newTestServer(t)

	t.Run("not a workbook", func(t *testing.T) {
		body, ct := multipartBody(t, "sales.xlsx", []byte("garbage"), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", ct)
		assert.Equal(t, http.StatusBadRequest, do(h, req).Code)
	})

	t.Run("wrong extension", func(t *testing.T) {
		body, ct := multipartBody(t, "sales.csv", []byte("a,b"), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", ct)
		assert.Equal(t, http.StatusBadRequest, do(h, req).Code)
	})

	t.Run("no file field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", strings.NewReader("x=1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.Equal(t, http.StatusBadRequest, do(h, req).Code)
	})
}

func TestBranches(t *testing.T) {
	h := newTestServer(t)
	id := uploadSample(t, h)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/uploads/"+id+"/branches", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"branches":["Филиал Север","Филиал Юг"]}`, rec.Body.String())

	rec = do(h, httptest.NewRequest(http.MethodGet, "/api/uploads/nope/branches", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBranchReport(t *testing.T) {
	h := newTestServer(t)
	id := uploadSample(t, h)

	rec := do(h, httptest.NewRequest(http.MethodGet, branchURL(id, "Филиал Север", ""), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res processor.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Филиал Север", res.Report.Branch)
	assert.Equal(t, 700.0, res.Report.Progress.Fact)
	assert.Equal(t, 5000.0, res.Report.Progress.Plan)
	assert.NotEmpty(t, res.Actions)
	assert.Empty(t, res.Advice)

	rec = do(h, httptest.NewRequest(http.MethodGet, branchURL(id, "Филиал Север", "?plan=abc"), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, httptest.NewRequest(http.MethodGet, branchURL(id, "Филиал Запад", ""), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdvice(t *testing.T) {
	h := newTestServer(t)
	id := uploadSample(t, h)

	rec := do(h, httptest.NewRequest(http.MethodPost, branchURL(id, "Филиал Юг", "/advice"), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res processor.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "mock", res.Provider)
	assert.Contains(t, res.Advice, "Опасно")
}

func TestCharts(t *testing.T) {
	h := newTestServer(t)
	id := uploadSample(t, h)

	rec := do(h, httptest.NewRequest(http.MethodGet, branchURL(id, "Филиал Север", "/charts/trend.png"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(h, httptest.NewRequest(http.MethodGet, branchURL(id, "Филиал Север", "/charts/channels.svg"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	for _, path := range []string{"/charts/radar.png", "/charts/trend.gif"} {
		rec = do(h, httptest.NewRequest(http.MethodGet, branchURL(id, "Филиал Север", path), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), path)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), path)
		assert.Contains(t, body["error"], "unknown chart", path)
	}
}

func TestHTMLReport(t *testing.T) {
	h := newTestServer(t)
	id := uploadSample(t, h)

	rec := do(h, httptest.NewRequest(http.MethodGet, branchURL(id, "Филиал Север", "/report?ai=1"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<h1>Филиал Север</h1>")
	assert.Contains(t, rec.Body.String(), "Рекомендации (mock)")
}

func TestOneShotReport(t *testing.T) {
	h := newTestServer(t)
	data, err := testutil.SampleXLSX()
	require.NoError(t, err)
	body, ct := multipartBody(t, "sales.xlsx", data, map[string]string{"branch": "Филиал Юг", "plan": "1000"})

	req := httptest.NewRequest(http.MethodPost, "/report", body)
	req.Header.Set("Content-Type", ct)
	rec := do(h, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "<h1>Филиал Юг</h1>")
	assert.NotContains(t, rec.Body.String(), "Рекомендации")
}

func TestUpload_NonFiniteCellIsSkipped(t *testing.T) {
	h := newTestServer(t)
	fact := testutil.FactSheet()
	fact.Rows[2][2] = "nan"
	data, err := testutil.BuildXLSX(fact, testutil.PlanSheet(), testutil.StockSheet())
	require.NoError(t, err)
	body, ct := multipartBody(t, "sales.xlsx", data, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", ct)
	rec := do(h, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var up uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &up))
	assert.Equal(t, 2, up.Skipped)

	rec = do(h, httptest.NewRequest(http.MethodGet, branchURL(up.UploadID, "Филиал Север", ""), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var res processor.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 600.0, res.Report.Progress.Fact)
}
