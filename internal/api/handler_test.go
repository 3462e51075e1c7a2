package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ingest/internal/models"
	"github.com/insightdelivered/statement-ingest/internal/pipeline"
)

const capitecCSV = `Date,Description,Money In,Money Out,Fee,Balance
01/02/2024,Salary Deposit,5000.00,,,5000.00
02/02/2024,Grocery Store,,-250.00,-1.50,4748.50
`

func newTestApp() *fiber.App {
	app := fiber.New()
	h := &Handler{Pipeline: pipeline.New(nil)}
	h.Register(app)
	return app
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, resp *http.Response) IngestResponse {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out IngestResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestHandleIngest(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(uploadRequest(t, "statement.csv", []byte(capitecCSV)), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeResponse(t, resp)
	assert.True(t, out.Success)
	assert.Equal(t, models.BankCapitec, out.Bank)
	assert.Equal(t, 2, out.Count)
	require.Len(t, out.Transactions, 2)
	assert.Equal(t, "Salary Deposit", out.Transactions[0].Description)
	assert.Contains(t, out.CSV, "date,description,amount")
	assert.Contains(t, out.CSV, "Grocery Store")
}

func TestHandleIngest_NoFile(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := decodeResponse(t, resp)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
	// Clients always get a transactions array, never null.
	assert.NotNil(t, out.Transactions)
}

func TestHandleIngest_EmptyUpload(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(uploadRequest(t, "empty.csv", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleIngest_UnparsableUpload(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(uploadRequest(t, "scan.pdf", []byte("%PDF-1.4 garbage")), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), Version)
}
