package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/edihub/services/exchange/config"
	"example.com/edihub/services/exchange/internal/models"
	"example.com/edihub/services/exchange/internal/tracing"
	"example.com/edihub/services/exchange/internal/x12"
)

// Mock exchange service for testing
type MockExchange struct {
	mock.Mock
}

func (m *MockExchange) Validate(input, format string, dialect x12.Dialect) x12.Result {
	args := m.Called(input, format, dialect)
	return args.Get(0).(x12.Result)
}

func (m *MockExchange) ParsePurchaseOrder(input, format string, dialect x12.Dialect) (*models.PurchaseOrder, x12.Result, error) {
	args := m.Called(input, format, dialect)
	po, _ := args.Get(0).(*models.PurchaseOrder)
	return po, args.Get(1).(x12.Result), args.Error(2)
}

func (m *MockExchange) GenerateASN(ctx context.Context, po *models.PurchaseOrder, dialect x12.Dialect) (*x12.ASNResult, error) {
	args := m.Called(ctx, po, dialect)
	result, _ := args.Get(0).(*x12.ASNResult)
	return result, args.Error(1)
}

func (m *MockExchange) GenerateInvoice(ctx context.Context, asn *models.ASNRecord, po *models.PurchaseOrder, dialect x12.Dialect) (*x12.InvoiceResult, error) {
	args := m.Called(ctx, asn, po, dialect)
	result, _ := args.Get(0).(*x12.InvoiceResult)
	return result, args.Error(1)
}

func (m *MockExchange) GetInterchange(ctx context.Context, documentNumber string) (*models.Interchange, error) {
	args := m.Called(ctx, documentNumber)
	interchange, _ := args.Get(0).(*models.Interchange)
	return interchange, args.Error(1)
}

func (m *MockExchange) SearchInterchanges(ctx context.Context, poNumber string) ([]map[string]interface{}, error) {
	args := m.Called(ctx, poNumber)
	docs, _ := args.Get(0).([]map[string]interface{})
	return docs, args.Error(1)
}

func setupRouter(exchange Exchange) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tracer, _ := tracing.NewTracer(config.TracingConfig{})
	router := gin.New()
	NewEDIHandler(exchange, tracer).RegisterRoutes(router)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleGenerateASN(t *testing.T) {
	mockExchange := new(MockExchange)
	mockExchange.On("GenerateASN", mock.Anything, mock.AnythingOfType("*models.PurchaseOrder"), x12.Dialect5010).
		Return(&x12.ASNResult{
			Record: models.ASNRecord{ASNNumber: "ASN00001", PONumber: "PO123456"},
			X12:    "ISA*...~",
		}, nil)

	router := setupRouter(mockExchange)
	w := postJSON(t, router, "/api/generate-856", GenerateASNRequest{
		PO: &models.PurchaseOrder{
			PONumber: "PO123456",
			Items:    []models.LineItem{{SKU: "A", Quantity: 1}},
		},
		VICSVersion: "5010",
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	require.Equal(t, "856 ASN (VICS 5010)", body["title"])
	require.Equal(t, "5010", body["vicsVersion"])
	require.NotEmpty(t, body["x12"])
	mockExchange.AssertExpectations(t)
}

func TestHandleGenerateASNValidationError(t *testing.T) {
	mockExchange := new(MockExchange)
	mockExchange.On("GenerateASN", mock.Anything, mock.Anything, x12.Dialect4010).
		Return(nil, &x12.ValidationError{Messages: []string{"PO number is missing"}})

	router := setupRouter(mockExchange)
	w := postJSON(t, router, "/api/generate-856", GenerateASNRequest{
		PO: &models.PurchaseOrder{Items: []models.LineItem{}},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	require.Equal(t, false, body["success"])
	require.Equal(t, "PO number is missing", body["error"])
}

func TestHandleGenerateASNMissingInput(t *testing.T) {
	router := setupRouter(new(MockExchange))
	w := postJSON(t, router, "/api/generate-856", GenerateASNRequest{})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGenerateInvoiceReconciliationFailure(t *testing.T) {
	mockExchange := new(MockExchange)
	mockExchange.On("GenerateInvoice", mock.Anything, mock.Anything, mock.Anything, x12.Dialect4010).
		Return(nil, &x12.ReconciliationError{SKU: "GHOST"})

	router := setupRouter(mockExchange)
	w := postJSON(t, router, "/api/generate-810", GenerateInvoiceRequest{
		ASN: &models.ASNRecord{Items: []models.ASNItem{{SKU: "GHOST", Qty: 1}}},
		PO:  &models.PurchaseOrder{PONumber: "PO1"},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	require.Equal(t, "SKU GHOST from ASN not found in PO", body["error"])
}

func TestHandleValidate(t *testing.T) {
	mockExchange := new(MockExchange)
	mockExchange.On("Validate", "ISA*...", "x12", x12.Dialect4010).
		Return(x12.Result{Valid: false, Errors: []string{"Missing GS (Functional Group Header) segment"}})

	router := setupRouter(mockExchange)
	w := postJSON(t, router, "/api/validate", ValidateRequest{Input: "ISA*...", Format: "x12"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, false, body["valid"])
	require.Len(t, body["errors"], 1)
}

func TestHandleConvert(t *testing.T) {
	router := setupRouter(new(MockExchange))

	w := postJSON(t, router, "/api/convert", ConvertRequest{X12: "ST*850*0001~BEG*00*SA*PO1~"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Len(t, body["segments"], 2)

	w = postJSON(t, router, "/api/convert", ConvertRequest{
		Segments: []x12.Segment{{Tag: "ST", Elements: []string{"850", "0001"}}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	require.Equal(t, "ST*850*0001~", body["x12"])

	w = postJSON(t, router, "/api/convert", ConvertRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleConvertMalformed(t *testing.T) {
	router := setupRouter(new(MockExchange))

	w := postJSON(t, router, "/api/convert", ConvertRequest{X12: "*no*tag~"})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetInterchange(t *testing.T) {
	mockExchange := new(MockExchange)
	mockExchange.On("GetInterchange", mock.Anything, "ASN00001").
		Return(&models.Interchange{DocumentNumber: "ASN00001", DocumentType: "856"}, nil)

	router := setupRouter(mockExchange)
	req := httptest.NewRequest(http.MethodGet, "/api/interchanges/ASN00001", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, "856", body["document_type"])
}

func TestHandleSearchInterchangesRequiresPO(t *testing.T) {
	router := setupRouter(new(MockExchange))
	req := httptest.NewRequest(http.MethodGet, "/api/interchanges", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
