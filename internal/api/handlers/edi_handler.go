package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/edihub/services/exchange/internal/models"
	"example.com/edihub/services/exchange/internal/tracing"
	"example.com/edihub/services/exchange/internal/x12"
)

// Exchange is the service surface the HTTP layer depends on.
type Exchange interface {
	Validate(input, format string, dialect x12.Dialect) x12.Result
	ParsePurchaseOrder(input, format string, dialect x12.Dialect) (*models.PurchaseOrder, x12.Result, error)
	GenerateASN(ctx context.Context, po *models.PurchaseOrder, dialect x12.Dialect) (*x12.ASNResult, error)
	GenerateInvoice(ctx context.Context, asn *models.ASNRecord, po *models.PurchaseOrder, dialect x12.Dialect) (*x12.InvoiceResult, error)
	GetInterchange(ctx context.Context, documentNumber string) (*models.Interchange, error)
	SearchInterchanges(ctx context.Context, poNumber string) ([]map[string]interface{}, error)
}

// EDIHandler handles EDI document HTTP requests
type EDIHandler struct {
	exchange Exchange
	tracer   tracing.Tracer
}

// NewEDIHandler creates a new EDI handler
func NewEDIHandler(exchange Exchange, tracer tracing.Tracer) *EDIHandler {
	return &EDIHandler{
		exchange: exchange,
		tracer:   tracer,
	}
}

// GenerateASNRequest carries a purchase order in typed or raw X12 form
type GenerateASNRequest struct {
	PO          *models.PurchaseOrder `json:"po"`
	X12         string                `json:"x12"`
	VICSVersion string                `json:"vicsVersion"`
}

// GenerateInvoiceRequest pairs an ASN with its purchase order
type GenerateInvoiceRequest struct {
	ASN         *models.ASNRecord     `json:"asn"`
	PO          *models.PurchaseOrder `json:"po"`
	X12         string                `json:"x12"`
	VICSVersion string                `json:"vicsVersion"`
}

// ValidateRequest carries raw input for structural validation
type ValidateRequest struct {
	Input       string `json:"input"`
	Format      string `json:"format"`
	VICSVersion string `json:"vicsVersion"`
}

// ConvertRequest carries one side of the segment/JSON conversion
type ConvertRequest struct {
	X12      string        `json:"x12"`
	Segments []x12.Segment `json:"segments"`
}

// HandleGenerateASN generates an 856 ASN from a purchase order
func (h *EDIHandler) HandleGenerateASN(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-generate-856")
	defer h.tracer.EndTransaction(txn)

	var req GenerateASNRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	dialect, known := x12.ParseDialect(req.VICSVersion)
	h.tracer.AddAttribute(txn, "dialect", string(dialect))
	if !known && req.VICSVersion != "" {
		log.Warn().Str("vics_version", req.VICSVersion).Msg("Unrecognized VICS version, defaulting to 4010")
	}

	po, resolveErr := h.resolvePO(&req)
	if resolveErr != nil {
		h.tracer.RecordError(txn, resolveErr)
		c.JSON(http.StatusBadRequest, gin.H{"error": resolveErr.Error(), "success": false})
		return
	}

	result, err := h.exchange.GenerateASN(c.Request.Context(), po, dialect)
	if err != nil {
		h.tracer.RecordError(txn, err)
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":       fmt.Sprintf("856 ASN (VICS %s)", dialect),
		"json":        result.Record,
		"x12":         result.X12,
		"success":     true,
		"message":     fmt.Sprintf("ASN created successfully using VICS %s", dialect),
		"vicsVersion": dialect,
	})
}

// HandleGenerateInvoice generates an 810 invoice from an ASN/PO pair
func (h *EDIHandler) HandleGenerateInvoice(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-generate-810")
	defer h.tracer.EndTransaction(txn)

	var req GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	dialect, _ := x12.ParseDialect(req.VICSVersion)
	h.tracer.AddAttribute(txn, "dialect", string(dialect))

	po := req.PO
	if po == nil && req.X12 != "" {
		parsed, _, err := h.exchange.ParsePurchaseOrder(req.X12, "x12", dialect)
		if err != nil {
			h.tracer.RecordError(txn, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
			return
		}
		po = parsed
	}

	result, err := h.exchange.GenerateInvoice(c.Request.Context(), req.ASN, po, dialect)
	if err != nil {
		h.tracer.RecordError(txn, err)
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":       fmt.Sprintf("810 Invoice (VICS %s)", dialect),
		"json":        result.Record,
		"x12":         result.X12,
		"success":     true,
		"message":     fmt.Sprintf("Invoice created successfully using VICS %s", dialect),
		"vicsVersion": dialect,
	})
}

// HandleValidate runs structural validation without generating anything
func (h *EDIHandler) HandleValidate(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-validate")
	defer h.tracer.EndTransaction(txn)

	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	dialect, _ := x12.ParseDialect(req.VICSVersion)
	result := h.exchange.Validate(req.Input, req.Format, dialect)

	c.JSON(http.StatusOK, gin.H{
		"valid":    result.Valid,
		"errors":   result.Errors,
		"warnings": result.Warnings,
		"success":  true,
	})
}

// HandleConvert converts between raw X12 text and the segment/JSON shape,
// applying no validation in either direction.
func (h *EDIHandler) HandleConvert(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-convert")
	defer h.tracer.EndTransaction(txn)

	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	if req.X12 != "" {
		segments, err := x12.Tokenize(req.X12)
		if err != nil {
			h.tracer.RecordError(txn, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"segments": segments, "success": true})
		return
	}

	if len(req.Segments) > 0 {
		c.JSON(http.StatusOK, gin.H{"x12": x12.Untokenize(req.Segments), "success": true})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "provide either x12 text or a segments array", "success": false})
}

// HandleGetInterchange returns an archived interchange by document number
func (h *EDIHandler) HandleGetInterchange(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-get-interchange")
	defer h.tracer.EndTransaction(txn)

	interchange, err := h.exchange.GetInterchange(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "success": false})
		return
	}

	c.JSON(http.StatusOK, interchange)
}

// HandleSearchInterchanges lists archived interchanges for a purchase order
func (h *EDIHandler) HandleSearchInterchanges(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-search-interchanges")
	defer h.tracer.EndTransaction(txn)

	poNumber := c.Query("po")
	if poNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'po' is required", "success": false})
		return
	}

	docs, err := h.exchange.SearchInterchanges(c.Request.Context(), poNumber)
	if err != nil {
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": docs, "success": true})
}

// resolvePO prefers the typed record and falls back to parsing raw X12.
func (h *EDIHandler) resolvePO(req *GenerateASNRequest) (*models.PurchaseOrder, error) {
	if req.PO != nil {
		return req.PO, nil
	}
	if req.X12 == "" {
		return nil, fmt.Errorf("request carries neither a typed PO nor X12 text")
	}
	dialect, _ := x12.ParseDialect(req.VICSVersion)
	po, _, err := h.exchange.ParsePurchaseOrder(req.X12, "x12", dialect)
	return po, err
}

// statusFor maps codec errors to HTTP statuses: bad documents are client
// errors, everything else is a server error.
func statusFor(err error) int {
	switch err.(type) {
	case *x12.ValidationError, *x12.ReconciliationError, *x12.FormatError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RegisterRoutes registers the handler's routes
func (h *EDIHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/generate-856", h.HandleGenerateASN)
	api.POST("/generate-810", h.HandleGenerateInvoice)
	api.POST("/validate", h.HandleValidate)
	api.POST("/convert", h.HandleConvert)
	api.GET("/interchanges/:number", h.HandleGetInterchange)
	api.GET("/interchanges", h.HandleSearchInterchanges)
}
