package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/edihub/services/exchange/config"
	"example.com/edihub/services/exchange/internal/cache"
	"example.com/edihub/services/exchange/internal/metrics"
	"example.com/edihub/services/exchange/internal/models"
	"example.com/edihub/services/exchange/internal/repositories"
	"example.com/edihub/services/exchange/internal/search"
	"example.com/edihub/services/exchange/internal/tracing"
	"example.com/edihub/services/exchange/internal/x12"
)

const interchangeCacheTTL = 24 * time.Hour

// interchangeStore is the archive surface the service needs.
type interchangeStore interface {
	Create(ctx context.Context, interchange *models.Interchange) error
	GetByDocumentNumber(ctx context.Context, number string) (*models.Interchange, error)
	ListByPONumber(ctx context.Context, poNumber string, limit int) ([]models.Interchange, error)
	GetUnindexed(ctx context.Context, limit int) ([]models.Interchange, error)
	MarkIndexed(ctx context.Context, id uuid.UUID) error
}

// documentCache is the cache surface the service needs.
type documentCache interface {
	Get(ctx context.Context, key string, value interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// documentIndex is the search surface the service needs.
type documentIndex interface {
	IndexInterchange(ctx context.Context, interchange *models.Interchange) error
	SearchByPONumber(ctx context.Context, poNumber string) ([]map[string]interface{}, error)
}

// ExchangeService handles EDI document generation, archival and lookup
type ExchangeService struct {
	db        *gorm.DB
	store     interchangeStore
	cache     documentCache
	index     documentIndex
	metrics   *metrics.Metrics
	tracer    tracing.Tracer
	generator *x12.Generator
}

// NewExchangeService creates a new exchange service
func NewExchangeService(
	db *gorm.DB,
	readOnlyDB *gorm.DB,
	redisCache *cache.RedisCache,
	elasticClient *search.ElasticClient,
	metricsCollector *metrics.Metrics,
	tracer tracing.Tracer,
	ediCfg config.EDIConfig,
) *ExchangeService {
	svc := &ExchangeService{
		db:      db,
		store:   repositories.NewInterchangeRepository(db, readOnlyDB),
		metrics: metricsCollector,
		tracer:  tracer,
		generator: x12.NewGenerator(x12.GeneratorConfig{
			SenderID:   ediCfg.SenderID,
			ReceiverID: ediCfg.ReceiverID,
			Usage:      ediCfg.Usage,
		}, x12.NewDocumentIDSource()),
	}
	if redisCache != nil {
		svc.cache = redisCache
	}
	if elasticClient != nil {
		svc.index = elasticClient
	}
	return svc
}

// Validate runs structural validation on raw purchase-order input in either
// wire form. Unrecognized formats are reported as an error result, not a
// failure.
func (s *ExchangeService) Validate(input, format string, dialect x12.Dialect) x12.Result {
	switch format {
	case "json":
		return x12.ValidateJSON([]byte(input))
	case "x12", "":
		return x12.ValidateX12(input, dialect)
	default:
		return x12.Result{
			Valid:  false,
			Errors: []string{"Unknown input format: " + format + ` (use "x12" or "json")`},
		}
	}
}

// ParsePurchaseOrder validates raw input and projects it into a canonical
// purchase order. Structural errors block parsing; warnings are returned
// alongside the record.
func (s *ExchangeService) ParsePurchaseOrder(input, format string, dialect x12.Dialect) (*models.PurchaseOrder, x12.Result, error) {
	result := s.Validate(input, format, dialect)
	if !result.Valid {
		return nil, result, &x12.ValidationError{Messages: result.Errors}
	}

	if format == "json" {
		var po models.PurchaseOrder
		if err := json.Unmarshal([]byte(input), &po); err != nil {
			return nil, result, errors.Wrap(err, "failed to decode purchase order")
		}
		return &po, result, nil
	}

	segments, err := x12.Tokenize(input)
	if err != nil {
		return nil, result, err
	}
	return x12.ExtractPurchaseOrder(segments), result, nil
}

// GenerateASN validates a purchase order and emits an 856 interchange. The
// generated document is archived and indexed; archival failures are logged
// and retried by the worker, never surfaced to the caller.
func (s *ExchangeService) GenerateASN(ctx context.Context, po *models.PurchaseOrder, dialect x12.Dialect) (*x12.ASNResult, error) {
	txn := s.tracer.StartTransaction("generate-asn")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "dialect", string(dialect))

	if err := x12.ValidatePurchaseOrder(po); err != nil {
		s.metrics.RecordError("generate_asn")
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	span := s.tracer.StartSpan("emit-856", txn)
	result := s.generator.GenerateASN(po, dialect)
	span.End()

	s.archive(ctx, txn, &models.Interchange{
		ID:             uuid.New(),
		DocumentNumber: result.Record.ASNNumber,
		DocumentType:   "856",
		Dialect:        string(dialect),
		PONumber:       result.Record.PONumber,
		Payload:        result.X12,
		SegmentCount:   strings.Count(result.X12, x12.SegmentTerminator),
	})

	s.metrics.IncrementCounter("asn_generated")
	s.metrics.RecordSuccess("generate_asn")

	log.Info().
		Str("asn_number", result.Record.ASNNumber).
		Str("po_number", result.Record.PONumber).
		Str("dialect", string(dialect)).
		Msg("856 ASN generated")

	return result, nil
}

// GenerateInvoice validates an ASN/PO pair, reconciles the shipped items
// against the order and emits an 810 interchange.
func (s *ExchangeService) GenerateInvoice(ctx context.Context, asn *models.ASNRecord, po *models.PurchaseOrder, dialect x12.Dialect) (*x12.InvoiceResult, error) {
	txn := s.tracer.StartTransaction("generate-invoice")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "dialect", string(dialect))

	if err := x12.ValidateASNRecord(asn); err != nil {
		s.metrics.RecordError("generate_invoice")
		s.tracer.RecordError(txn, err)
		return nil, err
	}
	if err := x12.ValidatePurchaseOrder(po); err != nil {
		s.metrics.RecordError("generate_invoice")
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	span := s.tracer.StartSpan("emit-810", txn)
	result, err := s.generator.GenerateInvoice(asn, po, dialect)
	span.End()

	if err != nil {
		s.metrics.RecordError("generate_invoice")
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	s.archive(ctx, txn, &models.Interchange{
		ID:             uuid.New(),
		DocumentNumber: result.Record.InvoiceNumber,
		DocumentType:   "810",
		Dialect:        string(dialect),
		PONumber:       result.Record.PONumber,
		Payload:        result.X12,
		SegmentCount:   strings.Count(result.X12, x12.SegmentTerminator),
	})

	s.metrics.IncrementCounter("invoice_generated")
	s.metrics.RecordSuccess("generate_invoice")

	log.Info().
		Str("invoice_number", result.Record.InvoiceNumber).
		Str("po_number", result.Record.PONumber).
		Str("dialect", string(dialect)).
		Msg("810 Invoice generated")

	return result, nil
}

// archive persists a generated interchange and tries to index it right away.
// Either step may fail without failing the generation; the worker's
// reconciliation job retries indexing later.
func (s *ExchangeService) archive(ctx context.Context, txn *newrelic.Transaction, interchange *models.Interchange) {
	if s.store == nil {
		return
	}

	span := s.tracer.StartSpan("archive-interchange", txn)
	defer span.End()

	if err := s.store.Create(ctx, interchange); err != nil {
		log.Warn().Err(err).
			Str("document_number", interchange.DocumentNumber).
			Msg("Failed to archive interchange")
		s.tracer.RecordError(txn, err)
		s.metrics.RecordError("archive_interchange")
		return
	}
	s.metrics.RecordSuccess("archive_interchange")

	if s.cache != nil {
		key := cache.GetInterchangeCacheKey(interchange.DocumentNumber)
		if err := s.cache.Set(ctx, key, interchange, interchangeCacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache interchange")
		}
	}

	if s.index != nil {
		if err := s.index.IndexInterchange(ctx, interchange); err != nil {
			log.Warn().Err(err).
				Str("document_number", interchange.DocumentNumber).
				Msg("Failed to index interchange, reconciliation job will retry")
			s.tracer.RecordError(txn, err)
			return
		}
		if err := s.store.MarkIndexed(ctx, interchange.ID); err != nil {
			log.Warn().Err(err).Msg("Failed to mark interchange as indexed")
		}
	}
}

// GetInterchange looks up an archived interchange by document number,
// cache-first.
func (s *ExchangeService) GetInterchange(ctx context.Context, documentNumber string) (*models.Interchange, error) {
	key := cache.GetInterchangeCacheKey(documentNumber)

	if s.cache != nil {
		var cached models.Interchange
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	interchange, err := s.store.GetByDocumentNumber(ctx, documentNumber)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, interchange, interchangeCacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache interchange")
		}
	}

	return interchange, nil
}

// SearchInterchanges finds archived interchanges for a purchase order,
// preferring Elasticsearch and falling back to the archive database.
func (s *ExchangeService) SearchInterchanges(ctx context.Context, poNumber string) ([]map[string]interface{}, error) {
	if s.index != nil {
		docs, err := s.index.SearchByPONumber(ctx, poNumber)
		if err == nil {
			return docs, nil
		}
		log.Warn().Err(err).Msg("Elasticsearch lookup failed, falling back to archive database")
	}

	interchanges, err := s.store.ListByPONumber(ctx, poNumber, 50)
	if err != nil {
		return nil, err
	}

	docs := make([]map[string]interface{}, 0, len(interchanges))
	for _, interchange := range interchanges {
		docs = append(docs, map[string]interface{}{
			"document_number": interchange.DocumentNumber,
			"document_type":   interchange.DocumentType,
			"dialect":         interchange.Dialect,
			"po_number":       interchange.PONumber,
			"payload":         interchange.Payload,
			"created_at":      interchange.CreatedAt,
		})
	}
	return docs, nil
}

// ReconcileArchive retries Elasticsearch indexing for archived interchanges
// that have not been indexed yet. It is the worker's fallback mechanism.
func (s *ExchangeService) ReconcileArchive(ctx context.Context) error {
	if s.index == nil {
		return nil
	}

	txn := s.tracer.StartTransaction("reconcile-archive")
	defer s.tracer.EndTransaction(txn)

	interchanges, err := s.store.GetUnindexed(ctx, 100)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return errors.Wrap(err, "failed to get unindexed interchanges")
	}

	log.Info().Msgf("Found %d unindexed interchanges for reconciliation", len(interchanges))

	for _, interchange := range interchanges {
		if err := s.index.IndexInterchange(ctx, &interchange); err != nil {
			log.Error().Err(err).
				Str("document_number", interchange.DocumentNumber).
				Msg("Failed to index interchange during reconciliation")
			s.tracer.RecordError(txn, err)
			continue
		}
		if err := s.store.MarkIndexed(ctx, interchange.ID); err != nil {
			log.Error().Err(err).
				Str("document_number", interchange.DocumentNumber).
				Msg("Failed to mark interchange as indexed during reconciliation")
			s.tracer.RecordError(txn, err)
		}
	}

	return nil
}

// inboundDocument is the queue message shape: a purchase order in either
// typed or raw X12 form, plus the requested dialect.
type inboundDocument struct {
	PO          *models.PurchaseOrder `json:"po"`
	X12         string                `json:"x12"`
	VICSVersion string                `json:"vicsVersion"`
}

// ProcessInboundDocument handles one queued 850 document: parse, validate,
// generate and archive the ASN.
func (s *ExchangeService) ProcessInboundDocument(ctx context.Context, message *azservicebus.ReceivedMessage, txn *newrelic.Transaction) error {
	var doc inboundDocument
	if err := json.Unmarshal(message.Body, &doc); err != nil {
		return errors.Wrap(err, "failed to unmarshal inbound document")
	}

	dialect, _ := x12.ParseDialect(doc.VICSVersion)

	po := doc.PO
	if po == nil {
		if doc.X12 == "" {
			return errors.New("inbound document carries neither a typed PO nor X12 text")
		}
		parsed, _, err := s.ParsePurchaseOrder(doc.X12, "x12", dialect)
		if err != nil {
			return errors.Wrap(err, "failed to parse inbound 850")
		}
		po = parsed
	}

	result, err := s.GenerateASN(ctx, po, dialect)
	if err != nil {
		return errors.Wrap(err, "failed to generate ASN for inbound document")
	}

	log.Info().
		Str("message_id", message.MessageID).
		Str("asn_number", result.Record.ASNNumber).
		Msg("Inbound document processed")

	return nil
}
