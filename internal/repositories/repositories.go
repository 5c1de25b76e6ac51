package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/edihub/services/exchange/internal/models"
)

// InterchangeRepository provides access to archived interchanges
type InterchangeRepository struct {
	db         *gorm.DB // Write database
	readOnlyDB *gorm.DB // Read-only database
}

// NewInterchangeRepository creates a new interchange repository
func NewInterchangeRepository(db *gorm.DB, readOnlyDB *gorm.DB) *InterchangeRepository {
	return &InterchangeRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Create archives a generated interchange
func (r *InterchangeRepository) Create(ctx context.Context, interchange *models.Interchange) error {
	if err := r.db.WithContext(ctx).Create(interchange).Error; err != nil {
		return errors.Wrap(err, "failed to archive interchange")
	}
	return nil
}

// GetByDocumentNumber gets an archived interchange by its document number
func (r *InterchangeRepository) GetByDocumentNumber(ctx context.Context, number string) (*models.Interchange, error) {
	var interchange models.Interchange
	// Use read-only DB for reads
	err := r.readOnlyDB.WithContext(ctx).Where("document_number = ?", number).First(&interchange).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get interchange by document number")
	}
	return &interchange, nil
}

// ListByPONumber lists archived interchanges referencing a purchase order
func (r *InterchangeRepository) ListByPONumber(ctx context.Context, poNumber string, limit int) ([]models.Interchange, error) {
	var interchanges []models.Interchange
	err := r.readOnlyDB.WithContext(ctx).
		Where("po_number = ?", poNumber).
		Order("created_at DESC").
		Limit(limit).
		Find(&interchanges).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list interchanges by PO number")
	}
	return interchanges, nil
}

// GetUnindexed gets interchanges not yet indexed in Elasticsearch
func (r *InterchangeRepository) GetUnindexed(ctx context.Context, limit int) ([]models.Interchange, error) {
	var interchanges []models.Interchange
	err := r.readOnlyDB.WithContext(ctx).
		Where("indexed = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&interchanges).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get unindexed interchanges")
	}
	return interchanges, nil
}

// MarkIndexed marks an interchange as indexed
func (r *InterchangeRepository) MarkIndexed(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.Interchange{}).
		Where("id = ?", id).
		Update("indexed", true).Error
	if err != nil {
		return errors.Wrap(err, "failed to mark interchange as indexed")
	}
	return nil
}
