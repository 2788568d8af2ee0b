package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retainhq/retain-backend/internal/model"
)

var ErrDatasetNotFound = errors.New("external dataset not found")

// ExternalDatasetRepository handles registered external data sources.
type ExternalDatasetRepository struct {
	pool *pgxpool.Pool
}

// NewExternalDatasetRepository creates a new ExternalDatasetRepository.
func NewExternalDatasetRepository(pool *pgxpool.Pool) *ExternalDatasetRepository {
	return &ExternalDatasetRepository{pool: pool}
}

const datasetColumns = `id, name, source_url, data_type, metadata, last_updated, is_active, created_at, updated_at`

func scanDataset(row interface{ Scan(...any) error }) (*model.ExternalDataset, error) {
	d := &model.ExternalDataset{}
	var metadataRaw []byte
	err := row.Scan(&d.ID, &d.Name, &d.SourceURL, &d.DataType, &metadataRaw,
		&d.LastUpdated, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDatasetNotFound
		}
		return nil, err
	}
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &d.Metadata); err != nil {
			return nil, fmt.Errorf("decode dataset metadata: %w", err)
		}
	}
	return d, nil
}

// GetByID retrieves a dataset by ID.
func (r *ExternalDatasetRepository) GetByID(ctx context.Context, id int) (*model.ExternalDataset, error) {
	return scanDataset(r.pool.QueryRow(ctx,
		`SELECT `+datasetColumns+` FROM external_datasets WHERE id = $1`, id))
}

// ListActive retrieves active datasets, most recently synced first.
func (r *ExternalDatasetRepository) ListActive(ctx context.Context) ([]model.ExternalDataset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+datasetColumns+` FROM external_datasets
		 WHERE is_active = TRUE
		 ORDER BY last_updated DESC NULLS LAST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []model.ExternalDataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, *d)
	}
	if datasets == nil {
		datasets = []model.ExternalDataset{}
	}
	return datasets, rows.Err()
}

// UpdateSyncState stores refreshed metadata and stamps last_updated.
func (r *ExternalDatasetRepository) UpdateSyncState(ctx context.Context, d *model.ExternalDataset) error {
	var metadataRaw []byte
	var err error
	if d.Metadata != nil {
		if metadataRaw, err = json.Marshal(d.Metadata); err != nil {
			return fmt.Errorf("encode dataset metadata: %w", err)
		}
	}

	return r.pool.QueryRow(ctx,
		`UPDATE external_datasets
		 SET metadata = $1, last_updated = NOW(), updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2
		 RETURNING last_updated, updated_at`,
		metadataRaw, d.ID,
	).Scan(&d.LastUpdated, &d.UpdatedAt)
}
