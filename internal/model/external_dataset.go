package model

import "time"

// ExternalDataset is a registered third-party data source that can be
// synchronized into the platform.
type ExternalDataset struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	SourceURL   string         `json:"source_url"`
	DataType    string         `json:"data_type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	LastUpdated *time.Time     `json:"last_updated"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SyncDatasetRequest selects which dataset to synchronize.
type SyncDatasetRequest struct {
	DatasetID int `json:"dataset_id" binding:"required"`
}
