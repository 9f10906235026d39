package model

import "context"

// CategoryLister lists the dataset groupings (areas) the backend knows about.
type CategoryLister interface {
	Areas(ctx context.Context) ([]string, error)
}

// DatasetUploader ingests a new spreadsheet dataset.
type DatasetUploader interface {
	Upload(ctx context.Context, file DatasetFile) error
}

// Querier resolves free-text queries into a result.
type Querier interface {
	Query(ctx context.Context, text string) (QueryResult, error)
}

// AnalyticsAPI is the full backend contract consumed by the session controller.
type AnalyticsAPI interface {
	CategoryLister
	DatasetUploader
	Querier
}
