package catalog

import "context"

// CategorySource lists the distinct place categories.
type CategorySource interface {
	Categories(ctx context.Context) ([]string, error)
}

// CategoryCache keeps the category list and the per-category search results.
type CategoryCache interface {
	Categories(ctx context.Context) ([]string, bool, error)
	PutCategories(ctx context.Context, categories []string) error
	InvalidateCategories(ctx context.Context) error
	InvalidateCategory(ctx context.Context, category string) (int64, error)
}
