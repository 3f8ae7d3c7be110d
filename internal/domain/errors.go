package domain

import "errors"

var (
	// ErrInvalidParameter signals a search request that fails validation.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupportedSearchType signals that no strategy is registered for a request kind.
	ErrUnsupportedSearchType = errors.New("unsupported search type")
	// ErrUpstream signals a failed or timed out call to the recommender, the place store
	// or one of the enrichment lookups.
	ErrUpstream = errors.New("upstream failure")
)
