package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/placesearch/internal/domain"
	"github.com/kailas-cloud/placesearch/internal/domain/geo"
	"github.com/kailas-cloud/placesearch/internal/domain/search/kind"
)

// MaxQueryLength is the maximum allowed free-text query length in characters.
const MaxQueryLength = 200

// Params holds the raw, unvalidated inputs of a place search.
type Params struct {
	Query       string
	Category    string
	Lat         *float64
	Lng         *float64
	RequesterID *int64 // nil for anonymous callers
	Credential  string // optional recommender override credential
}

// Context is a validated, classified place search. It is never mutated after New.
type Context struct {
	query       string
	category    string
	lat         float64
	lng         float64
	requesterID *int64
	credential  string
	kind        kind.Kind
}

// New validates the raw parameters and classifies the request.
// Exactly one of query and category must be non-blank, and both coordinates must be
// present and in range. Every failure wraps domain.ErrInvalidParameter.
func New(p Params) (Context, error) {
	query := strings.TrimSpace(p.Query)
	category := strings.TrimSpace(p.Category)

	hasQuery := query != ""
	hasCategory := category != ""

	if hasQuery && hasCategory {
		return Context{}, fmt.Errorf("%w: query and category are mutually exclusive", domain.ErrInvalidParameter)
	}
	if !hasQuery && !hasCategory {
		return Context{}, fmt.Errorf("%w: query or category is required", domain.ErrInvalidParameter)
	}
	if p.Lat == nil || p.Lng == nil {
		return Context{}, fmt.Errorf("%w: lat and lng are required", domain.ErrInvalidParameter)
	}
	if !geo.ValidateCoordinates(*p.Lat, *p.Lng) {
		return Context{}, fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidParameter)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Context{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidParameter, MaxQueryLength)
	}

	k := kind.Category
	if hasQuery {
		k = kind.AIQuery
	}

	var requester *int64
	if p.RequesterID != nil {
		id := *p.RequesterID
		requester = &id
	}

	return Context{
		query:       query,
		category:    category,
		lat:         *p.Lat,
		lng:         *p.Lng,
		requesterID: requester,
		credential:  strings.TrimSpace(p.Credential),
		kind:        k,
	}, nil
}

// Query returns the trimmed free-text query (empty for category searches).
func (c *Context) Query() string { return c.query }

// Category returns the trimmed category (empty for free-text searches).
func (c *Context) Category() string { return c.category }

// Lat returns the center latitude.
func (c *Context) Lat() float64 { return c.lat }

// Lng returns the center longitude.
func (c *Context) Lng() float64 { return c.lng }

// Requester returns a copy of the requester pointer, nil for anonymous callers.
func (c *Context) Requester() *int64 {
	if c.requesterID == nil {
		return nil
	}
	id := *c.requesterID
	return &id
}

// Credential returns the recommender override credential, empty when absent.
func (c *Context) Credential() string { return c.credential }

// Kind returns the request classification.
func (c *Context) Kind() kind.Kind { return c.kind }
