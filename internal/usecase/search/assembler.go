package search

import (
	"sort"

	"github.com/kailas-cloud/placesearch/internal/domain/geo"
	"github.com/kailas-cloud/placesearch/internal/domain/search/result"
)

// source carries everything known about one place when its result item is built.
type source struct {
	ID             int64
	Name           string
	Thumbnail      string
	Latitude       float64
	Longitude      float64
	Distance       *float64 // meters
	Score          *float64
	AIKeywords     []string
	StoredKeywords []string
	MomentCount    int64
	Bookmarked     bool
}

// assembleRule is one way of turning a source into a result item.
type assembleRule interface {
	name() string
	priority() int
	supports(src *source) bool
	assemble(src *source) result.Item
}

// Assembler picks the first matching rule, lowest priority value first.
type Assembler struct {
	rules []assembleRule
}

// NewAssembler creates an assembler with the AI-aware, distance-aware and generic rules.
func NewAssembler() *Assembler {
	rules := []assembleRule{genericRule{}, distanceRule{}, aiRule{}}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].priority() < rules[j].priority()
	})
	return &Assembler{rules: rules}
}

// Assemble builds the result item for src.
func (a *Assembler) Assemble(src *source) result.Item {
	if r := a.pick(src); r != nil {
		return r.assemble(src)
	}
	return baseItem(src)
}

// pick returns the first rule that supports src, or nil.
func (a *Assembler) pick(src *source) assembleRule {
	for _, r := range a.rules {
		if r.supports(src) {
			return r
		}
	}
	return nil
}

// aiRule handles recommender-ranked places.
type aiRule struct{}

func (aiRule) name() string  { return "ai" }
func (aiRule) priority() int { return 1 }

func (aiRule) supports(src *source) bool {
	return src.Score != nil || len(src.AIKeywords) > 0
}

func (aiRule) assemble(src *source) result.Item {
	item := baseItem(src)
	if src.Score != nil {
		score := *src.Score
		item.SimilarityScore = &score
	}
	return item
}

// distanceRule handles plain geospatial results.
type distanceRule struct{}

func (distanceRule) name() string  { return "distance" }
func (distanceRule) priority() int { return 2 }

func (distanceRule) supports(src *source) bool {
	return src.Distance != nil && src.Score == nil
}

func (distanceRule) assemble(src *source) result.Item {
	return baseItem(src)
}

type genericRule struct{}

func (genericRule) name() string  { return "generic" }
func (genericRule) priority() int { return 999 }

func (genericRule) supports(_ *source) bool { return true }

func (genericRule) assemble(src *source) result.Item { return baseItem(src) }

// baseItem applies the formatting shared by every rule.
func baseItem(src *source) result.Item {
	return result.Item{
		ID:          src.ID,
		Name:        src.Name,
		Thumbnail:   src.Thumbnail,
		Distance:    NormalizeDistance(src.Distance),
		Keywords:    pickKeywords(src.AIKeywords, src.StoredKeywords),
		MomentCount: src.MomentCount,
		Bookmarked:  src.Bookmarked,
		Location:    result.Point(src.Latitude, src.Longitude),
	}
}

// NormalizeDistance converts meters to display units. A nil distance is 0.
func NormalizeDistance(meters *float64) float64 {
	if meters == nil {
		return 0
	}
	return geo.DisplayDistance(*meters)
}

// pickKeywords prefers recommender keywords over the stored ones.
// The result is never nil.
func pickKeywords(ai, stored []string) []string {
	src := stored
	if len(ai) > 0 {
		src = ai
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
