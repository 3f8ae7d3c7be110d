package kind

// Kind classifies a place search request by the retrieval path it needs.
type Kind string

// Search kind constants.
const (
	// AIQuery resolves free text through the recommender.
	AIQuery  Kind = "AI_QUERY"
	Category Kind = "CATEGORY"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == AIQuery || k == Category
}
