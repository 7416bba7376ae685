package store

import "context"

// Projection selects the column set a query materializes.
type Projection int

const (
	// ProjectionFull returns every data kind for matching contacts.
	ProjectionFull Projection = iota
	// ProjectionSummary returns structured-name rows only.
	ProjectionSummary
	// ProjectionIdentifiers returns bare contact identifiers.
	ProjectionIdentifiers
)

// Query selects denormalized rows. At most one of NamePrefix, ContactID,
// Identifiers, and Phone is set; an empty filter matches everything.
type Query struct {
	NamePrefix  string
	ContactID   string
	Identifiers []string
	// Phone requests a digit-normalized reverse lookup.
	Phone string

	Projection       Projection
	OrderByGivenName bool
}

// GroupResolver resolves group identifiers to their display titles.
type GroupResolver interface {
	// GroupTitle returns every title recorded for the group id. Missing
	// groups yield an empty slice, not an error.
	GroupTitle(ctx context.Context, groupID string) ([]string, error)
}

// GroupWriter resolves a title to a group id, creating the group row when
// it does not exist yet.
type GroupWriter interface {
	EnsureGroup(ctx context.Context, title string) (string, error)
}

// Store is the external contact store the core consumes. Implementations
// guarantee ApplyBatch is atomic: either every operation takes effect or
// none does.
type Store interface {
	GroupResolver
	GroupWriter

	QueryRows(ctx context.Context, q Query) ([]Record, error)
	ApplyBatch(ctx context.Context, ops []Operation) error

	// Avatar returns the photo blob for a contact, or nil when the
	// contact has none.
	Avatar(ctx context.Context, identifier string, highRes bool) ([]byte, error)
}
