// Package store defines the vocabulary shared with the device contact
// store: denormalized records, queries, and batch operations.
package store

// Kind tags one denormalized data row with its record family. The zero
// value marks rows carrying only a contact identifier (identifier scans).
type Kind int

const (
	KindUnknown Kind = iota
	KindName
	KindNickname
	KindNote
	KindSIP
	KindPhone
	KindEmail
	KindOrganization
	KindPostal
	KindEvent
	KindIM
	KindRelation
	KindWebsite
	KindGroupMembership
	KindPhoto
)

var kindNames = map[Kind]string{
	KindName:            "name",
	KindNickname:        "nickname",
	KindNote:            "note",
	KindSIP:             "sip",
	KindPhone:           "phone",
	KindEmail:           "email",
	KindOrganization:    "organization",
	KindPostal:          "postal",
	KindEvent:           "event",
	KindIM:              "im",
	KindRelation:        "relation",
	KindWebsite:         "website",
	KindGroupMembership: "group_membership",
	KindPhoto:           "photo",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind resolves a stored kind name. Unknown names report ok=false so
// the caller can skip rows written by newer schema revisions.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// Record is one denormalized row read from the store, tagged with its kind.
// Only the columns belonging to the tagged kind are populated; the rest stay
// at their zero values.
type Record struct {
	ContactID   string
	Kind        Kind
	RowID       string
	DisplayName string
	AccountType string
	AccountName string

	// Structured name columns.
	GivenName          string
	MiddleName         string
	FamilyName         string
	Prefix             string
	Suffix             string
	PhoneticGivenName  string
	PhoneticMiddleName string
	PhoneticFamilyName string
	PhoneticName       string

	// Labeled-value columns (phone, email, event, IM, relation, website)
	// and the scalar value kinds (nickname, note, sip).
	Value       string
	TypeCode    int
	CustomLabel string

	// Organization columns.
	Company    string
	JobTitle   string
	Department string

	// Postal address columns.
	Street           string
	Neighborhood     string
	City             string
	Region           string
	Postcode         string
	Country          string
	FormattedAddress string

	// Group membership column.
	GroupID string
}
