// Package contact defines the contact aggregate and its wire representation
// exchanged over the bridge.
package contact

// Item is one labeled value in a repeatable collection (a phone, an email,
// a website, ...). Identifier is set only for items read from the store.
type Item struct {
	Identifier string
	Label      string
	Value      string
}

// PostalAddress is one labeled structured address. FormattedAddress is
// derived by the store and read-only on decode.
type PostalAddress struct {
	Identifier       string
	Label            string
	Street           string
	Neighborhood     string
	City             string
	Region           string
	Postcode         string
	Country          string
	FormattedAddress string
}

// Contact is the aggregate root. Identifier is the store-assigned record id,
// empty for contacts that have not been persisted yet. Avatar is nil when no
// photo was requested and an empty slice when requested but unavailable.
// AccountType and AccountName are provenance metadata from the source store
// and are never written back.
type Contact struct {
	Identifier  string
	DisplayName string

	GivenName  string
	MiddleName string
	FamilyName string
	Prefix     string
	Suffix     string

	PhoneticGivenName  string
	PhoneticMiddleName string
	PhoneticFamilyName string
	PhoneticName       string

	Nickname string
	Note     string
	SIP      string

	Company    string
	JobTitle   string
	Department string

	Birthday string

	AccountType string
	AccountName string

	Avatar []byte

	Phones                  []Item
	Emails                  []Item
	Dates                   []Item
	Websites                []Item
	InstantMessageAddresses []Item
	Relations               []Item
	PostalAddresses         []PostalAddress

	Labels []string
}
