package store

// Column names used in Operation value maps. They match the data table of
// the bundled sqlite store; other store implementations translate them.
const (
	ColAccountType = "account_type"
	ColAccountName = "account_name"

	ColGivenName          = "given_name"
	ColMiddleName         = "middle_name"
	ColFamilyName         = "family_name"
	ColPrefix             = "prefix"
	ColSuffix             = "suffix"
	ColPhoneticGivenName  = "phonetic_given_name"
	ColPhoneticMiddleName = "phonetic_middle_name"
	ColPhoneticFamilyName = "phonetic_family_name"

	ColValue       = "value"
	ColTypeCode    = "type_code"
	ColCustomLabel = "custom_label"

	ColCompany    = "company"
	ColJobTitle   = "job_title"
	ColDepartment = "department"

	ColStreet       = "street"
	ColNeighborhood = "neighborhood"
	ColCity         = "city"
	ColRegion       = "region"
	ColPostcode     = "postcode"
	ColCountry      = "country"

	ColGroupID = "group_id"
	ColPhoto   = "photo"
)

// OpType is the operation verb.
type OpType int

const (
	OpInsert OpType = iota
	OpUpdate
	OpDelete
)

// Operation is one atomic step of a write batch.
//
// Root operations target the contact root record; the first operation of a
// create batch is a root insert whose assigned identifier later operations
// reference through RootRef, since the identifier does not exist until the
// batch executes. Non-root operations target data rows of one Kind, selected
// by ContactID for updates and deletes.
//
// Values carries column values by name; nil values clear the column.
type Operation struct {
	Op   OpType
	Root bool

	// RootRef marks an insert that references the contact created by the
	// batch's root insert instead of a resolved identifier.
	RootRef   bool
	ContactID string

	Kind   Kind
	Values map[string]any
}
