// Package label maps between human-readable field labels and the numeric
// type codes the device contact store persists for each data kind.
package label

import "strings"

// Kind selects the code table for one labeled field family.
type Kind int

const (
	Phone Kind = iota
	Email
	Postal
	Event
	Relation
	IM
	Website
)

// Type codes mirror the device store's enumerations. Only the ones the
// classifier branches on directly are exported.
const (
	EventBirthday = 3
	IMCustom      = -1
)

// table is one kind's bidirectional label mapping. custom is the code that
// carries a free-text label in a sibling column; empty is the code used when
// encoding an empty label (the "other" code for most kinds, the custom code
// for relations and IM protocols, which have no dedicated other code).
type table struct {
	byCode  map[int]string
	custom  int
	empty   int
	byLabel map[string]int
}

func newTable(custom, empty int, byCode map[int]string) table {
	byLabel := make(map[string]int, len(byCode))
	for code, keyword := range byCode {
		byLabel[keyword] = code
	}
	return table{byCode: byCode, custom: custom, empty: empty, byLabel: byLabel}
}

var tables = map[Kind]table{
	Phone: newTable(0, 7, map[int]string{
		1:  "home",
		2:  "mobile",
		3:  "work",
		4:  "fax work",
		5:  "fax home",
		6:  "pager",
		7:  "other",
		10: "company",
		12: "main",
	}),
	Email: newTable(0, 3, map[int]string{
		1: "home",
		2: "work",
		3: "other",
		4: "mobile",
	}),
	Postal: newTable(0, 3, map[int]string{
		1: "home",
		2: "work",
		3: "other",
	}),
	Event: newTable(0, 2, map[int]string{
		1: "anniversary",
		2: "other",
		3: "birthday",
	}),
	// Relations have no dedicated "other" code, so an empty label encodes
	// as custom.
	Relation: newTable(0, 0, map[int]string{
		1:  "assistant",
		2:  "brother",
		3:  "child",
		4:  "domestic partner",
		5:  "father",
		6:  "friend",
		7:  "manager",
		8:  "mother",
		9:  "parent",
		10: "partner",
		11: "referred by",
		12: "relative",
		13: "sister",
		14: "spouse",
	}),
	// IM protocol codes start at zero with custom at -1, and an empty label
	// encodes as the custom protocol rather than "other".
	IM: newTable(IMCustom, IMCustom, map[int]string{
		0: "aim",
		1: "msn",
		2: "yahoo",
		3: "skype",
		4: "qq",
		5: "google talk",
		6: "icq",
		7: "jabber",
		8: "netmeeting",
	}),
	Website: newTable(0, 7, map[int]string{
		1: "homepage",
		2: "blog",
		3: "profile",
		4: "home",
		5: "work",
		6: "ftp",
		7: "other",
	}),
}

// Decode translates a stored type code into a label. The custom code reads
// the sibling custom-label column, lowercased; any unknown code decodes as
// "other". Decode is total.
func Decode(kind Kind, code int, customLabel string) string {
	t := tables[kind]
	if code == t.custom {
		return strings.ToLower(customLabel)
	}
	if keyword, ok := t.byCode[code]; ok {
		return keyword
	}
	return "other"
}

// Encode translates a label back into a type code. Known keywords match
// case-insensitively; any other non-empty label maps to the kind's custom
// code (the caller persists the original string alongside it); an empty
// label maps to the kind's fallback code.
func Encode(kind Kind, labelText string) int {
	t := tables[kind]
	if labelText == "" {
		return t.empty
	}
	if code, ok := t.byLabel[strings.ToLower(labelText)]; ok {
		return code
	}
	return t.custom
}

// IsCustom reports whether code is the kind's custom code, meaning the
// free-text label column is authoritative.
func IsCustom(kind Kind, code int) bool {
	return code == tables[kind].custom
}
