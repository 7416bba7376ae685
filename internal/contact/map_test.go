package contact

import (
	"reflect"
	"testing"
)

func sampleContact() Contact {
	return Contact{
		Identifier:         "42",
		DisplayName:        "Ada Lovelace",
		GivenName:          "Ada",
		FamilyName:         "Lovelace",
		Prefix:             "Countess",
		PhoneticGivenName:  "ey-duh",
		Nickname:           "The Enchantress",
		Note:               "first programmer",
		SIP:                "sip:ada@example.org",
		Company:            "Analytical Engines Ltd",
		JobTitle:           "Analyst",
		Department:         "Research",
		Birthday:           "1815-12-10",
		AccountType:        "com.example.sync",
		AccountName:        "ada@example.org",
		Avatar:             []byte{0x89, 0x50, 0x4e, 0x47},
		Phones:             []Item{{Identifier: "7", Label: "mobile", Value: "555-1000"}},
		Emails:             []Item{{Identifier: "8", Label: "work", Value: "ada@example.org"}},
		Dates:              []Item{{Identifier: "9", Label: "anniversary", Value: "1833-06-05"}},
		Websites:           []Item{{Identifier: "10", Label: "homepage", Value: "https://example.org"}},
		Relations:          []Item{{Identifier: "11", Label: "father", Value: "Lord Byron"}},
		InstantMessageAddresses: []Item{
			{Identifier: "12", Label: "jabber", Value: "ada@jabber.example.org"},
		},
		PostalAddresses: []PostalAddress{{
			Identifier:       "13",
			Label:            "home",
			Street:           "12 St James's Square",
			City:             "London",
			Region:           "Greater London",
			Postcode:         "SW1Y 4JH",
			Country:          "United Kingdom",
			FormattedAddress: "12 St James's Square, London SW1Y 4JH",
		}},
		Labels: []string{"Friends", "Mathematics"},
	}
}

func TestMapRoundTrip(t *testing.T) {
	c := sampleContact()
	got := FromMap(c.ToMap())
	if !reflect.DeepEqual(got, c) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, c)
	}
}

func TestMapRoundTripEmptyContact(t *testing.T) {
	c := Contact{Identifier: "1"}
	got := FromMap(c.ToMap())
	if !reflect.DeepEqual(got, c) {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestAvatarSentinels(t *testing.T) {
	// nil avatar means "not requested" and stays off the wire.
	c := Contact{Identifier: "1"}
	if _, ok := c.ToMap()["avatar"]; ok {
		t.Fatal("nil avatar must be omitted")
	}
	// An empty non-nil avatar means "requested, none available" and must
	// survive the trip.
	c.Avatar = []byte{}
	m := c.ToMap()
	if _, ok := m["avatar"]; !ok {
		t.Fatal("empty avatar must be present")
	}
	got := FromMap(m)
	if got.Avatar == nil || len(got.Avatar) != 0 {
		t.Fatalf("avatar sentinel lost: %#v", got.Avatar)
	}
}

func TestFromMapToleratesMissingKeys(t *testing.T) {
	got := FromMap(map[string]any{"givenName": "Bob"})
	if got.GivenName != "Bob" {
		t.Fatalf("givenName = %q", got.GivenName)
	}
	if got.Phones != nil || got.PostalAddresses != nil || got.Labels != nil {
		t.Fatalf("expected nil collections, got %#v", got)
	}
}

func TestFromMapJSONDecodedLists(t *testing.T) {
	// JSON decoding yields []any of map[string]any; both shapes parse.
	m := map[string]any{
		"phones": []any{
			map[string]any{"label": "home", "value": "555-2000"},
		},
		"labels": []any{"Family"},
	}
	got := FromMap(m)
	if len(got.Phones) != 1 || got.Phones[0].Value != "555-2000" {
		t.Fatalf("phones = %#v", got.Phones)
	}
	if len(got.Labels) != 1 || got.Labels[0] != "Family" {
		t.Fatalf("labels = %#v", got.Labels)
	}
}

func TestToSummaryMap(t *testing.T) {
	m := sampleContact().ToSummaryMap()
	want := map[string]any{
		"identifier":  "42",
		"displayName": "Ada Lovelace",
		"givenName":   "Ada",
		"middleName":  "",
		"familyName":  "Lovelace",
		"prefix":      "Countess",
		"suffix":      "",
	}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("summary map = %#v", m)
	}
}
