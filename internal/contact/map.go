package contact

import "encoding/base64"

// Wire-level keys follow the original channel protocol: scalar string
// fields, an optional byte-slice avatar, and one list of maps per
// repeatable collection.

// ToMap converts the contact into its nested transfer object.
func (c Contact) ToMap() map[string]any {
	m := map[string]any{
		"identifier":         c.Identifier,
		"displayName":        c.DisplayName,
		"givenName":          c.GivenName,
		"middleName":         c.MiddleName,
		"familyName":         c.FamilyName,
		"prefix":             c.Prefix,
		"suffix":             c.Suffix,
		"phoneticGivenName":  c.PhoneticGivenName,
		"phoneticMiddleName": c.PhoneticMiddleName,
		"phoneticFamilyName": c.PhoneticFamilyName,
		"phoneticName":       c.PhoneticName,
		"nickname":           c.Nickname,
		"note":               c.Note,
		"sip":                c.SIP,
		"company":            c.Company,
		"jobTitle":           c.JobTitle,
		"department":         c.Department,
		"birthday":           c.Birthday,
		"accountType":        c.AccountType,
		"accountName":        c.AccountName,

		"phones":                  itemsToMaps(c.Phones),
		"emails":                  itemsToMaps(c.Emails),
		"dates":                   itemsToMaps(c.Dates),
		"websites":                itemsToMaps(c.Websites),
		"instantMessageAddresses": itemsToMaps(c.InstantMessageAddresses),
		"relations":               itemsToMaps(c.Relations),
		"postalAddresses":         addressesToMaps(c.PostalAddresses),
		"labels":                  labelsToList(c.Labels),
	}
	if c.Avatar != nil {
		m["avatar"] = c.Avatar
	}
	return m
}

// ToSummaryMap emits the name-only projection used by summary listings.
func (c Contact) ToSummaryMap() map[string]any {
	return map[string]any{
		"identifier":  c.Identifier,
		"displayName": c.DisplayName,
		"givenName":   c.GivenName,
		"middleName":  c.MiddleName,
		"familyName":  c.FamilyName,
		"prefix":      c.Prefix,
		"suffix":      c.Suffix,
	}
}

// FromMap parses a transfer object back into a Contact. Missing keys are
// treated as empty; unknown keys are ignored.
func FromMap(m map[string]any) Contact {
	c := Contact{
		Identifier:         stringValue(m, "identifier"),
		DisplayName:        stringValue(m, "displayName"),
		GivenName:          stringValue(m, "givenName"),
		MiddleName:         stringValue(m, "middleName"),
		FamilyName:         stringValue(m, "familyName"),
		Prefix:             stringValue(m, "prefix"),
		Suffix:             stringValue(m, "suffix"),
		PhoneticGivenName:  stringValue(m, "phoneticGivenName"),
		PhoneticMiddleName: stringValue(m, "phoneticMiddleName"),
		PhoneticFamilyName: stringValue(m, "phoneticFamilyName"),
		PhoneticName:       stringValue(m, "phoneticName"),
		Nickname:           stringValue(m, "nickname"),
		Note:               stringValue(m, "note"),
		SIP:                stringValue(m, "sip"),
		Company:            stringValue(m, "company"),
		JobTitle:           stringValue(m, "jobTitle"),
		Department:         stringValue(m, "department"),
		Birthday:           stringValue(m, "birthday"),
		AccountType:        stringValue(m, "accountType"),
		AccountName:        stringValue(m, "accountName"),

		Phones:                  itemsFromList(m["phones"]),
		Emails:                  itemsFromList(m["emails"]),
		Dates:                   itemsFromList(m["dates"]),
		Websites:                itemsFromList(m["websites"]),
		InstantMessageAddresses: itemsFromList(m["instantMessageAddresses"]),
		Relations:               itemsFromList(m["relations"]),
		PostalAddresses:         addressesFromList(m["postalAddresses"]),
		Labels:                  labelsFromList(m["labels"]),
	}
	c.Avatar = bytesValue(m, "avatar")
	return c
}

func itemsToMaps(items []Item) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"identifier": it.Identifier,
			"label":      it.Label,
			"value":      it.Value,
		})
	}
	return out
}

func addressesToMaps(addresses []PostalAddress) []map[string]any {
	out := make([]map[string]any, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, map[string]any{
			"identifier":       a.Identifier,
			"label":            a.Label,
			"street":           a.Street,
			"neighborhood":     a.Neighborhood,
			"city":             a.City,
			"region":           a.Region,
			"postcode":         a.Postcode,
			"country":          a.Country,
			"formattedAddress": a.FormattedAddress,
		})
	}
	return out
}

func labelsToList(labels []string) []any {
	out := make([]any, 0, len(labels))
	for _, l := range labels {
		out = append(out, l)
	}
	return out
}

func itemsFromList(value any) []Item {
	maps := mapList(value)
	if len(maps) == 0 {
		return nil
	}
	items := make([]Item, 0, len(maps))
	for _, m := range maps {
		items = append(items, Item{
			Identifier: stringValue(m, "identifier"),
			Label:      stringValue(m, "label"),
			Value:      stringValue(m, "value"),
		})
	}
	return items
}

func addressesFromList(value any) []PostalAddress {
	maps := mapList(value)
	if len(maps) == 0 {
		return nil
	}
	addresses := make([]PostalAddress, 0, len(maps))
	for _, m := range maps {
		addresses = append(addresses, PostalAddress{
			Identifier:       stringValue(m, "identifier"),
			Label:            stringValue(m, "label"),
			Street:           stringValue(m, "street"),
			Neighborhood:     stringValue(m, "neighborhood"),
			City:             stringValue(m, "city"),
			Region:           stringValue(m, "region"),
			Postcode:         stringValue(m, "postcode"),
			Country:          stringValue(m, "country"),
			FormattedAddress: stringValue(m, "formattedAddress"),
		})
	}
	return addresses
}

func labelsFromList(value any) []string {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		if typed, ok := value.([]string); ok && len(typed) > 0 {
			out := make([]string, len(typed))
			copy(out, typed)
			return out
		}
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// mapList accepts both decoded JSON ([]any of map[string]any) and
// already-typed []map[string]any lists.
func mapList(value any) []map[string]any {
	switch list := value.(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, v := range list {
			if m, ok := v.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func stringValue(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func bytesValue(m map[string]any, key string) []byte {
	switch v := m[key].(type) {
	case []byte:
		return v
	case string:
		// JSON transports byte slices as base64 strings.
		if decoded, err := base64.StdEncoding.DecodeString(v); err == nil {
			return decoded
		}
		return []byte(v)
	default:
		return nil
	}
}
