// Package aggregate folds the store's denormalized row stream into ordered
// contact aggregates.
package aggregate

import (
	"context"
	"fmt"
	"strings"

	"github.com/memohai/contactbridge/internal/contact"
	"github.com/memohai/contactbridge/internal/label"
	"github.com/memohai/contactbridge/internal/store"
)

// Mode restricts how much of each record is classified.
type Mode int

const (
	// Full classifies every kind.
	Full Mode = iota
	// Summary classifies structured-name records only.
	Summary
	// Identifiers discards all fragments and keeps identifiers.
	Identifiers
)

// Contacts folds records into one Contact per distinct contact identifier,
// preserving the first-seen order of identifiers. Repeatable kinds append in
// record order; scalar kinds overwrite, last write wins. Records whose
// primary value is blank contribute nothing. Group-membership records
// resolve their titles through groups, a synchronous side-table round trip.
func Contacts(ctx context.Context, records []store.Record, mode Mode, groups store.GroupResolver) ([]contact.Contact, error) {
	byID := make(map[string]*contact.Contact, len(records))
	order := make([]string, 0, len(records))

	for _, r := range records {
		c, ok := byID[r.ContactID]
		if !ok {
			c = &contact.Contact{Identifier: r.ContactID}
			byID[r.ContactID] = c
			order = append(order, r.ContactID)
		}
		if mode == Identifiers {
			continue
		}

		c.DisplayName = r.DisplayName
		if r.Kind == store.KindName {
			c.GivenName = r.GivenName
			c.MiddleName = r.MiddleName
			c.FamilyName = r.FamilyName
			c.Prefix = r.Prefix
			c.Suffix = r.Suffix
		}
		if mode == Summary {
			continue
		}

		c.AccountType = r.AccountType
		c.AccountName = r.AccountName

		switch r.Kind {
		case store.KindName:
			c.PhoneticGivenName = r.PhoneticGivenName
			c.PhoneticMiddleName = r.PhoneticMiddleName
			c.PhoneticFamilyName = r.PhoneticFamilyName
			c.PhoneticName = r.PhoneticName

		case store.KindNickname:
			c.Nickname = r.Value
		case store.KindNote:
			c.Note = r.Value
		case store.KindSIP:
			c.SIP = r.Value

		case store.KindOrganization:
			c.Company = r.Company
			c.JobTitle = r.JobTitle
			c.Department = r.Department

		case store.KindPhone:
			if item, ok := labeledItem(r, label.Phone); ok {
				c.Phones = append(c.Phones, item)
			}
		case store.KindEmail:
			if item, ok := labeledItem(r, label.Email); ok {
				c.Emails = append(c.Emails, item)
			}
		case store.KindWebsite:
			if item, ok := labeledItem(r, label.Website); ok {
				c.Websites = append(c.Websites, item)
			}
		case store.KindIM:
			if item, ok := labeledItem(r, label.IM); ok {
				c.InstantMessageAddresses = append(c.InstantMessageAddresses, item)
			}
		case store.KindRelation:
			if item, ok := labeledItem(r, label.Relation); ok {
				c.Relations = append(c.Relations, item)
			}

		case store.KindEvent:
			// Birthday events feed the scalar field instead of the
			// dates collection.
			if r.TypeCode == label.EventBirthday {
				c.Birthday = r.Value
				continue
			}
			c.Dates = append(c.Dates, contact.Item{
				Identifier: r.RowID,
				Label:      label.Decode(label.Event, r.TypeCode, r.CustomLabel),
				Value:      r.Value,
			})

		case store.KindPostal:
			c.PostalAddresses = append(c.PostalAddresses, contact.PostalAddress{
				Identifier:       r.RowID,
				Label:            label.Decode(label.Postal, r.TypeCode, r.CustomLabel),
				Street:           r.Street,
				Neighborhood:     r.Neighborhood,
				City:             r.City,
				Region:           r.Region,
				Postcode:         r.Postcode,
				Country:          r.Country,
				FormattedAddress: r.FormattedAddress,
			})

		case store.KindGroupMembership:
			if strings.TrimSpace(r.GroupID) == "" {
				continue
			}
			titles, err := groups.GroupTitle(ctx, r.GroupID)
			if err != nil {
				return nil, fmt.Errorf("resolve group %s: %w", r.GroupID, err)
			}
			c.Labels = append(c.Labels, titles...)
		}
	}

	out := make([]contact.Contact, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

// labeledItem builds the Item for a labeled-value record, reporting ok=false
// when the primary value is blank and the record must be dropped.
func labeledItem(r store.Record, kind label.Kind) (contact.Item, bool) {
	if strings.TrimSpace(r.Value) == "" {
		return contact.Item{}, false
	}
	return contact.Item{
		Identifier: r.RowID,
		Label:      label.Decode(kind, r.TypeCode, r.CustomLabel),
		Value:      r.Value,
	}, true
}
