// Package writeplan turns a contact aggregate into an ordered batch of
// store operations for atomic application.
package writeplan

import (
	"context"
	"errors"
	"fmt"

	"github.com/memohai/contactbridge/internal/contact"
	"github.com/memohai/contactbridge/internal/label"
	"github.com/memohai/contactbridge/internal/store"
)

// ErrMissingIdentifier is returned when an update or delete plan is
// requested for a contact without a store identifier.
var ErrMissingIdentifier = errors.New("contact identifier is required")

// Create builds the batch persisting a new contact. The first operation
// inserts the root record; every following operation references it through
// the batch back-reference, since the identifier is assigned only when the
// batch executes. Group labels are resolved (or created) through groups
// before their membership operations are appended.
func Create(ctx context.Context, c contact.Contact, groups store.GroupWriter) ([]store.Operation, error) {
	ops := []store.Operation{{
		Op:   store.OpInsert,
		Root: true,
		Values: map[string]any{
			store.ColAccountType: nil,
			store.ColAccountName: nil,
		},
	}}
	ops = append(ops, kindInserts(c, rootRef)...)
	return appendGroupOps(ctx, ops, c.Labels, rootRef, groups)
}

// Update builds the delete-then-reinsert batch for an existing contact.
// Every kind except the structured name is deleted and reinserted; the name
// row is updated in place to preserve its row identity. Reinserted
// operations reference the already-resolved contact identifier.
func Update(ctx context.Context, c contact.Contact, groups store.GroupWriter) ([]store.Operation, error) {
	if c.Identifier == "" {
		return nil, ErrMissingIdentifier
	}

	ops := make([]store.Operation, 0, 16)
	for _, kind := range []store.Kind{
		store.KindOrganization,
		store.KindNote,
		store.KindSIP,
		store.KindNickname,
		store.KindPhoto,
		store.KindPhone,
		store.KindEmail,
		store.KindPostal,
		store.KindEvent,
		store.KindWebsite,
		store.KindIM,
		store.KindRelation,
		store.KindGroupMembership,
	} {
		ops = append(ops, store.Operation{Op: store.OpDelete, ContactID: c.Identifier, Kind: kind})
	}

	ops = append(ops, store.Operation{
		Op:        store.OpUpdate,
		ContactID: c.Identifier,
		Kind:      store.KindName,
		Values:    nameValues(c),
	})

	ref := resolved(c.Identifier)
	for _, op := range kindInserts(c, ref) {
		if op.Kind == store.KindName {
			continue
		}
		ops = append(ops, op)
	}
	return appendGroupOps(ctx, ops, c.Labels, ref, groups)
}

// Delete builds the single root delete; the store cascades dependent rows.
func Delete(identifier string) ([]store.Operation, error) {
	if identifier == "" {
		return nil, ErrMissingIdentifier
	}
	return []store.Operation{{Op: store.OpDelete, Root: true, ContactID: identifier}}, nil
}

// ref stamps an insert with either the batch back-reference or a resolved
// contact identifier.
type ref struct {
	rootRef   bool
	contactID string
}

var rootRef = ref{rootRef: true}

func resolved(id string) ref { return ref{contactID: id} }

func insert(r ref, kind store.Kind, values map[string]any) store.Operation {
	return store.Operation{
		Op:        store.OpInsert,
		RootRef:   r.rootRef,
		ContactID: r.contactID,
		Kind:      kind,
		Values:    values,
	}
}

// kindInserts emits one insert per scalar kind (carrying nulls for absent
// values, so rewrites clear stale columns) and one per repeatable element.
func kindInserts(c contact.Contact, r ref) []store.Operation {
	ops := []store.Operation{
		insert(r, store.KindName, nameValues(c)),
		insert(r, store.KindNote, map[string]any{store.ColValue: nullable(c.Note)}),
		insert(r, store.KindSIP, map[string]any{store.ColValue: nullable(c.SIP)}),
		insert(r, store.KindNickname, map[string]any{store.ColValue: nullable(c.Nickname)}),
		insert(r, store.KindOrganization, map[string]any{
			store.ColCompany:    nullable(c.Company),
			store.ColJobTitle:   nullable(c.JobTitle),
			store.ColDepartment: nullable(c.Department),
		}),
		insert(r, store.KindPhoto, map[string]any{store.ColPhoto: photoValue(c.Avatar)}),
	}

	for _, phone := range c.Phones {
		ops = append(ops, insert(r, store.KindPhone, labeledValues(label.Phone, phone)))
	}
	for _, email := range c.Emails {
		ops = append(ops, insert(r, store.KindEmail, labeledValues(label.Email, email)))
	}
	for _, address := range c.PostalAddresses {
		ops = append(ops, insert(r, store.KindPostal, map[string]any{
			store.ColCustomLabel:  nullable(address.Label),
			store.ColTypeCode:     label.Encode(label.Postal, address.Label),
			store.ColStreet:       nullable(address.Street),
			store.ColNeighborhood: nullable(address.Neighborhood),
			store.ColCity:         nullable(address.City),
			store.ColRegion:       nullable(address.Region),
			store.ColPostcode:     nullable(address.Postcode),
			store.ColCountry:      nullable(address.Country),
		}))
	}

	// The birthday occupies its own event row with the birthday type code.
	ops = append(ops, insert(r, store.KindEvent, map[string]any{
		store.ColTypeCode: label.EventBirthday,
		store.ColValue:    nullable(c.Birthday),
	}))
	for _, date := range c.Dates {
		ops = append(ops, insert(r, store.KindEvent, labeledValues(label.Event, date)))
	}

	for _, site := range c.Websites {
		ops = append(ops, insert(r, store.KindWebsite, labeledValues(label.Website, site)))
	}
	for _, im := range c.InstantMessageAddresses {
		values := map[string]any{
			store.ColValue:    nullable(im.Value),
			store.ColTypeCode: label.Encode(label.IM, im.Label),
		}
		// Only custom protocols persist the free-text label.
		if label.IsCustom(label.IM, label.Encode(label.IM, im.Label)) {
			values[store.ColCustomLabel] = nullable(im.Label)
		}
		ops = append(ops, insert(r, store.KindIM, values))
	}
	for _, relation := range c.Relations {
		ops = append(ops, insert(r, store.KindRelation, labeledValues(label.Relation, relation)))
	}
	return ops
}

func appendGroupOps(ctx context.Context, ops []store.Operation, labels []string, r ref, groups store.GroupWriter) ([]store.Operation, error) {
	for _, title := range labels {
		groupID, err := groups.EnsureGroup(ctx, title)
		if err != nil {
			return nil, fmt.Errorf("resolve group %q: %w", title, err)
		}
		ops = append(ops, insert(r, store.KindGroupMembership, map[string]any{
			store.ColGroupID: groupID,
		}))
	}
	return ops, nil
}

func nameValues(c contact.Contact) map[string]any {
	return map[string]any{
		store.ColGivenName:          nullable(c.GivenName),
		store.ColMiddleName:         nullable(c.MiddleName),
		store.ColFamilyName:         nullable(c.FamilyName),
		store.ColPrefix:             nullable(c.Prefix),
		store.ColSuffix:             nullable(c.Suffix),
		store.ColPhoneticGivenName:  nullable(c.PhoneticGivenName),
		store.ColPhoneticMiddleName: nullable(c.PhoneticMiddleName),
		store.ColPhoneticFamilyName: nullable(c.PhoneticFamilyName),
	}
}

func labeledValues(kind label.Kind, item contact.Item) map[string]any {
	return map[string]any{
		store.ColValue:       nullable(item.Value),
		store.ColCustomLabel: nullable(item.Label),
		store.ColTypeCode:    label.Encode(kind, item.Label),
	}
}

// nullable maps empty strings to SQL nulls so absent fields clear their
// columns instead of writing empty text.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func photoValue(avatar []byte) any {
	if len(avatar) == 0 {
		return nil
	}
	return avatar
}
