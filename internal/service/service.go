// Package service implements the contact operations behind the bridge:
// queries fan through the store and aggregator, writes compile to batches.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/memohai/contactbridge/internal/aggregate"
	"github.com/memohai/contactbridge/internal/contact"
	"github.com/memohai/contactbridge/internal/logger"
	"github.com/memohai/contactbridge/internal/store"
	"github.com/memohai/contactbridge/internal/writeplan"
)

// Flags are the per-call options accepted by query operations.
type Flags struct {
	WithThumbnails      bool
	PhotoHighResolution bool
	OrderByGivenName    bool
}

// Service exposes the contact operations. Editor may be nil when the host
// has no native form UI.
type Service struct {
	store  store.Store
	editor Editor
}

func New(s store.Store, editor Editor) *Service {
	return &Service{store: s, editor: editor}
}

// Contacts returns contacts whose display name starts with query. An empty
// query returns everything.
func (s *Service) Contacts(ctx context.Context, query string, flags Flags) ([]contact.Contact, error) {
	return s.queryContacts(ctx, store.Query{
		NamePrefix:       query,
		Projection:       store.ProjectionFull,
		OrderByGivenName: flags.OrderByGivenName,
	}, flags)
}

// ContactsSummary returns name-only contacts, skipping collection rows for
// large list renders.
func (s *Service) ContactsSummary(ctx context.Context, query string, flags Flags) ([]contact.Contact, error) {
	records, err := s.store.QueryRows(ctx, store.Query{
		NamePrefix:       query,
		Projection:       store.ProjectionSummary,
		OrderByGivenName: flags.OrderByGivenName,
	})
	if err != nil {
		return nil, fmt.Errorf("query summary rows: %w", err)
	}
	return aggregate.Contacts(ctx, records, aggregate.Summary, s.store)
}

// Identifiers returns bare contact identifiers in store order.
func (s *Service) Identifiers(ctx context.Context, flags Flags) ([]string, error) {
	records, err := s.store.QueryRows(ctx, store.Query{
		Projection:       store.ProjectionIdentifiers,
		OrderByGivenName: flags.OrderByGivenName,
	})
	if err != nil {
		return nil, fmt.Errorf("query identifiers: %w", err)
	}
	contacts, err := aggregate.Contacts(ctx, records, aggregate.Identifiers, s.store)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(contacts))
	for _, c := range contacts {
		ids = append(ids, c.Identifier)
	}
	return ids, nil
}

// ContactsByIdentifiers returns full contacts for the given identifiers.
// Unknown identifiers are skipped, not errors.
func (s *Service) ContactsByIdentifiers(ctx context.Context, identifiers []string, flags Flags) ([]contact.Contact, error) {
	if len(identifiers) == 0 {
		return nil, nil
	}
	return s.queryContacts(ctx, store.Query{
		Identifiers:      identifiers,
		Projection:       store.ProjectionFull,
		OrderByGivenName: flags.OrderByGivenName,
	}, flags)
}

// ContactsForPhone reverse-looks-up contacts by phone number, matching on
// digits only. A number with no digits matches nothing.
func (s *Service) ContactsForPhone(ctx context.Context, phone string, flags Flags) ([]contact.Contact, error) {
	if phone == "" {
		return nil, nil
	}
	return s.queryContacts(ctx, store.Query{
		Phone:            phone,
		Projection:       store.ProjectionFull,
		OrderByGivenName: flags.OrderByGivenName,
	}, flags)
}

// Avatar returns a contact's photo blob, nil when it has none.
func (s *Service) Avatar(ctx context.Context, identifier string, highRes bool) ([]byte, error) {
	return s.store.Avatar(ctx, identifier, highRes)
}

// Add persists a new contact.
func (s *Service) Add(ctx context.Context, c contact.Contact) error {
	ops, err := writeplan.Create(ctx, c, s.store)
	if err != nil {
		return fmt.Errorf("build create batch: %w", err)
	}
	logger.FromContext(ctx).Debug("add contact", slog.Int("operations", len(ops)))
	return s.store.ApplyBatch(ctx, ops)
}

// Update rewrites an existing contact in place.
func (s *Service) Update(ctx context.Context, c contact.Contact) error {
	ops, err := writeplan.Update(ctx, c, s.store)
	if err != nil {
		return fmt.Errorf("build update batch: %w", err)
	}
	logger.FromContext(ctx).Debug("update contact",
		slog.String("identifier", c.Identifier), slog.Int("operations", len(ops)))
	return s.store.ApplyBatch(ctx, ops)
}

// Delete removes a contact and all of its data rows.
func (s *Service) Delete(ctx context.Context, identifier string) error {
	ops, err := writeplan.Delete(identifier)
	if err != nil {
		return err
	}
	return s.store.ApplyBatch(ctx, ops)
}

func (s *Service) queryContacts(ctx context.Context, q store.Query, flags Flags) ([]contact.Contact, error) {
	records, err := s.store.QueryRows(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	contacts, err := aggregate.Contacts(ctx, records, aggregate.Full, s.store)
	if err != nil {
		return nil, err
	}
	if flags.WithThumbnails {
		if err := s.attachThumbnails(ctx, contacts, flags.PhotoHighResolution); err != nil {
			return nil, err
		}
	}
	return contacts, nil
}

// attachThumbnails loads photo blobs for every contact. Contacts without a
// photo get an empty non-nil slice so callers can tell "requested but
// absent" from "never requested".
func (s *Service) attachThumbnails(ctx context.Context, contacts []contact.Contact, highRes bool) error {
	for i := range contacts {
		blob, err := s.store.Avatar(ctx, contacts[i].Identifier, highRes)
		if err != nil {
			return fmt.Errorf("load avatar for %s: %w", contacts[i].Identifier, err)
		}
		if blob == nil {
			blob = []byte{}
		}
		contacts[i].Avatar = blob
	}
	return nil
}
