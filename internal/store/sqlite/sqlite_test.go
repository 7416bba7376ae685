package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/memohai/contactbridge/internal/aggregate"
	"github.com/memohai/contactbridge/internal/contact"
	"github.com/memohai/contactbridge/internal/store"
	"github.com/memohai/contactbridge/internal/writeplan"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "contacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(testLogger()))
	return s
}

func createContact(t *testing.T, s *Store, c contact.Contact) string {
	t.Helper()
	ctx := context.Background()
	ops, err := writeplan.Create(ctx, c, s)
	require.NoError(t, err)
	require.NoError(t, s.ApplyBatch(ctx, ops))

	records, err := s.QueryRows(ctx, store.Query{Projection: store.ProjectionIdentifiers})
	require.NoError(t, err)
	require.NotEmpty(t, records)
	return records[len(records)-1].ContactID
}

func TestCreateAndReadBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := contact.Contact{
		GivenName:  "Grace",
		FamilyName: "Hopper",
		Company:    "Navy",
		JobTitle:   "Rear Admiral",
		Note:       "compilers",
		Birthday:   "1906-12-09",
		Avatar:     []byte{0x89, 0x50},
		Phones:     []contact.Item{{Label: "work", Value: "+1 (555) 010-2000"}},
		Emails:     []contact.Item{{Label: "home", Value: "grace@example.com"}},
		Websites:   []contact.Item{{Label: "homepage", Value: "https://example.com"}},
		PostalAddresses: []contact.PostalAddress{{
			Label:  "work",
			Street: "1 Navy Yard",
			City:   "Washington",
			Region: "DC",
		}},
		Labels: []string{"Colleagues"},
	}
	id := createContact(t, s, in)

	records, err := s.QueryRows(ctx, store.Query{ContactID: id, Projection: store.ProjectionFull})
	require.NoError(t, err)
	contacts, err := aggregate.Contacts(ctx, records, aggregate.Full, s)
	require.NoError(t, err)
	require.Len(t, contacts, 1)

	got := contacts[0]
	require.Equal(t, id, got.Identifier)
	require.Equal(t, "Grace Hopper", got.DisplayName)
	require.Equal(t, "Navy", got.Company)
	require.Equal(t, "compilers", got.Note)
	require.Equal(t, "1906-12-09", got.Birthday)
	require.Len(t, got.Phones, 1)
	require.Equal(t, contact.Item{Identifier: got.Phones[0].Identifier, Label: "work", Value: "+1 (555) 010-2000"}, got.Phones[0])
	require.Equal(t, "grace@example.com", got.Emails[0].Value)
	require.Equal(t, []string{"Colleagues"}, got.Labels)
	require.Len(t, got.PostalAddresses, 1)
	require.Equal(t, "1 Navy Yard, Washington, DC", got.PostalAddresses[0].FormattedAddress)
}

func TestPhoneReverseLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id := createContact(t, s, contact.Contact{
		GivenName: "Ada",
		Phones:    []contact.Item{{Label: "mobile", Value: "(555) 010-3000"}},
	})
	createContact(t, s, contact.Contact{
		GivenName: "Bob",
		Phones:    []contact.Item{{Label: "mobile", Value: "555 010 4000"}},
	})

	cases := []struct {
		name  string
		phone string
		want  []string
	}{
		{name: "formatted match", phone: "555-010-3000", want: []string{id}},
		{name: "no match", phone: "555 999 9999", want: nil},
		{name: "no digits", phone: "call me", want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := s.QueryRows(ctx, store.Query{Phone: tc.phone, Projection: store.ProjectionFull})
			require.NoError(t, err)
			var ids []string
			seen := map[string]bool{}
			for _, r := range records {
				if !seen[r.ContactID] {
					seen[r.ContactID] = true
					ids = append(ids, r.ContactID)
				}
			}
			require.Equal(t, tc.want, ids)
		})
	}
}

func TestNamePrefixFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	createContact(t, s, contact.Contact{GivenName: "Alice", FamilyName: "Ant"})
	createContact(t, s, contact.Contact{GivenName: "Albert", FamilyName: "Atom"})
	createContact(t, s, contact.Contact{GivenName: "Bob"})

	records, err := s.QueryRows(ctx, store.Query{
		NamePrefix: "Al", Projection: store.ProjectionSummary, OrderByGivenName: true,
	})
	require.NoError(t, err)
	contacts, err := aggregate.Contacts(ctx, records, aggregate.Summary, s)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	require.Equal(t, "Albert Atom", contacts[0].DisplayName)
	require.Equal(t, "Alice Ant", contacts[1].DisplayName)
}

func TestAvatar(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	withPhoto := createContact(t, s, contact.Contact{GivenName: "Pic", Avatar: []byte{1, 2, 3}})
	without := createContact(t, s, contact.Contact{GivenName: "NoPic"})

	blob, err := s.Avatar(ctx, withPhoto, true)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, blob)

	blob, err = s.Avatar(ctx, without, false)
	require.NoError(t, err)
	require.Nil(t, blob)
}

func TestEnsureGroupIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureGroup(ctx, "Friends")
	require.NoError(t, err)
	second, err := s.EnsureGroup(ctx, "Friends")
	require.NoError(t, err)
	require.Equal(t, first, second)

	titles, err := s.GroupTitle(ctx, first)
	require.NoError(t, err)
	require.Equal(t, []string{"Friends"}, titles)

	titles, err = s.GroupTitle(ctx, "999")
	require.NoError(t, err)
	require.Empty(t, titles)
}

func TestUpdateRewritesCollections(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id := createContact(t, s, contact.Contact{
		GivenName: "Old",
		Phones: []contact.Item{
			{Label: "home", Value: "111"},
			{Label: "work", Value: "222"},
		},
		Emails: []contact.Item{{Label: "home", Value: "old@example.com"}},
	})

	ops, err := writeplan.Update(ctx, contact.Contact{
		Identifier: id,
		GivenName:  "New",
		FamilyName: "Name",
		Phones:     []contact.Item{{Label: "mobile", Value: "333"}},
	}, s)
	require.NoError(t, err)
	require.NoError(t, s.ApplyBatch(ctx, ops))

	records, err := s.QueryRows(ctx, store.Query{ContactID: id, Projection: store.ProjectionFull})
	require.NoError(t, err)
	contacts, err := aggregate.Contacts(ctx, records, aggregate.Full, s)
	require.NoError(t, err)
	require.Len(t, contacts, 1)

	got := contacts[0]
	require.Equal(t, "New Name", got.DisplayName)
	require.Len(t, got.Phones, 1)
	require.Equal(t, "mobile", got.Phones[0].Label)
	require.Equal(t, "333", got.Phones[0].Value)
	require.Nil(t, got.Emails)
}

func TestDeleteCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id := createContact(t, s, contact.Contact{
		GivenName: "Gone",
		Phones:    []contact.Item{{Label: "home", Value: "111"}},
	})

	ops, err := writeplan.Delete(id)
	require.NoError(t, err)
	require.NoError(t, s.ApplyBatch(ctx, ops))

	records, err := s.QueryRows(ctx, store.Query{ContactID: id, Projection: store.ProjectionFull})
	require.NoError(t, err)
	require.Empty(t, records)

	var count int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM data WHERE contact_id = ?`, id).Scan(&count)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestBackReferenceWithoutRoot(t *testing.T) {
	s := openTestStore(t)
	err := s.ApplyBatch(context.Background(), []store.Operation{{
		Op:      store.OpInsert,
		RootRef: true,
		Kind:    store.KindNote,
		Values:  map[string]any{store.ColValue: "orphan"},
	}})
	require.Error(t, err)
}

func TestBatchIsAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.ApplyBatch(ctx, []store.Operation{
		{Op: store.OpInsert, Root: true, Kind: store.KindName, Values: map[string]any{}},
		{Op: store.OpInsert, RootRef: true, Kind: store.KindName,
			Values: map[string]any{store.ColGivenName: "Half"}},
		{Op: store.OpDelete, Root: true, ContactID: "not-a-number"},
	})
	require.Error(t, err)

	records, err := s.QueryRows(ctx, store.Query{Projection: store.ProjectionIdentifiers})
	require.NoError(t, err)
	require.Empty(t, records)
}
