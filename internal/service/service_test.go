package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/memohai/contactbridge/internal/contact"
	"github.com/memohai/contactbridge/internal/store"
)

// fakeStore serves canned records and captures applied batches.
type fakeStore struct {
	records   []store.Record
	avatars   map[string][]byte
	lastQuery store.Query
	batches   [][]store.Operation
	queryErr  error
}

func (f *fakeStore) QueryRows(ctx context.Context, q store.Query) ([]store.Record, error) {
	f.lastQuery = q
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if q.Phone != "" && !hasDigits(q.Phone) {
		return nil, nil
	}
	return f.records, nil
}

func (f *fakeStore) ApplyBatch(ctx context.Context, ops []store.Operation) error {
	f.batches = append(f.batches, ops)
	return nil
}

func (f *fakeStore) Avatar(ctx context.Context, identifier string, highRes bool) ([]byte, error) {
	return f.avatars[identifier], nil
}

func (f *fakeStore) GroupTitle(ctx context.Context, groupID string) ([]string, error) {
	return nil, nil
}

func (f *fakeStore) EnsureGroup(ctx context.Context, title string) (string, error) {
	return "1", nil
}

func hasDigits(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func nameRecord(id, given string) store.Record {
	return store.Record{
		ContactID:   id,
		Kind:        store.KindName,
		DisplayName: given,
		GivenName:   given,
	}
}

func TestContactsPassesQuery(t *testing.T) {
	fs := &fakeStore{records: []store.Record{nameRecord("1", "Ada")}}
	svc := New(fs, nil)

	got, err := svc.Contacts(context.Background(), "Ad", Flags{OrderByGivenName: true})
	if err != nil {
		t.Fatalf("Contacts: %v", err)
	}
	if len(got) != 1 || got[0].GivenName != "Ada" {
		t.Fatalf("unexpected contacts: %+v", got)
	}
	want := store.Query{NamePrefix: "Ad", Projection: store.ProjectionFull, OrderByGivenName: true}
	if !reflect.DeepEqual(fs.lastQuery, want) {
		t.Fatalf("query = %+v, want %+v", fs.lastQuery, want)
	}
}

func TestContactsSummaryProjection(t *testing.T) {
	fs := &fakeStore{records: []store.Record{nameRecord("1", "Ada")}}
	svc := New(fs, nil)

	if _, err := svc.ContactsSummary(context.Background(), "", Flags{}); err != nil {
		t.Fatalf("ContactsSummary: %v", err)
	}
	if fs.lastQuery.Projection != store.ProjectionSummary {
		t.Fatalf("projection = %v, want summary", fs.lastQuery.Projection)
	}
}

func TestIdentifiers(t *testing.T) {
	fs := &fakeStore{records: []store.Record{
		{ContactID: "7"}, {ContactID: "3"}, {ContactID: "7"},
	}}
	svc := New(fs, nil)

	ids, err := svc.Identifiers(context.Background(), Flags{})
	if err != nil {
		t.Fatalf("Identifiers: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"7", "3"}) {
		t.Fatalf("ids = %v", ids)
	}
}

func TestContactsByIdentifiersEmptyInput(t *testing.T) {
	fs := &fakeStore{records: []store.Record{nameRecord("1", "Ada")}}
	svc := New(fs, nil)

	got, err := svc.ContactsByIdentifiers(context.Background(), nil, Flags{})
	if err != nil {
		t.Fatalf("ContactsByIdentifiers: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no lookup for empty identifiers, got %+v", got)
	}
}

func TestContactsForPhoneNoDigits(t *testing.T) {
	fs := &fakeStore{records: []store.Record{nameRecord("1", "Ada")}}
	svc := New(fs, nil)

	got, err := svc.ContactsForPhone(context.Background(), "no digits here", Flags{})
	if err != nil {
		t.Fatalf("ContactsForPhone: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestThumbnailSentinel(t *testing.T) {
	fs := &fakeStore{
		records: []store.Record{nameRecord("1", "Ada"), nameRecord("2", "Bob")},
		avatars: map[string][]byte{"1": {0xFF}},
	}
	svc := New(fs, nil)

	got, err := svc.Contacts(context.Background(), "", Flags{WithThumbnails: true})
	if err != nil {
		t.Fatalf("Contacts: %v", err)
	}
	if !reflect.DeepEqual(got[0].Avatar, []byte{0xFF}) {
		t.Fatalf("avatar = %v", got[0].Avatar)
	}
	if got[1].Avatar == nil || len(got[1].Avatar) != 0 {
		t.Fatalf("missing photo should yield empty non-nil slice, got %v", got[1].Avatar)
	}

	got, err = svc.Contacts(context.Background(), "", Flags{})
	if err != nil {
		t.Fatalf("Contacts: %v", err)
	}
	if got[0].Avatar != nil {
		t.Fatalf("avatar loaded without WithThumbnails: %v", got[0].Avatar)
	}
}

func TestAddBuildsBatch(t *testing.T) {
	fs := &fakeStore{}
	svc := New(fs, nil)

	err := svc.Add(context.Background(), contact.Contact{
		GivenName: "New",
		Phones:    []contact.Item{{Label: "mobile", Value: "555"}},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(fs.batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(fs.batches))
	}
	ops := fs.batches[0]
	if !ops[0].Root || ops[0].Op != store.OpInsert {
		t.Fatalf("first op must be the root insert, got %+v", ops[0])
	}
}

func TestUpdateRequiresIdentifier(t *testing.T) {
	svc := New(&fakeStore{}, nil)
	if err := svc.Update(context.Background(), contact.Contact{GivenName: "X"}); err == nil {
		t.Fatal("expected an error for a contact without identifier")
	}
}

func TestDelete(t *testing.T) {
	fs := &fakeStore{}
	svc := New(fs, nil)

	if err := svc.Delete(context.Background(), "42"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fs.batches) != 1 || len(fs.batches[0]) != 1 {
		t.Fatalf("batches = %+v", fs.batches)
	}
	op := fs.batches[0][0]
	if !op.Root || op.Op != store.OpDelete {
		t.Fatalf("unexpected op %+v", op)
	}
}

func TestEditorUnwired(t *testing.T) {
	svc := New(&fakeStore{}, nil)
	ctx := context.Background()

	if _, err := svc.OpenContactPicker(ctx); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if _, err := svc.OpenContactForm(ctx, contact.Contact{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if _, err := svc.OpenExistingContact(ctx, "1"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

type stubEditor struct {
	picked contact.Contact
}

func (e stubEditor) OpenContactForm(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	return c, nil
}

func (e stubEditor) OpenExistingContact(ctx context.Context, identifier string) (contact.Contact, error) {
	return contact.Contact{Identifier: identifier}, nil
}

func (e stubEditor) OpenContactPicker(ctx context.Context) (contact.Contact, error) {
	return e.picked, nil
}

func TestEditorWired(t *testing.T) {
	svc := New(&fakeStore{}, stubEditor{picked: contact.Contact{Identifier: "9"}})
	ctx := context.Background()

	got, err := svc.OpenContactPicker(ctx)
	if err != nil {
		t.Fatalf("OpenContactPicker: %v", err)
	}
	if got.Identifier != "9" {
		t.Fatalf("picked %+v", got)
	}

	if _, err := svc.OpenExistingContact(ctx, ""); err == nil {
		t.Fatal("expected an error for an empty identifier")
	}
}
