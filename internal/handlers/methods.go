package handlers

import (
	"context"
	"strings"

	"github.com/memohai/contactbridge/internal/bridge"
	"github.com/memohai/contactbridge/internal/contact"
	"github.com/memohai/contactbridge/internal/service"
)

// RegisterMethods binds every contact method name onto the dispatcher. The
// names and argument keys match the mobile method-channel protocol, so a
// client built against it works against this bridge unchanged.
func RegisterMethods(d *bridge.Dispatcher, svc *service.Service) {
	d.Handle("getContacts", func(ctx context.Context, args map[string]any) (any, error) {
		contacts, err := svc.Contacts(ctx, stringArg(args, "query"), flagsFrom(args))
		if err != nil {
			return nil, err
		}
		return contactMaps(contacts), nil
	})

	d.Handle("getContactsSummary", func(ctx context.Context, args map[string]any) (any, error) {
		contacts, err := svc.ContactsSummary(ctx, stringArg(args, "query"), flagsFrom(args))
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(contacts))
		for _, c := range contacts {
			out = append(out, c.ToSummaryMap())
		}
		return out, nil
	})

	d.Handle("getIdentifiers", func(ctx context.Context, args map[string]any) (any, error) {
		ids, err := svc.Identifiers(ctx, flagsFrom(args))
		if err != nil {
			return nil, err
		}
		// Clients expect one pipe-joined string.
		return strings.Join(ids, "|"), nil
	})

	d.Handle("getContactsByIdentifiers", func(ctx context.Context, args map[string]any) (any, error) {
		ids := splitIdentifiers(stringArg(args, "identifiers"))
		contacts, err := svc.ContactsByIdentifiers(ctx, ids, flagsFrom(args))
		if err != nil {
			return nil, err
		}
		return contactMaps(contacts), nil
	})

	d.Handle("getContactsForPhone", func(ctx context.Context, args map[string]any) (any, error) {
		contacts, err := svc.ContactsForPhone(ctx, stringArg(args, "phone"), flagsFrom(args))
		if err != nil {
			return nil, err
		}
		return contactMaps(contacts), nil
	})

	d.Handle("getAvatar", func(ctx context.Context, args map[string]any) (any, error) {
		return svc.Avatar(ctx,
			stringArg(args, "identifier"), boolArg(args, "photoHighResolution"))
	})

	d.Handle("addContact", func(ctx context.Context, args map[string]any) (any, error) {
		return nil, svc.Add(ctx, contact.FromMap(args))
	})

	d.Handle("updateContact", func(ctx context.Context, args map[string]any) (any, error) {
		return nil, svc.Update(ctx, contact.FromMap(args))
	})

	d.Handle("deleteContact", func(ctx context.Context, args map[string]any) (any, error) {
		return nil, svc.Delete(ctx, stringArg(args, "identifier"))
	})

	d.Handle("openContactForm", func(ctx context.Context, args map[string]any) (any, error) {
		saved, err := svc.OpenContactForm(ctx, contact.FromMap(args))
		if err != nil {
			return nil, err
		}
		return saved.ToMap(), nil
	})

	d.Handle("openExistingContact", func(ctx context.Context, args map[string]any) (any, error) {
		saved, err := svc.OpenExistingContact(ctx, stringArg(args, "identifier"))
		if err != nil {
			return nil, err
		}
		return saved.ToMap(), nil
	})

	d.Handle("openDeviceContactPicker", func(ctx context.Context, args map[string]any) (any, error) {
		picked, err := svc.OpenContactPicker(ctx)
		if err != nil {
			return nil, err
		}
		return picked.ToMap(), nil
	})
}

func flagsFrom(args map[string]any) service.Flags {
	return service.Flags{
		WithThumbnails:      boolArg(args, "withThumbnails"),
		PhotoHighResolution: boolArg(args, "photoHighResolution"),
		OrderByGivenName:    boolArg(args, "orderByGivenName"),
	}
}

func contactMaps(contacts []contact.Contact) []map[string]any {
	out := make([]map[string]any, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, c.ToMap())
	}
	return out
}

func splitIdentifiers(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, "|")
	ids := parts[:0]
	for _, p := range parts {
		if p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func boolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}
