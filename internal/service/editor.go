package service

import (
	"context"
	"errors"

	"github.com/memohai/contactbridge/internal/contact"
	"github.com/memohai/contactbridge/internal/writeplan"
)

// ErrUnsupported reports an operation the host platform cannot perform,
// such as opening a native form when none is wired.
var ErrUnsupported = errors.New("operation not supported on this host")

// ErrCancelled reports a native UI flow the user dismissed without a result.
var ErrCancelled = errors.New("cancelled by user")

// Editor is the native contact UI collaborator. Implementations hand off to
// the host platform's form and picker screens and block until they return.
type Editor interface {
	// OpenContactForm opens the new-contact form prefilled with c and
	// returns the saved contact, or ErrCancelled.
	OpenContactForm(ctx context.Context, c contact.Contact) (contact.Contact, error)

	// OpenExistingContact opens the edit form for the identified contact
	// and returns it as saved, or ErrCancelled.
	OpenExistingContact(ctx context.Context, identifier string) (contact.Contact, error)

	// OpenContactPicker shows the native picker and returns the chosen
	// contact, or ErrCancelled.
	OpenContactPicker(ctx context.Context) (contact.Contact, error)
}

// OpenContactForm hands off to the native form, ErrUnsupported without one.
func (s *Service) OpenContactForm(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	if s.editor == nil {
		return contact.Contact{}, ErrUnsupported
	}
	return s.editor.OpenContactForm(ctx, c)
}

// OpenExistingContact hands off to the native edit form.
func (s *Service) OpenExistingContact(ctx context.Context, identifier string) (contact.Contact, error) {
	if s.editor == nil {
		return contact.Contact{}, ErrUnsupported
	}
	if identifier == "" {
		return contact.Contact{}, writeplan.ErrMissingIdentifier
	}
	return s.editor.OpenExistingContact(ctx, identifier)
}

// OpenContactPicker hands off to the native picker.
func (s *Service) OpenContactPicker(ctx context.Context) (contact.Contact, error) {
	if s.editor == nil {
		return contact.Contact{}, ErrUnsupported
	}
	return s.editor.OpenContactPicker(ctx)
}
