package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/memohai/contactbridge/internal/store"
)

// writableColumns is the set of data-table columns a batch operation may
// set. Anything else in an operation's value map is rejected.
var writableColumns = map[string]bool{
	store.ColGivenName:          true,
	store.ColMiddleName:         true,
	store.ColFamilyName:         true,
	store.ColPrefix:             true,
	store.ColSuffix:             true,
	store.ColPhoneticGivenName:  true,
	store.ColPhoneticMiddleName: true,
	store.ColPhoneticFamilyName: true,
	store.ColValue:              true,
	store.ColTypeCode:           true,
	store.ColCustomLabel:        true,
	store.ColCompany:            true,
	store.ColJobTitle:           true,
	store.ColDepartment:         true,
	store.ColStreet:             true,
	store.ColNeighborhood:       true,
	store.ColCity:               true,
	store.ColRegion:             true,
	store.ColPostcode:           true,
	store.ColCountry:            true,
	store.ColGroupID:            true,
	store.ColPhoto:              true,
}

// ApplyBatch applies the operations in order inside one transaction. A root
// insert records its assigned identifier for later back-referencing
// operations; the derived display name and phone normalization columns are
// maintained here, mirroring what the platform provider does on device.
func (s *Store) ApplyBatch(ctx context.Context, ops []store.Operation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	rootID := int64(-1)
	touched := map[int64]bool{}

	for i, op := range ops {
		switch {
		case op.Root && op.Op == store.OpInsert:
			rootID, err = s.insertRoot(ctx, tx, op)
			if err == nil {
				touched[rootID] = true
			}

		case op.Root && op.Op == store.OpDelete:
			err = s.deleteRoot(ctx, tx, op.ContactID)

		case op.Op == store.OpInsert:
			var contactID int64
			contactID, err = resolveContactID(op, rootID)
			if err == nil {
				err = s.insertData(ctx, tx, contactID, op)
				if op.Kind == store.KindName {
					touched[contactID] = true
				}
			}

		case op.Op == store.OpUpdate:
			var contactID int64
			contactID, err = resolveContactID(op, rootID)
			if err == nil {
				err = s.updateData(ctx, tx, contactID, op)
				if op.Kind == store.KindName {
					touched[contactID] = true
				}
			}

		case op.Op == store.OpDelete:
			var contactID int64
			contactID, err = resolveContactID(op, rootID)
			if err == nil {
				_, err = tx.ExecContext(ctx,
					`DELETE FROM data WHERE contact_id = ? AND kind = ?`,
					contactID, op.Kind.String())
			}

		default:
			err = fmt.Errorf("unsupported operation %d", op.Op)
		}
		if err != nil {
			return fmt.Errorf("batch operation %d: %w", i, err)
		}
	}

	for id := range touched {
		if err := s.refreshDisplayName(ctx, tx, id); err != nil {
			return fmt.Errorf("refresh display name for %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (s *Store) insertRoot(ctx context.Context, tx *sql.Tx, op store.Operation) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO contacts (account_type, account_name) VALUES (?, ?)`,
		op.Values[store.ColAccountType], op.Values[store.ColAccountName])
	if err != nil {
		return -1, fmt.Errorf("insert contact root: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) deleteRoot(ctx context.Context, tx *sql.Tx, identifier string) error {
	id, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid contact identifier %q", identifier)
	}
	// Dependent data rows cascade through the foreign key.
	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete contact root: %w", err)
	}
	return nil
}

func (s *Store) insertData(ctx context.Context, tx *sql.Tx, contactID int64, op store.Operation) error {
	columns := []string{"contact_id", "kind"}
	args := []any{contactID, op.Kind.String()}
	for _, col := range sortedColumns(op.Values) {
		columns = append(columns, col)
		args = append(args, op.Values[col])
	}
	if op.Kind == store.KindPhone {
		if number, ok := op.Values[store.ColValue].(string); ok {
			columns = append(columns, "value_norm")
			args = append(args, digits(number))
		}
	}
	if op.Kind == store.KindPostal {
		columns = append(columns, "formatted_address")
		args = append(args, formatAddress(op.Values))
	}
	if op.Kind == store.KindName {
		columns = append(columns, "phonetic_name")
		args = append(args, phoneticName(op.Values))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO data (%s) VALUES (%s)",
		strings.Join(columns, ", "), placeholders)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s row: %w", op.Kind, err)
	}
	return nil
}

func (s *Store) updateData(ctx context.Context, tx *sql.Tx, contactID int64, op store.Operation) error {
	columns := sortedColumns(op.Values)
	if len(columns) == 0 {
		return errors.New("update without values")
	}
	assignments := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+2)
	for _, col := range columns {
		assignments = append(assignments, col+" = ?")
		args = append(args, op.Values[col])
	}
	if op.Kind == store.KindName {
		assignments = append(assignments, "phonetic_name = ?")
		args = append(args, phoneticName(op.Values))
	}
	args = append(args, contactID, op.Kind.String())
	query := fmt.Sprintf("UPDATE data SET %s WHERE contact_id = ? AND kind = ?",
		strings.Join(assignments, ", "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s row: %w", op.Kind, err)
	}
	return nil
}

// refreshDisplayName recomputes the contact's derived display name from its
// structured name row.
func (s *Store) refreshDisplayName(ctx context.Context, tx *sql.Tx, contactID int64) error {
	var given, middle, family sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT given_name, middle_name, family_name FROM data
		 WHERE contact_id = ? AND kind = 'name' ORDER BY id LIMIT 1`,
		contactID,
	).Scan(&given, &middle, &family)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	name := displayName(given.String, middle.String, family.String)
	_, err = tx.ExecContext(ctx, `UPDATE contacts SET display_name = ? WHERE id = ?`,
		nullableText(name), contactID)
	return err
}

func resolveContactID(op store.Operation, rootID int64) (int64, error) {
	if op.RootRef {
		if rootID < 0 {
			return 0, errors.New("back-reference without a root insert")
		}
		return rootID, nil
	}
	id, err := strconv.ParseInt(op.ContactID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid contact identifier %q", op.ContactID)
	}
	return id, nil
}

func sortedColumns(values map[string]any) []string {
	columns := make([]string, 0, len(values))
	for col := range values {
		if writableColumns[col] {
			columns = append(columns, col)
		}
	}
	sort.Strings(columns)
	return columns
}

func formatAddress(values map[string]any) any {
	parts := make([]string, 0, 5)
	for _, col := range []string{store.ColStreet, store.ColCity, store.ColRegion, store.ColPostcode, store.ColCountry} {
		if s, ok := values[col].(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return strings.Join(parts, ", ")
}

func phoneticName(values map[string]any) any {
	parts := make([]string, 0, 3)
	for _, col := range []string{store.ColPhoneticGivenName, store.ColPhoneticMiddleName, store.ColPhoneticFamilyName} {
		if s, ok := values[col].(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return strings.Join(parts, " ")
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
