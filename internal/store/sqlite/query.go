package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/memohai/contactbridge/internal/store"
)

// QueryRows returns denormalized rows for the query's projection. Photo
// blobs never travel through row queries; avatars load through Avatar.
func (s *Store) QueryRows(ctx context.Context, q store.Query) ([]store.Record, error) {
	if q.Projection == store.ProjectionIdentifiers {
		return s.queryIdentifiers(ctx, q)
	}

	where := []string{"d.kind <> 'photo'"}
	var args []any
	if q.Projection == store.ProjectionSummary {
		where = []string{"d.kind = 'name'"}
	}

	switch {
	case q.ContactID != "":
		where = append(where, "d.contact_id = ?")
		args = append(args, q.ContactID)
	case len(q.Identifiers) > 0:
		where = append(where, "d.contact_id IN ("+placeholders(len(q.Identifiers))+")")
		for _, id := range q.Identifiers {
			args = append(args, id)
		}
	case q.NamePrefix != "":
		where = append(where, "c.display_name LIKE ? ESCAPE '\\'")
		args = append(args, escapeLike(q.NamePrefix)+"%")
	case q.Phone != "":
		norm := digits(q.Phone)
		if norm == "" {
			return nil, nil
		}
		where = append(where,
			"d.contact_id IN (SELECT contact_id FROM data WHERE kind = 'phone' AND value_norm = ?)")
		args = append(args, norm)
	}

	order := "c.id, d.id"
	if q.OrderByGivenName {
		order = "c.display_name COLLATE NOCASE ASC, c.id, d.id"
	}

	query := fmt.Sprintf(`
		SELECT d.contact_id, d.kind, d.id,
		       c.display_name, c.account_type, c.account_name,
		       d.given_name, d.middle_name, d.family_name, d.prefix, d.suffix,
		       d.phonetic_given_name, d.phonetic_middle_name, d.phonetic_family_name, d.phonetic_name,
		       d.value, d.type_code, d.custom_label,
		       d.company, d.job_title, d.department,
		       d.street, d.neighborhood, d.city, d.region, d.postcode, d.country, d.formatted_address,
		       d.group_id
		FROM data d
		JOIN contacts c ON c.id = d.contact_id
		WHERE %s
		ORDER BY %s`, strings.Join(where, " AND "), order)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var records []store.Record
	for rows.Next() {
		var (
			contactID, rowID int64
			kindName         string
			displayName      sql.NullString
			accountType      sql.NullString
			accountName      sql.NullString
			given, middle    sql.NullString
			family           sql.NullString
			prefix, suffix   sql.NullString
			phGiven          sql.NullString
			phMiddle         sql.NullString
			phFamily         sql.NullString
			phonetic         sql.NullString
			value            sql.NullString
			typeCode         sql.NullInt64
			customLabel      sql.NullString
			company          sql.NullString
			jobTitle         sql.NullString
			department       sql.NullString
			street           sql.NullString
			neighborhood     sql.NullString
			city, region     sql.NullString
			postcode         sql.NullString
			country          sql.NullString
			formatted        sql.NullString
			groupID          sql.NullInt64
		)
		err := rows.Scan(&contactID, &kindName, &rowID,
			&displayName, &accountType, &accountName,
			&given, &middle, &family, &prefix, &suffix,
			&phGiven, &phMiddle, &phFamily, &phonetic,
			&value, &typeCode, &customLabel,
			&company, &jobTitle, &department,
			&street, &neighborhood, &city, &region, &postcode, &country, &formatted,
			&groupID)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		kind, ok := store.ParseKind(kindName)
		if !ok {
			continue
		}
		r := store.Record{
			ContactID:   fmt.Sprintf("%d", contactID),
			Kind:        kind,
			RowID:       fmt.Sprintf("%d", rowID),
			DisplayName: displayName.String,
			AccountType: accountType.String,
			AccountName: accountName.String,

			GivenName:          given.String,
			MiddleName:         middle.String,
			FamilyName:         family.String,
			Prefix:             prefix.String,
			Suffix:             suffix.String,
			PhoneticGivenName:  phGiven.String,
			PhoneticMiddleName: phMiddle.String,
			PhoneticFamilyName: phFamily.String,
			PhoneticName:       phonetic.String,

			Value:       value.String,
			TypeCode:    int(typeCode.Int64),
			CustomLabel: customLabel.String,

			Company:    company.String,
			JobTitle:   jobTitle.String,
			Department: department.String,

			Street:           street.String,
			Neighborhood:     neighborhood.String,
			City:             city.String,
			Region:           region.String,
			Postcode:         postcode.String,
			Country:          country.String,
			FormattedAddress: formatted.String,
		}
		if groupID.Valid {
			r.GroupID = fmt.Sprintf("%d", groupID.Int64)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) queryIdentifiers(ctx context.Context, q store.Query) ([]store.Record, error) {
	where := "1 = 1"
	var args []any
	if q.NamePrefix != "" {
		where = "display_name LIKE ? ESCAPE '\\'"
		args = append(args, escapeLike(q.NamePrefix)+"%")
	}
	order := "id"
	if q.OrderByGivenName {
		order = "display_name COLLATE NOCASE ASC, id"
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT id FROM contacts WHERE %s ORDER BY %s", where, order), args...)
	if err != nil {
		return nil, fmt.Errorf("query identifiers: %w", err)
	}
	defer rows.Close()

	var records []store.Record
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		records = append(records, store.Record{ContactID: fmt.Sprintf("%d", id)})
	}
	return records, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}
