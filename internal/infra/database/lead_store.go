package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/growthkit/leadflow/internal/entity"
	"github.com/growthkit/leadflow/internal/usecase"
)

// Property display names map to columns so the Postgres store answers the
// same queries the Notion adapter does.
var propertyColumns = map[string]string{
	"Name":       "name",
	"Company":    "company",
	"Role":       "role",
	"Email":      "email",
	"Source URL": "source_url",
	"Status":     "status",
	"Notes":      "notes",
}

var columnProperties = func() map[string]string {
	out := make(map[string]string, len(propertyColumns))
	for prop, col := range propertyColumns {
		out[col] = prop
	}
	return out
}()

// LeadStore implements usecase.LeadStore on Postgres. Schema:
//
//	lead_databases(id text primary key, name text not null)
//	lead_pages(id text primary key, database_id text references lead_databases,
//	           name, company, role, email, source_url, status, notes text,
//	           created_at, updated_at timestamptz)
type LeadStore struct {
	DB *sql.DB
}

func NewLeadStore(db *sql.DB) *LeadStore {
	return &LeadStore{DB: db}
}

func (s *LeadStore) ListDatabases(ctx context.Context) ([]entity.DatabaseTarget, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name FROM lead_databases ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []entity.DatabaseTarget
	for rows.Next() {
		var target entity.DatabaseTarget
		if err := rows.Scan(&target.ID, &target.Name); err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

func (s *LeadStore) QueryDatabase(ctx context.Context, dbID string, filter usecase.StoreFilter) ([]usecase.StoreRecord, error) {
	query := `
		SELECT id, name, company, role, email, source_url, status, notes
		FROM lead_pages
		WHERE database_id = $1
	`
	args := []any{dbID}

	if filter.Property != "" {
		column, ok := propertyColumns[filter.Property]
		if !ok {
			return nil, fmt.Errorf("unknown property %q", filter.Property)
		}
		query += fmt.Sprintf(" AND LOWER(%s) = LOWER($2)", column)
		args = append(args, filter.Equals)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []usecase.StoreRecord
	for rows.Next() {
		var id string
		values := make([]sql.NullString, 7)
		if err := rows.Scan(&id, &values[0], &values[1], &values[2], &values[3], &values[4], &values[5], &values[6]); err != nil {
			return nil, err
		}

		props := make(map[string]string, len(values))
		for i, column := range []string{"name", "company", "role", "email", "source_url", "status", "notes"} {
			if values[i].Valid {
				props[columnProperties[column]] = values[i].String
			}
		}
		records = append(records, usecase.StoreRecord{PageID: id, Properties: props})
	}
	return records, rows.Err()
}

func (s *LeadStore) ListDatabasePages(ctx context.Context, dbID string) ([]usecase.StoreRecord, error) {
	return s.QueryDatabase(ctx, dbID, usecase.StoreFilter{})
}

func (s *LeadStore) CreatePage(ctx context.Context, dbID string, properties map[string]string) (string, error) {
	pageID := uuid.New().String()

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO lead_pages (id, database_id, name, company, role, email, source_url, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`,
		pageID,
		dbID,
		nullString(properties["Name"]),
		nullString(properties["Company"]),
		nullString(properties["Role"]),
		nullString(properties["Email"]),
		nullString(properties["Source URL"]),
		nullString(properties["Status"]),
		nullString(properties["Notes"]),
	)
	if err != nil {
		return "", err
	}
	return pageID, nil
}

func (s *LeadStore) UpdatePage(ctx context.Context, pageID string, properties map[string]string) error {
	result, err := s.DB.ExecContext(ctx, `
		UPDATE lead_pages SET
			name = COALESCE($2, name),
			company = COALESCE($3, company),
			role = COALESCE($4, role),
			email = COALESCE($5, email),
			source_url = COALESCE($6, source_url),
			status = COALESCE($7, status),
			notes = COALESCE($8, notes),
			updated_at = NOW()
		WHERE id = $1
	`,
		pageID,
		nullString(properties["Name"]),
		nullString(properties["Company"]),
		nullString(properties["Role"]),
		nullString(properties["Email"]),
		nullString(properties["Source URL"]),
		nullString(properties["Status"]),
		nullString(properties["Notes"]),
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("page %q not found", pageID)
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
