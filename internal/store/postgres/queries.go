package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/shipdesk/internal/model"
	"github.com/alfredjeanlab/shipdesk/internal/store"
)

// shipmentColumns is the column list used for SELECT statements on
// shipment_requests joined with owners.
const shipmentColumns = `sr.id, sr.name, sr.status, sr.destination, sr.estimated_delivery,
	sr.owner_id, o.name, sr.created_at, sr.created_by, sr.updated_at, sr.deleted_at`

const shipmentFrom = ` FROM shipment_requests sr LEFT JOIN owners o ON o.id = sr.owner_id`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements the store.Store reads and writes against either the
// pool or an open transaction.
type queries struct {
	db executor
}

func notFound(what, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, store.ErrNotFound)
	}
	return err
}

func (q queries) CreateShipmentRequest(ctx context.Context, r *model.ShipmentRequest) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO shipment_requests (
			id, name, status, destination, estimated_delivery,
			owner_id, created_at, created_by, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)`,
		r.ID,
		r.Name,
		string(r.Status),
		r.Destination,
		nullTimePtr(r.EstimatedDelivery),
		nullString(r.OwnerID),
		r.CreatedAt,
		r.CreatedBy,
		r.UpdatedAt,
	)
	return err
}

func (q queries) GetShipmentRequest(ctx context.Context, id string) (*model.ShipmentRequest, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+shipmentColumns+shipmentFrom+` WHERE sr.id = $1 AND sr.deleted_at IS NULL`, id)
	r, err := scanShipmentRequest(row)
	if err != nil {
		return nil, notFound("shipment request", id, err)
	}
	return r, nil
}

func (q queries) ListShipmentRequests(ctx context.Context, filter model.ShipmentFilter) ([]*model.ShipmentRequest, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if !filter.IncludeDeleted {
		whereClauses = append(whereClauses, "sr.deleted_at IS NULL")
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "sr.status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.Destination != "" {
		whereClauses = append(whereClauses, "sr.destination = "+nextArg())
		args = append(args, filter.Destination)
	}

	if filter.OwnerID != "" {
		whereClauses = append(whereClauses, "sr.owner_id = "+nextArg())
		args = append(args, filter.OwnerID)
	}

	if filter.Search != "" {
		p := nextArg()
		whereClauses = append(whereClauses,
			fmt.Sprintf("(sr.name ILIKE '%%' || %s || '%%' OR sr.destination ILIKE '%%' || %s || '%%')", p, p))
		args = append(args, filter.Search)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + shipmentColumns + shipmentFrom + whereSQL +
		" ORDER BY " + parseSortClause(filter.Sort)

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := q.db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list shipment requests: %w", err)
	}
	defer rows.Close()

	var out []*model.ShipmentRequest
	var total int
	for rows.Next() {
		r, t, err := scanShipmentRequestWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan shipment requests: %w", err)
		}
		total = t
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan shipment requests: %w", err)
	}

	return out, total, nil
}

func (q queries) UpdateShipmentRequest(ctx context.Context, r *model.ShipmentRequest) error {
	err := q.db.QueryRowContext(ctx, `
		UPDATE shipment_requests SET
			name = $2,
			status = $3,
			destination = $4,
			estimated_delivery = $5,
			owner_id = $6,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`,
		r.ID,
		r.Name,
		string(r.Status),
		r.Destination,
		nullTimePtr(r.EstimatedDelivery),
		nullString(r.OwnerID),
	).Scan(&r.UpdatedAt)
	return notFound("shipment request", r.ID, err)
}

// DeleteShipmentRequest soft-deletes a live request.
func (q queries) DeleteShipmentRequest(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE shipment_requests SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("shipment request %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// UndeleteShipmentRequest restores a soft-deleted request and returns it.
func (q queries) UndeleteShipmentRequest(ctx context.Context, id string) (*model.ShipmentRequest, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE shipment_requests SET deleted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("deleted shipment request %s: %w", id, store.ErrNotFound)
	}
	return q.GetShipmentRequest(ctx, id)
}

func (q queries) CreateOwner(ctx context.Context, o *model.Owner) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO owners (id, name) VALUES ($1, $2)`, o.ID, o.Name)
	return err
}

func (q queries) GetOwner(ctx context.Context, id string) (*model.Owner, error) {
	var o model.Owner
	err := q.db.QueryRowContext(ctx, `SELECT id, name FROM owners WHERE id = $1`, id).Scan(&o.ID, &o.Name)
	if err != nil {
		return nil, notFound("owner", id, err)
	}
	return &o, nil
}

func (q queries) ListOwners(ctx context.Context) ([]*model.Owner, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name FROM owners ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var out []*model.Owner
	for rows.Next() {
		var o model.Owner
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, fmt.Errorf("scan owners: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

// parseSortClause converts a "-column" style sort key into an ORDER BY
// clause. Unknown columns fall back to newest first.
func parseSortClause(sort string) string {
	if sort == "" {
		return "sr.created_at DESC"
	}
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	allowed := map[string]bool{
		"name": true, "status": true, "destination": true,
		"estimated_delivery": true, "created_at": true, "updated_at": true,
	}
	if !allowed[col] {
		return "sr.created_at DESC"
	}
	if desc {
		return "sr." + col + " DESC"
	}
	return "sr." + col + " ASC"
}
