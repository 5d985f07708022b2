package postgres

import (
	"database/sql"
	"time"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// shipmentScan holds the nullable destinations for one shipment row.
type shipmentScan struct {
	r                 model.ShipmentRequest
	estimatedDelivery sql.NullTime
	ownerID           sql.NullString
	ownerName         sql.NullString
	deletedAt         sql.NullTime
}

func (s *shipmentScan) dest() []any {
	return []any{
		&s.r.ID,
		&s.r.Name,
		&s.r.Status,
		&s.r.Destination,
		&s.estimatedDelivery,
		&s.ownerID,
		&s.ownerName,
		&s.r.CreatedAt,
		&s.r.CreatedBy,
		&s.r.UpdatedAt,
		&s.deletedAt,
	}
}

func (s *shipmentScan) result() *model.ShipmentRequest {
	r := s.r
	r.EstimatedDelivery = timePtr(s.estimatedDelivery)
	r.DeletedAt = timePtr(s.deletedAt)
	r.OwnerID = s.ownerID.String
	if s.ownerID.Valid && s.ownerName.Valid {
		r.Owner = &model.Owner{ID: s.ownerID.String, Name: s.ownerName.String}
	}
	return &r
}

// scanShipmentRequest scans a single row into a model.ShipmentRequest.
// The row must contain columns in the order defined by shipmentColumns.
func scanShipmentRequest(row scannable) (*model.ShipmentRequest, error) {
	var s shipmentScan
	if err := row.Scan(s.dest()...); err != nil {
		return nil, err
	}
	return s.result(), nil
}

// scanShipmentRequestWithTotal scans a row that has a leading total_count
// column followed by the standard shipment columns.
func scanShipmentRequestWithTotal(row scannable) (*model.ShipmentRequest, int, error) {
	var (
		total int
		s     shipmentScan
	)
	if err := row.Scan(append([]any{&total}, s.dest()...)...); err != nil {
		return nil, 0, err
	}
	return s.result(), total, nil
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// nullTimePtr converts a *time.Time to a sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
