package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/shipdesk/internal/idgen"
	"github.com/alfredjeanlab/shipdesk/internal/model"
	"github.com/alfredjeanlab/shipdesk/internal/store"
)

// createShipmentInput holds transport-agnostic parameters for creating a
// shipment request.
type createShipmentInput struct {
	Name              string       `json:"name"`
	Status            model.Status `json:"status"`
	Destination       string       `json:"destination"`
	EstimatedDelivery string       `json:"estimated_delivery"` // YYYY-MM-DD
	OwnerID           string       `json:"owner_id"`
	CreatedBy         string       `json:"created_by"`
}

// updateShipmentInput carries a field delta and an optional reassignment.
type updateShipmentInput struct {
	Fields    model.FieldDelta `json:"fields"`
	OwnerID   *string          `json:"owner_id,omitempty"`
	UpdatedBy string           `json:"updated_by"`
}

// createShipmentRequest validates input, persists a new request and
// publishes a CREATE change. Returns inputError for validation failures.
func (s *Server) createShipmentRequest(ctx context.Context, in createShipmentInput) (*model.ShipmentRequest, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, inputError("name is required")
	}
	if in.Status == "" {
		in.Status = model.StatusSubmitted
	}

	now := time.Now().UTC()
	id, err := idgen.New(idgen.ShipmentRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	r := &model.ShipmentRequest{
		ID:          id,
		Name:        in.Name,
		Status:      in.Status,
		Destination: in.Destination,
		OwnerID:     in.OwnerID,
		CreatedAt:   now,
		CreatedBy:   in.CreatedBy,
		UpdatedAt:   now,
	}
	if in.EstimatedDelivery != "" {
		t, err := time.Parse(model.DateLayout, in.EstimatedDelivery)
		if err != nil {
			return nil, inputError("estimated_delivery must be a date (" + model.DateLayout + ")")
		}
		r.EstimatedDelivery = &t
	}
	if err := model.ValidateShipmentRequest(r); err != nil {
		return nil, inputError("invalid shipment request: " + err.Error())
	}

	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := s.checkOwner(ctx, tx, r.OwnerID); err != nil {
			return err
		}
		if err := tx.CreateShipmentRequest(ctx, r); err != nil {
			return fmt.Errorf("failed to create shipment request: %w", err)
		}
		created, err := tx.GetShipmentRequest(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("failed to read back shipment request: %w", err)
		}
		r = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishChange(ctx, model.ChangeCreate, r.CreatedBy, nil, r.ID)
	return r, nil
}

// updateShipmentRequest applies a field delta and/or reassignment in one
// transaction and publishes an UPDATE change naming the touched fields.
func (s *Server) updateShipmentRequest(ctx context.Context, id string, in updateShipmentInput) (*model.ShipmentRequest, error) {
	if len(in.Fields) == 0 && in.OwnerID == nil {
		return nil, inputError("no changes requested")
	}
	if len(in.Fields) > 0 {
		if err := model.ValidateDelta(in.Fields); err != nil {
			return nil, inputError("invalid fields: " + err.Error())
		}
	}

	var updated *model.ShipmentRequest
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		r, err := tx.GetShipmentRequest(ctx, id)
		if err != nil {
			return err
		}
		if len(in.Fields) > 0 {
			if err := in.Fields.Apply(r); err != nil {
				return inputError("invalid fields: " + err.Error())
			}
		}
		if in.OwnerID != nil {
			if err := s.checkOwner(ctx, tx, *in.OwnerID); err != nil {
				return err
			}
			r.OwnerID = *in.OwnerID
		}
		if err := tx.UpdateShipmentRequest(ctx, r); err != nil {
			return err
		}
		updated, err = tx.GetShipmentRequest(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	changed := make(model.FieldDelta, len(in.Fields)+1)
	for k, v := range in.Fields {
		changed[k] = v
	}
	if in.OwnerID != nil {
		changed["owner_id"] = *in.OwnerID
	}
	s.publishChange(ctx, model.ChangeUpdate, in.UpdatedBy, changed, id)
	return updated, nil
}

func (s *Server) deleteShipmentRequest(ctx context.Context, id, actor string) error {
	if err := s.store.DeleteShipmentRequest(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx, model.ChangeDelete, actor, nil, id)
	return nil
}

func (s *Server) undeleteShipmentRequest(ctx context.Context, id, actor string) (*model.ShipmentRequest, error) {
	r, err := s.store.UndeleteShipmentRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishChange(ctx, model.ChangeUndelete, actor, nil, id)
	return r, nil
}

func (s *Server) createOwner(ctx context.Context, name string) (*model.Owner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, inputError("name is required")
	}
	id, err := idgen.New(idgen.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}
	o := &model.Owner{ID: id, Name: name}
	if err := s.store.CreateOwner(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}
	return o, nil
}

// checkOwner rejects assignment to an owner that does not exist. An empty
// id unassigns and is always accepted.
func (s *Server) checkOwner(ctx context.Context, tx store.Store, ownerID string) error {
	if ownerID == "" {
		return nil
	}
	if _, err := tx.GetOwner(ctx, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return inputError("unknown owner " + ownerID)
		}
		return fmt.Errorf("failed to look up owner: %w", err)
	}
	return nil
}
