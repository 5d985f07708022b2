package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// handleCreateShipment handles POST /v1/shipments.
func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	var in createShipmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sr, err := s.createShipmentRequest(r.Context(), in)
	if err != nil {
		s.writeStoreError(w, err, "owner not found", "failed to create shipment request")
		return
	}
	writeJSON(w, http.StatusCreated, sr)
}

// handleListShipments handles GET /v1/shipments.
func (s *Server) handleListShipments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ShipmentFilter{
		Destination: q.Get("destination"),
		OwnerID:     q.Get("owner_id"),
		Search:      q.Get("search"),
		Sort:        q.Get("sort"),
	}

	if v := q.Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.Status(st))
		}
	}
	if v := q.Get("include_deleted"); v != "" {
		filter.IncludeDeleted, _ = strconv.ParseBool(v)
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	list, total, err := s.store.ListShipmentRequests(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list shipment requests", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list shipment requests")
		return
	}

	// Ensure the list is never null in JSON output.
	if list == nil {
		list = []*model.ShipmentRequest{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"shipments": list,
		"total":     total,
	})
}

// handleGetShipment handles GET /v1/shipments/{id}.
func (s *Server) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sr, err := s.store.GetShipmentRequest(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "shipment request not found", "failed to get shipment request")
		return
	}
	writeJSON(w, http.StatusOK, sr)
}

// handleUpdateShipment handles PATCH /v1/shipments/{id}.
func (s *Server) handleUpdateShipment(w http.ResponseWriter, r *http.Request) {
	var in updateShipmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sr, err := s.updateShipmentRequest(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.writeStoreError(w, err, "shipment request not found", "failed to update shipment request")
		return
	}
	writeJSON(w, http.StatusOK, sr)
}

// handleDeleteShipment handles DELETE /v1/shipments/{id}.
func (s *Server) handleDeleteShipment(w http.ResponseWriter, r *http.Request) {
	actor := r.URL.Query().Get("actor")
	if err := s.deleteShipmentRequest(r.Context(), r.PathValue("id"), actor); err != nil {
		s.writeStoreError(w, err, "shipment request not found", "failed to delete shipment request")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUndeleteShipment handles POST /v1/shipments/{id}/undelete.
func (s *Server) handleUndeleteShipment(w http.ResponseWriter, r *http.Request) {
	actor := r.URL.Query().Get("actor")
	sr, err := s.undeleteShipmentRequest(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		s.writeStoreError(w, err, "deleted shipment request not found", "failed to undelete shipment request")
		return
	}
	writeJSON(w, http.StatusOK, sr)
}

// handleListOwners handles GET /v1/owners.
func (s *Server) handleListOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := s.store.ListOwners(r.Context())
	if err != nil {
		s.logger.Error("failed to list owners", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list owners")
		return
	}
	if owners == nil {
		owners = []*model.Owner{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"owners": owners})
}

// handleCreateOwner handles POST /v1/owners.
func (s *Server) handleCreateOwner(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	o, err := s.createOwner(r.Context(), in.Name)
	if err != nil {
		s.writeStoreError(w, err, "owner not found", "failed to create owner")
		return
	}
	writeJSON(w, http.StatusCreated, o)
}
