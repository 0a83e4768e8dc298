package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/karsidev/karsi/backend"
	"github.com/karsidev/karsi/normalize"
	"github.com/karsidev/karsi/types"
)

// applicationsView is the payload of GET /api/applications.
type applicationsView struct {
	Applications     []normalize.ApplicationRollup `json:"applications"`
	Unassigned       *normalize.ApplicationRollup  `json:"unassigned,omitempty"`
	ApplicationNames []string                      `json:"application_names"`
}

// assetView is the payload of GET /api/assets/{id}.
type assetView struct {
	Asset           normalize.NormalizedAsset `json:"asset"`
	AcceptanceState types.AcceptanceState     `json:"acceptance_state"`
}

// actionRequest is the body of accept/revoke posts.
type actionRequest struct {
	AssetType    string `json:"asset_type"`
	AcceptedType string `json:"accepted_type,omitempty"`
}

// actionResponse reports the confirmed state after an action.
type actionResponse struct {
	AssetID string                `json:"asset_id"`
	State   types.AcceptanceState `json:"state"`
}

func filtersFromQuery(r *http.Request) backend.Filters {
	q := r.URL.Query()
	return backend.Filters{
		Application: q.Get("application"),
		Department:  q.Get("department"),
		Provider:    q.Get("provider"),
	}
}

func (s *Server) handleApplications(w http.ResponseWriter, r *http.Request) {
	resp, err := s.backend.FetchApplications(r.Context(), filtersFromQuery(r))
	if err != nil {
		s.logger.Error().Err(err).Msg("fetch applications failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	view := applicationsView{
		Applications:     normalize.RollupApplications(resp.Assigned),
		Unassigned:       normalize.ConsolidateUnassigned(resp.Unassigned),
		ApplicationNames: normalize.ApplicationNames(resp.Assigned),
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleApplication(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	resp, err := s.backend.FetchApplications(r.Context(), backend.Filters{})
	if err != nil {
		s.logger.Error().Err(err).Msg("fetch applications failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if name == normalize.UnassignedName {
		if rollup := normalize.ConsolidateUnassigned(resp.Unassigned); rollup != nil {
			writeJSON(w, http.StatusOK, rollup)
			return
		}
		writeError(w, http.StatusNotFound, "no unassigned assets")
		return
	}

	for _, rollup := range normalize.RollupApplications(resp.Assigned) {
		if rollup.Name == name {
			writeJSON(w, http.StatusOK, rollup)
			return
		}
	}
	writeError(w, http.StatusNotFound, "unknown application")
}

// handleRecommendations serves the raw category feeds. The vm feed is
// the merged exclusive plus load-balanced result.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	f := filtersFromQuery(r)

	var (
		payload any
		err     error
	)
	switch r.PathValue("category") {
	case "vm":
		payload, err = s.backend.FetchVMRecommendations(r.Context(), f)
	case "db":
		payload, err = s.backend.FetchDBRecommendations(r.Context(), f, r.URL.Query().Get("db_type"))
	case "storage":
		payload, err = s.backend.FetchStorageRecommendations(r.Context(), f)
	case "iops":
		payload, err = s.backend.FetchIOPSRecommendations(r.Context(), f)
	default:
		writeError(w, http.StatusNotFound, "unknown recommendation category")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("fetch recommendations failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	resp, err := s.backend.FetchApplications(r.Context(), backend.Filters{})
	if err != nil {
		s.logger.Error().Err(err).Msg("fetch applications failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	asset, ok := findAsset(resp, id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown asset")
		return
	}

	state, err := s.acceptor.State(id)
	if err != nil {
		s.logger.Error().Err(err).Str("asset_id", id).Msg("acceptance state lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, assetView{
		Asset:           normalize.Normalize(asset),
		AcceptanceState: state,
	})
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req, category, ok := s.decodeAction(w, r)
	if !ok {
		return
	}

	variant, err := types.ParseVariant(req.AcceptedType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := s.acceptor.Accept(r.Context(), id, category, variant)
	if err != nil {
		s.mapActionError(w, id, err)
		return
	}
	if s.recorder != nil {
		s.recorder.RecordAccept(r.Context(), string(variant))
	}
	writeJSON(w, http.StatusOK, actionResponse{AssetID: id, State: state})
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	_, category, ok := s.decodeAction(w, r)
	if !ok {
		return
	}

	state, err := s.acceptor.Revoke(r.Context(), id, category)
	if err != nil {
		s.mapActionError(w, id, err)
		return
	}
	if s.recorder != nil {
		s.recorder.RecordRevoke(r.Context())
	}
	writeJSON(w, http.StatusOK, actionResponse{AssetID: id, State: state})
}

func (s *Server) decodeAction(w http.ResponseWriter, r *http.Request) (actionRequest, types.Category, bool) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return req, "", false
	}

	category := types.Category(req.AssetType)
	if !category.Valid() {
		writeError(w, http.StatusBadRequest, "asset_type must be vm, db or storage")
		return req, "", false
	}
	return req, category, true
}

func findAsset(resp *backend.ApplicationsResponse, id string) (types.Asset, bool) {
	for _, a := range resp.Assigned {
		if a.AssetID == id {
			return a, true
		}
	}
	for _, a := range resp.Unassigned {
		if a.AssetID == id {
			return a, true
		}
	}
	return types.Asset{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
