// Package httpapi exposes the combat service over JSON HTTP and a
// per-encounter websocket feed.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stardrift-sim/stardrift/internal/combat/catalog"
	"github.com/stardrift-sim/stardrift/internal/combat/encounter"
	"github.com/stardrift-sim/stardrift/internal/combat/resolver"
	"github.com/stardrift-sim/stardrift/internal/combat/ship"
	"github.com/stardrift-sim/stardrift/internal/service"
	"github.com/stardrift-sim/stardrift/internal/storage"
)

// Handler routes API requests to the combat service.
type Handler struct {
	svc    *service.Service
	logger *log.Logger
	hub    *Hub
}

// New builds the API handler and its websocket hub.
func New(svc *service.Service, logger *log.Logger) *Handler {
	return &Handler{svc: svc, logger: logger, hub: NewHub(logger)}
}

// Router wires all HTTP routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/healthz", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/actions", h.handleListActions).Methods(http.MethodGet)
	r.HandleFunc("/api/roll", h.handleRoll).Methods(http.MethodPost)

	r.HandleFunc("/api/encounters", h.handleCreateEncounter).Methods(http.MethodPost)
	r.HandleFunc("/api/encounters", h.handleListEncounters).Methods(http.MethodGet)
	r.HandleFunc("/api/encounters/{id}", h.handleGetEncounter).Methods(http.MethodGet)
	r.HandleFunc("/api/encounters/{id}/actions", h.handleExecuteAction).Methods(http.MethodPost)
	r.HandleFunc("/api/encounters/{id}/fire", h.handleFire).Methods(http.MethodPost)
	r.HandleFunc("/api/encounters/{id}/turn/claim", h.handleClaimTurn).Methods(http.MethodPost)
	r.HandleFunc("/api/encounters/{id}/turn/release", h.handleReleaseTurn).Methods(http.MethodPost)
	r.HandleFunc("/api/encounters/{id}/turn/advance", h.handleAdvanceTurn).Methods(http.MethodPost)

	r.HandleFunc("/ws/encounters/{id}", h.handleEncounterFeed).Methods(http.MethodGet)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actionView is the catalog row shape served to clients.
type actionView struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Position    string `json:"position"`
	Description string `json:"description"`
	Major       bool   `json:"major"`
}

func (h *Handler) handleListActions(w http.ResponseWriter, _ *http.Request) {
	cat := h.svc.Catalog()
	var actions []actionView
	for _, name := range cat.Names() {
		config, _ := cat.Get(name)
		actions = append(actions, actionView{
			Name:        config.Name,
			Type:        string(config.Type),
			Position:    config.Position,
			Description: config.Description,
			Major:       cat.IsMajor(name),
		})
	}
	h.writeJSON(w, http.StatusOK, actions)
}

func (h *Handler) handleRoll(w http.ResponseWriter, r *http.Request) {
	var req service.RollRequest
	if !h.decode(w, r, &req) {
		return
	}
	roll, err := h.svc.ResolveRoll(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, roll)
}

// createEncounterRequest is the JSON shape for encounter creation.
type createEncounterRequest struct {
	Name        string           `json:"name"`
	MomentumMax int              `json:"momentum_max,omitempty"`
	PlayerSlots int              `json:"player_slots,omitempty"`
	PlayerIDs   []string         `json:"player_ids,omitempty"`
	Ships       []*ship.Starship `json:"ships"`
}

func (h *Handler) handleCreateEncounter(w http.ResponseWriter, r *http.Request) {
	var req createEncounterRequest
	if !h.decode(w, r, &req) {
		return
	}
	enc, err := h.svc.CreateEncounter(r.Context(), service.CreateEncounterRequest{
		Name:        req.Name,
		MomentumMax: req.MomentumMax,
		PlayerSlots: req.PlayerSlots,
		PlayerIDs:   req.PlayerIDs,
		Ships:       req.Ships,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, h.encounterView(r, enc.ID))
}

func (h *Handler) handleListEncounters(w http.ResponseWriter, r *http.Request) {
	encounters, err := h.svc.ListEncounters(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, encounters)
}

func (h *Handler) handleGetEncounter(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetEncounter(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// executeActionRequest is the JSON shape for a generic action.
type executeActionRequest struct {
	ShipID       string `json:"ship_id"`
	ActorID      string `json:"actor_id,omitempty"`
	Side         string `json:"side"`
	Action       string `json:"action"`
	Attribute    int    `json:"attribute"`
	Discipline   int    `json:"discipline"`
	Focus        bool   `json:"focus,omitempty"`
	BonusDice    int    `json:"bonus_dice,omitempty"`
	TargetSystem string `json:"target_system,omitempty"`
	WeaponIndex  int    `json:"weapon_index,omitempty"`
	HexDistance  int    `json:"hex_distance,omitempty"`
	Seed         int64  `json:"seed,omitempty"`
}

func (h *Handler) handleExecuteAction(w http.ResponseWriter, r *http.Request) {
	encounterID := mux.Vars(r)["id"]
	var req executeActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.ExecuteAction(r.Context(), service.ActionRequest{
		EncounterID:  encounterID,
		ShipID:       req.ShipID,
		ActorID:      req.ActorID,
		Side:         encounter.Side(req.Side),
		Action:       req.Action,
		Attribute:    req.Attribute,
		Discipline:   req.Discipline,
		Focus:        req.Focus,
		BonusDice:    req.BonusDice,
		TargetSystem: req.TargetSystem,
		WeaponIndex:  req.WeaponIndex,
		HexDistance:  req.HexDistance,
		Seed:         req.Seed,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.broadcast(r, encounterID, "action", resp)
	h.writeJSON(w, http.StatusOK, resp)
}

// fireRequest is the JSON shape for an attack.
type fireRequest struct {
	AttackerID   string `json:"attacker_id"`
	TargetID     string `json:"target_id"`
	ActorID      string `json:"actor_id,omitempty"`
	Side         string `json:"side"`
	WeaponIndex  int    `json:"weapon_index"`
	Attribute    int    `json:"attribute"`
	Discipline   int    `json:"discipline"`
	Focus        bool   `json:"focus,omitempty"`
	BonusDice    int    `json:"bonus_dice,omitempty"`
	HexDistance  int    `json:"hex_distance,omitempty"`
	ChosenSystem string `json:"chosen_system,omitempty"`
	Seed         int64  `json:"seed,omitempty"`
}

func (h *Handler) handleFire(w http.ResponseWriter, r *http.Request) {
	encounterID := mux.Vars(r)["id"]
	var req fireRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.FireWeapon(r.Context(), service.FireRequest{
		EncounterID:  encounterID,
		AttackerID:   req.AttackerID,
		TargetID:     req.TargetID,
		ActorID:      req.ActorID,
		Side:         encounter.Side(req.Side),
		WeaponIndex:  req.WeaponIndex,
		Attribute:    req.Attribute,
		Discipline:   req.Discipline,
		Focus:        req.Focus,
		BonusDice:    req.BonusDice,
		HexDistance:  req.HexDistance,
		ChosenSystem: req.ChosenSystem,
		Seed:         req.Seed,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.broadcast(r, encounterID, "fire", resp)
	h.writeJSON(w, http.StatusOK, resp)
}

// turnRequest identifies the acting player for claim and release.
type turnRequest struct {
	ActorID string `json:"actor_id"`
	Force   bool   `json:"force,omitempty"`
}

func (h *Handler) handleClaimTurn(w http.ResponseWriter, r *http.Request) {
	encounterID := mux.Vars(r)["id"]
	var req turnRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.ClaimTurn(r.Context(), encounterID, req.ActorID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if result.Success {
		h.broadcast(r, encounterID, "turn_claimed", result)
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleReleaseTurn(w http.ResponseWriter, r *http.Request) {
	encounterID := mux.Vars(r)["id"]
	var req turnRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.ReleaseTurn(r.Context(), encounterID, req.ActorID, req.Force)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if result.Released {
		h.broadcast(r, encounterID, "turn_released", result)
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleAdvanceTurn(w http.ResponseWriter, r *http.Request) {
	encounterID := mux.Vars(r)["id"]
	advance, err := h.svc.AdvanceTurn(r.Context(), encounterID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.broadcast(r, encounterID, "turn_advanced", advance)
	h.writeJSON(w, http.StatusOK, advance)
}

// encounterView reloads the aggregate after a mutation so responses
// and broadcasts carry fresh state.
func (h *Handler) encounterView(r *http.Request, encounterID string) any {
	view, err := h.svc.GetEncounter(r.Context(), encounterID)
	if err != nil {
		h.logger.Printf("reload encounter %s: %v", encounterID, err)
		return map[string]string{"id": encounterID}
	}
	return view
}

func (h *Handler) broadcast(r *http.Request, encounterID, event string, payload any) {
	h.hub.Broadcast(encounterID, feedMessage{
		Type:      event,
		Payload:   payload,
		Encounter: h.encounterView(r, encounterID),
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		h.logger.Printf("write response: %v", err)
	}
}

// writeError maps domain errors to HTTP statuses: missing records are
// 404, turn-ownership conflicts 409, validation and precondition
// failures 422, everything else 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, encounter.ErrNotYourTurn),
		errors.Is(err, encounter.ErrAlreadyActed),
		errors.Is(err, encounter.ErrMinorAlreadyUsed),
		errors.Is(err, encounter.ErrTurnNotClaimed):
		status = http.StatusConflict
	case errors.Is(err, resolver.ErrUnknownAction),
		errors.Is(err, resolver.ErrMissingTargetSystem),
		errors.Is(err, resolver.ErrUnknownToggle),
		errors.Is(err, service.ErrInvalidWeapon),
		errors.Is(err, service.ErrTooManyBonusDice):
		status = http.StatusBadRequest
	case errors.Is(err, resolver.ErrActionUnavailable),
		errors.Is(err, resolver.ErrNoReservePower),
		errors.Is(err, resolver.ErrFlagRequired),
		errors.Is(err, resolver.ErrInsufficientMomentum),
		errors.Is(err, resolver.ErrInsufficientThreat),
		errors.Is(err, resolver.ErrNoEnergyWeapon),
		errors.Is(err, resolver.ErrEffectConflict),
		errors.Is(err, catalog.ErrOutOfRange),
		errors.Is(err, service.ErrWeaponsNotArmed),
		errors.Is(err, service.ErrEncounterInactive):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.logger.Printf("request failed: %v", err)
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
