package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/clap"
	"github.com/ayusman/mudra/internal/store"
)

// SettingsTarget is the running pipeline whose settings are exposed.
type SettingsTarget interface {
	Settings() app.Settings
	UpdateConfig(app.Settings) error
}

// SettingsHandler reads and updates the runtime toggles. Updates are
// persisted before they are pushed to the pipeline.
type SettingsHandler struct {
	store  *store.Store
	target SettingsTarget
}

// NewSettingsHandler creates a SettingsHandler. The store may be nil.
func NewSettingsHandler(s *store.Store, target SettingsTarget) *SettingsHandler {
	return &SettingsHandler{store: s, target: target}
}

type settingsResponse struct {
	RequireTipTouch  bool    `json:"require_tip_touch"`
	MissingData      string  `json:"missing_data"`
	StraightRatio    float64 `json:"straight_ratio"`
	TipTouchDistance float64 `json:"tip_touch_distance"`
	MaxDistance      float64 `json:"clap_max_distance"`
	MinHold          string  `json:"clap_min_hold"`
	MaxHold          string  `json:"clap_max_hold"`
	DoubleClapWindow string  `json:"double_clap_window"`
	SnapWindow       string  `json:"snap_window"`
}

type updateSettingsRequest struct {
	RequireTipTouch *bool   `json:"require_tip_touch"`
	MissingData     *string `json:"missing_data"`
}

func toSettingsResponse(s app.Settings) settingsResponse {
	return settingsResponse{
		RequireTipTouch:  s.Gesture.RequireTipTouch,
		MissingData:      s.Clap.MissingData.String(),
		StraightRatio:    s.Gesture.StraightRatio,
		TipTouchDistance: s.Gesture.TipTouchDistance,
		MaxDistance:      s.Clap.MaxDistance,
		MinHold:          s.Clap.MinHold.String(),
		MaxHold:          s.Clap.MaxHold.String(),
		DoubleClapWindow: s.Clap.DoubleClapWindow.String(),
		SnapWindow:       s.SnapWindow.String(),
	}
}

// ServeHTTP handles GET and PUT /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toSettingsResponse(h.target.Settings()))
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	settings := h.target.Settings()
	if req.RequireTipTouch != nil {
		settings.Gesture.RequireTipTouch = *req.RequireTipTouch
	}
	if req.MissingData != nil {
		policy, err := clap.ParseMissingDataPolicy(*req.MissingData)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid missing_data policy")
			return
		}
		settings.Clap.MissingData = policy
	}

	if h.store != nil {
		repo := h.store.Settings()
		if err := repo.SetBool(store.SettingRequireTipTouch, settings.Gesture.RequireTipTouch); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
		if err := repo.Set(store.SettingMissingData, settings.Clap.MissingData.String()); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}

	if err := h.target.UpdateConfig(settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(h.target.Settings()))
}

// ApplyStored overlays the persisted toggles onto s. Missing keys keep the
// values already in s.
func ApplyStored(st *store.Store, s app.Settings) (app.Settings, error) {
	repo := st.Settings()

	tip, err := repo.GetBool(store.SettingRequireTipTouch, s.Gesture.RequireTipTouch)
	if err != nil {
		return s, err
	}
	s.Gesture.RequireTipTouch = tip

	raw, err := repo.Get(store.SettingMissingData)
	switch {
	case err == nil:
		policy, perr := clap.ParseMissingDataPolicy(raw)
		if perr != nil {
			return s, perr
		}
		s.Clap.MissingData = policy
	case !errors.Is(err, store.ErrNotFound):
		return s, err
	}

	return s, nil
}
