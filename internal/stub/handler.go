package stub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bitevents/bitevents/internal/model"
)

// Handler translates HTTP requests to and from the service/store layers.
type Handler struct {
	svc    *Service
	store  *Store
	logger *zap.Logger
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, store *Store, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, store: store, logger: logger}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

type ctxKey int

const ctxUser ctxKey = iota

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Message: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// currentUser returns the authenticated user placed by the auth middleware.
func currentUser(r *http.Request) *model.User {
	u, _ := r.Context().Value(ctxUser).(*model.User)
	return u
}

// Authenticate requires a valid bearer token and loads its user into the
// request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.userFromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUser, user)))
	})
}

// MaybeAuthenticate loads a user when a valid token is present but lets
// anonymous requests through. GET /events/{id} uses it to fill the
// isUserRegistered flag.
func (h *Handler) MaybeAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := h.userFromRequest(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), ctxUser, user))
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) userFromRequest(r *http.Request) (*model.User, bool) {
	raw := r.Header.Get("Authorization")
	if !strings.HasPrefix(raw, "Bearer ") {
		return nil, false
	}
	userID, err := h.svc.ParseToken(strings.TrimPrefix(raw, "Bearer "))
	if err != nil {
		return nil, false
	}
	user, err := h.store.UserByID(r.Context(), userID)
	if err != nil {
		return nil, false
	}
	return user, true
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

// RegisterAccount handles POST /auth/register.
func (h *Handler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	resp, err := h.svc.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			writeError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ─── Events ───────────────────────────────────────────────────────────────────

// ListEvents handles GET /events with search/city/category/page/limit params.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 12
	}

	resp, err := h.store.ListEvents(r.Context(), q.Get("search"), q["city"], q.Get("category"), page, limit)
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetEvent handles GET /events/{id}, enriching the event with registration
// context for the requesting user (if any).
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	event, err := h.store.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.logger.Error("get event failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}

	count, err := h.store.RegistrationCount(r.Context(), id)
	if err != nil {
		h.logger.Error("registration count failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}

	detail := model.EventDetail{Event: *event, RegistrationCount: count}
	if event.Capacity != nil {
		spots := *event.Capacity - int(count)
		detail.AvailableSpots = &spots
	}
	if user := currentUser(r); user != nil {
		registered, err := h.store.IsRegistered(r.Context(), id, user.ID)
		if err == nil {
			detail.IsUserRegistered = registered
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

// CreateEvent handles POST /events (organizer only).
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if !user.IsOrganizer {
		writeError(w, http.StatusForbidden, "Only organizers can create events")
		return
	}

	var req model.EventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.svc.ValidateEvent(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.store.CreateEvent(r.Context(), user.ID, req)
	if err != nil {
		h.logger.Error("create event failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PUT /events/{id} (owner only).
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}
	if !h.requireOwner(w, r, id) {
		return
	}

	var req model.EventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.svc.ValidateEvent(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.store.UpdateEvent(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update event failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/{id} (owner only).
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}
	if !h.requireOwner(w, r, id) {
		return
	}
	if err := h.store.DeleteEvent(r.Context(), id); err != nil {
		h.logger.Error("delete event failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireOwner resolves the event and rejects callers who do not own it.
func (h *Handler) requireOwner(w http.ResponseWriter, r *http.Request, eventID int64) bool {
	owner, err := h.store.EventOwner(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
		} else {
			h.logger.Error("event owner lookup failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to resolve event")
		}
		return false
	}
	if owner != currentUser(r).ID {
		writeError(w, http.StatusForbidden, "You do not own this event")
		return false
	}
	return true
}

// ─── Saved events ─────────────────────────────────────────────────────────────

// SaveEvent handles POST /saved-events/{eventId}.
func (h *Handler) SaveEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}
	saved, err := h.store.SaveEvent(r.Context(), id, currentUser(r).ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "Event not found")
		case errors.Is(err, ErrAlreadySaved):
			writeError(w, http.StatusConflict, "Event already saved")
		default:
			h.logger.Error("save event failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to save event")
		}
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// UnsaveEvent handles DELETE /saved-events/{eventId}.
func (h *Handler) UnsaveEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}
	if err := h.store.UnsaveEvent(r.Context(), id, currentUser(r).ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Saved event not found")
			return
		}
		h.logger.Error("unsave event failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to remove saved event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSavedEvents handles GET /saved-events.
func (h *Handler) ListSavedEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.SavedByUser(r.Context(), currentUser(r).ID)
	if err != nil {
		h.logger.Error("list saved events failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list saved events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// CheckSavedEvent handles GET /saved-events/check/{eventId}.
func (h *Handler) CheckSavedEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}
	saved, err := h.store.IsSaved(r.Context(), id, currentUser(r).ID)
	if err != nil {
		h.logger.Error("check saved event failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to check saved event")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isSaved": saved})
}

// ─── Registrations ────────────────────────────────────────────────────────────

// RegisterForEvent handles POST /registrations/events/{eventId}.
func (h *Handler) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}
	reg, err := h.store.Register(r.Context(), id, currentUser(r).ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "Event not found")
		case errors.Is(err, ErrEventFull):
			writeError(w, http.StatusConflict, "Event is fully booked")
		case errors.Is(err, ErrAlreadyRegistered):
			writeError(w, http.StatusConflict, "You are already registered for this event")
		default:
			h.logger.Error("register failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to register")
		}
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// UnregisterFromEvent handles DELETE /registrations/events/{eventId}.
func (h *Handler) UnregisterFromEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}
	if err := h.store.Unregister(r.Context(), id, currentUser(r).ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Registration not found")
			return
		}
		h.logger.Error("unregister failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to unregister")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MyRegistrations handles GET /registrations/events/my.
func (h *Handler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.store.RegistrationsByUser(r.Context(), currentUser(r).ID)
	if err != nil {
		h.logger.Error("list registrations failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list registrations")
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

// EventRegistrations handles GET /registrations/events/{eventId} (owner only).
func (h *Handler) EventRegistrations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}
	if !h.requireOwner(w, r, id) {
		return
	}
	regs, err := h.store.RegistrationsByEvent(r.Context(), id)
	if err != nil {
		h.logger.Error("list event registrations failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list registrations")
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

// CheckRegistration handles GET /registrations/check/{eventId}.
func (h *Handler) CheckRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}
	registered, err := h.store.IsRegistered(r.Context(), id, currentUser(r).ID)
	if err != nil {
		h.logger.Error("check registration failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to check registration")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isRegistered": registered})
}

// ─── Profile ──────────────────────────────────────────────────────────────────

// Me handles GET /users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

// UpdateProfile handles PUT /users/me.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, "Full name is required")
		return
	}
	user, err := h.store.UpdateProfile(r.Context(), currentUser(r).ID, req.FullName, req.ProfilePicture)
	if err != nil {
		h.logger.Error("update profile failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ChangePassword handles PUT /users/me/password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.svc.ChangePassword(r.Context(), currentUser(r).ID, req); err != nil {
		if errors.Is(err, ErrBadCredentials) {
			writeError(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccount handles DELETE /users/me.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteUser(r.Context(), currentUser(r).ID); err != nil {
		h.logger.Error("delete account failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Organizer ────────────────────────────────────────────────────────────────

// requireOrganizer rejects non-organizer callers.
func (h *Handler) requireOrganizer(w http.ResponseWriter, r *http.Request) bool {
	if !currentUser(r).IsOrganizer {
		writeError(w, http.StatusForbidden, "Organizer access required")
		return false
	}
	return true
}

// OrganizerEvents handles GET /organizer/events.
func (h *Handler) OrganizerEvents(w http.ResponseWriter, r *http.Request) {
	if !h.requireOrganizer(w, r) {
		return
	}
	events, err := h.store.EventsByOrganizer(r.Context(), currentUser(r).ID)
	if err != nil {
		h.logger.Error("organizer events failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// OrganizerDashboard handles GET /organizer/dashboard.
func (h *Handler) OrganizerDashboard(w http.ResponseWriter, r *http.Request) {
	if !h.requireOrganizer(w, r) {
		return
	}
	events, err := h.store.EventsByOrganizer(r.Context(), currentUser(r).ID)
	if err != nil {
		h.logger.Error("organizer dashboard failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	var totalRegs int64
	for _, event := range events {
		count, err := h.store.RegistrationCount(r.Context(), event.ID)
		if err != nil {
			h.logger.Error("organizer dashboard failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
			return
		}
		totalRegs += count
	}

	writeJSON(w, http.StatusOK, model.OrganizerDashboard{
		TotalEvents:        int64(len(events)),
		TotalRegistrations: totalRegs,
		Events:             events,
	})
}

// EventStatistics handles GET /organizer/events/{eventId}/statistics.
func (h *Handler) EventStatistics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}
	if !h.requireOwner(w, r, id) {
		return
	}

	event, err := h.store.GetEvent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	count, err := h.store.RegistrationCount(r.Context(), id)
	if err != nil {
		h.logger.Error("event statistics failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load statistics")
		return
	}
	regs, err := h.store.RegistrationsByEvent(r.Context(), id)
	if err != nil {
		h.logger.Error("event statistics failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load statistics")
		return
	}

	stats := model.EventStatistics{
		EventID:            id,
		EventName:          event.Name,
		TotalRegistrations: count,
		Capacity:           event.Capacity,
		Registrations:      regs,
	}
	if event.Capacity != nil {
		spots := int64(*event.Capacity) - count
		stats.AvailableSpots = &spots
	}
	writeJSON(w, http.StatusOK, stats)
}

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
