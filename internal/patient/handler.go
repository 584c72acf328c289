package patient

import (
	"errors"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/go-chi/chi/v5"

	"rural-health-assistant/internal/platform/httpx"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// GetPatient returns the full record set of one patient.
func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := h.svc.Snapshot(r.Context(), id, 0)
	if err != nil {
		log.WithError(err).WithField("patient_id", id).Error("failed to fetch patient data")
		httpx.Error(w, http.StatusInternalServerError, "Failed to fetch patient data")
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"message": "Email and password are required"})
		return
	}

	p, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.JSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
			return
		}
		log.WithError(err).Error("login failed")
		httpx.JSON(w, http.StatusInternalServerError, map[string]string{"message": "Login failed"})
		return
	}

	log.WithField("patient_id", p.ID).Info("login successful")
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Login successful", "patient": p})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/patient/{id}", h.GetPatient)
	r.Post("/login", h.Login)
}
