package report

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/go-chi/chi/v5"

	"rural-health-assistant/internal/assessment"
	"rural-health-assistant/internal/platform/httpx"
)

type Renderer interface {
	Render(a assessment.HealthAssessment, meta Meta) ([]byte, error)
}

type Handler struct {
	renderer Renderer
}

func NewHandler(r Renderer) *Handler {
	return &Handler{renderer: r}
}

type reportRequest struct {
	Assessment *assessment.HealthAssessment `json:"assessment"`
	PatientID  string                       `json:"patientId"`
}

// HandleReport renders a previously returned assessment as a PDF download.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := httpx.Decode(r, &req); err != nil || req.Assessment == nil {
		httpx.Error(w, http.StatusBadRequest, "Assessment is required")
		return
	}
	if strings.TrimSpace(req.Assessment.Diagnosis) == "" {
		httpx.Error(w, http.StatusBadRequest, "Assessment diagnosis is required")
		return
	}

	now := time.Now()
	data, err := h.renderer.Render(*req.Assessment, Meta{PatientID: req.PatientID, GeneratedAt: now})
	if err != nil {
		log.WithError(err).Error("failed to render report")
		httpx.Error(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="health_report_%s.pdf"`, now.Format("20060102_150405")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/results/report", h.HandleReport)
}
