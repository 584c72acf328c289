package consultation

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/go-chi/chi/v5"

	"rural-health-assistant/internal/agent"
	"rural-health-assistant/internal/apperr"
	"rural-health-assistant/internal/platform/httpx"
)

// maxUploadSize bounds photo and audio uploads.
const maxUploadSize = 10 << 20

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) HandleSymptom(w http.ResponseWriter, r *http.Request) {
	var req SymptomQuery
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Symptom text and language must be strings")
		return
	}

	res, err := h.svc.LocalizeSymptom(r.Context(), req)
	if err != nil {
		log.WithError(err).WithField("language", req.Language).Error("symptom analysis failed")
		httpx.Fail(w, err, "Failed to analyze symptoms")
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) HandleResults(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid prompt provided")
		return
	}

	a, degraded, err := h.svc.Assess(r.Context(), req.Prompt, string(req.PatientID))
	if err != nil {
		httpx.Fail(w, err, "Invalid prompt provided")
		return
	}

	resp := map[string]string{"text": a.JSON()}
	if degraded {
		resp["warning"] = degradedWarning
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid prompt provided")
		return
	}

	text, err := h.svc.Chat(r.Context(), req.Prompt, string(req.PatientID))
	if err != nil {
		httpx.Fail(w, err, "Invalid prompt provided")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"text": text})
}

func (h *Handler) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid text provided")
		return
	}

	// req is decoded once and reused on the fallback path.
	out, ok, err := h.svc.Translate(r.Context(), req.Text, req.Target)
	if err != nil {
		httpx.Fail(w, err, "Invalid text provided")
		return
	}

	resp := map[string]string{"translation": out}
	if !ok {
		resp["error"] = "Translation service temporarily unavailable"
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		httpx.Error(w, http.StatusBadRequest, "Unsupported content type. Expected multipart/form-data.")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "No file provided or invalid file format")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	img := agent.Image{Name: hdr.Filename, ContentType: hdr.Header.Get("Content-Type"), Data: data}
	category := strings.TrimSpace(r.FormValue("category"))

	out, err := h.svc.ClassifyImage(r.Context(), img, category)
	if err != nil {
		log.WithError(err).WithField("category", category).Error("image classification failed")
		httpx.Fail(w, err, "Failed to process image")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *Handler) HandleSTT(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpx.Error(w, http.StatusBadRequest, "No audio file provided")
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to read audio file")
		return
	}

	transcript, err := h.svc.Transcribe(r.Context(), buf.Bytes(), r.FormValue("language"))
	if err != nil {
		if apperr.Is(err, apperr.InvalidInput) {
			httpx.Error(w, http.StatusBadRequest, apperr.MessageOf(err))
			return
		}
		log.WithError(err).Error("speech-to-text failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to transcribe audio")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"transcript": transcript})
}

func (h *Handler) HandleTTS(w http.ResponseWriter, r *http.Request) {
	var req SpeechRequest
	if err := httpx.Decode(r, &req); err != nil || strings.TrimSpace(req.Text) == "" {
		httpx.Error(w, http.StatusBadRequest, "Text is required")
		return
	}

	audio, err := h.svc.Synthesize(r.Context(), req.Text, req.Language)
	if err != nil {
		log.WithError(err).WithField("language", req.Language).Error("text-to-speech failed")
		httpx.Error(w, http.StatusInternalServerError, "Failed to generate speech")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Write(audio)
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/symptom", h.HandleSymptom)
	r.Post("/results", h.HandleResults)
	r.Post("/chat", h.HandleChat)
	r.Post("/translate", h.HandleTranslate)
	r.Post("/image", h.HandleImage)
	r.Post("/stt", h.HandleSTT)
	r.Post("/tts", h.HandleTTS)
}
