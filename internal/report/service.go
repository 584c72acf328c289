package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/signintech/gopdf"

	"rural-health-assistant/internal/assessment"
)

type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

// Meta is the header information printed above the assessment.
type Meta struct {
	PatientID   string
	GeneratedAt time.Time
}

// DejaVuSans covers the Indic and Latin scripts the assistant answers in.
var defaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

const (
	fontFamily = "DejaVu"
	textWidth  = 500.0
	pageBottom = 790.0
)

type Service struct {
	tgClient     TelegramClient
	doctorChatID int64
	fontPaths    []string
}

// NewService builds the report service. fontPath, when set, is tried before
// the stock DejaVu locations. tg may be nil, which disables escalation.
func NewService(tg TelegramClient, doctorChatID int64, fontPath string) *Service {
	paths := defaultFontPaths
	if fontPath != "" {
		paths = append([]string{fontPath}, defaultFontPaths...)
	}
	return &Service{
		tgClient:     tg,
		doctorChatID: doctorChatID,
		fontPaths:    paths,
	}
}

func (s *Service) loadFont(pdf *gopdf.GoPdf) error {
	var fontErr error
	for _, path := range s.fontPaths {
		err := pdf.AddTTFFont(fontFamily, path)
		if err == nil {
			log.WithField("path", path).Debug("report font loaded")
			return nil
		}
		fontErr = err
	}
	return fmt.Errorf("failed to load font for PDF, install ttf-dejavu or set REPORT_FONT_PATH: %w", fontErr)
}

// Render lays out the assessment as an A4 PDF.
func (s *Service) Render(a assessment.HealthAssessment, meta Meta) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := s.loadFont(&pdf); err != nil {
		return nil, err
	}

	w := &writer{pdf: &pdf}
	w.font(20)
	w.line("Health Assessment Report", 30)

	w.font(12)
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now()
	}
	w.line(fmt.Sprintf("Date: %s", meta.GeneratedAt.Format("02.01.2006 15:04")), 15)
	if meta.PatientID != "" {
		w.line(fmt.Sprintf("Patient ID: %s", meta.PatientID), 15)
	}
	w.line(fmt.Sprintf("Urgency: %s    Confidence: %.0f%%", strings.ToUpper(string(a.Urgency.Level())), a.Confidence), 25)

	w.section("Diagnosis")
	w.paragraph(a.Diagnosis)

	w.section("When to see a doctor")
	w.paragraph(a.DoctorVisit)

	w.list("Recommendations", a.Recommendations)
	w.list("Home remedies", a.HomeRemedies)
	w.list("Rural-specific advice", a.RuralSpecificAdvice)
	w.list("Preventive care", a.PreventiveCare)
	w.list("Cultural considerations", a.CulturalConsiderations)

	w.br(10)
	w.font(9)
	w.paragraph("Generated by an AI assistant. This report does not replace an examination by a healthcare professional.")

	if w.err != nil {
		return nil, fmt.Errorf("failed to lay out PDF: %w", w.err)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Escalate forwards a high-urgency assessment to the doctor chat: a short
// text alert followed by the PDF. It does nothing when Telegram is not set up.
func (s *Service) Escalate(ctx context.Context, a assessment.HealthAssessment, patientID string) error {
	if s.tgClient == nil || s.doctorChatID == 0 {
		log.Debug("escalation skipped: telegram not configured")
		return nil
	}

	logger := log.WithFields(log.Fields{"patient_id": patientID, "chat_id": s.doctorChatID})
	if err := s.tgClient.SendMessage(ctx, s.doctorChatID, alertText(a, patientID)); err != nil {
		return fmt.Errorf("send escalation alert: %w", err)
	}

	pdfData, err := s.Render(a, Meta{PatientID: patientID, GeneratedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("render escalation report: %w", err)
	}

	fileName := fmt.Sprintf("report_%s.pdf", uuid.New().String())
	if err := s.tgClient.SendDocument(ctx, s.doctorChatID, pdfData, fileName); err != nil {
		return fmt.Errorf("send escalation report: %w", err)
	}
	logger.WithField("file", fileName).Info("escalation report sent")
	return nil
}

func alertText(a assessment.HealthAssessment, patientID string) string {
	var b strings.Builder
	b.WriteString("High-urgency assessment\n")
	if patientID != "" {
		fmt.Fprintf(&b, "Patient: %s\n", patientID)
	}
	fmt.Fprintf(&b, "Confidence: %.0f%%\n\n%s", a.Confidence, a.Diagnosis)
	if a.DoctorVisit != "" {
		fmt.Fprintf(&b, "\n\n%s", a.DoctorVisit)
	}
	return b.String()
}

// writer keeps the first layout error so Render can check once at the end.
type writer struct {
	pdf *gopdf.GoPdf
	err error
}

func (w *writer) font(size float64) {
	if w.err == nil {
		w.err = w.pdf.SetFont(fontFamily, "", size)
	}
}

func (w *writer) br(h float64) {
	w.pdf.Br(h)
	if w.pdf.GetY() > pageBottom {
		w.pdf.AddPage()
	}
}

func (w *writer) line(text string, h float64) {
	if w.err == nil {
		w.err = w.pdf.Cell(nil, text)
	}
	w.br(h)
}

func (w *writer) paragraph(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	lines, err := w.pdf.SplitText(text, textWidth)
	if err != nil {
		lines = []string{text}
	}
	for _, l := range lines {
		w.line(l, 13)
	}
	w.br(5)
}

func (w *writer) section(title string) {
	w.br(5)
	w.font(14)
	w.line(title, 18)
	w.font(11)
}

func (w *writer) list(title string, items assessment.StringList) {
	if len(items) == 0 {
		return
	}
	w.section(title)
	for _, item := range items {
		w.paragraph("- " + item)
	}
}
