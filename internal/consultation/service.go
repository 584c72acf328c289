package consultation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"

	"rural-health-assistant/internal/agent"
	"rural-health-assistant/internal/apperr"
	"rural-health-assistant/internal/assessment"
	"rural-health-assistant/internal/language"
	"rural-health-assistant/internal/metrics"
	"rural-health-assistant/internal/patient"
)

// SymptomClassifier maps free-text symptoms to a model prediction.
type SymptomClassifier interface {
	Classify(ctx context.Context, text string) (agent.Prediction, error)
}

type ImageClassifier interface {
	Classify(ctx context.Context, img agent.Image, category string) (json.RawMessage, error)
}

// Generator is the generative text backend.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Translator never fails; ok is false when the input came back untranslated.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, bool)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, languageCode string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode string) ([]byte, error)
}

// PatientSource supplies the optional personalization snapshot.
type PatientSource interface {
	Snapshot(ctx context.Context, id string, limit int) (*patient.Snapshot, error)
}

// Notifier is told about high-urgency assessments.
type Notifier interface {
	Escalate(ctx context.Context, a assessment.HealthAssessment, patientID string) error
}

// Deps are the collaborators of the service. Patients and Notifier may be nil.
type Deps struct {
	Symptoms    SymptomClassifier
	Images      ImageClassifier
	Generator   Generator
	Translator  Translator
	Transcriber Transcriber
	Synthesizer Synthesizer
	Patients    PatientSource
	Notifier    Notifier
}

type Service interface {
	// LocalizeSymptom classifies a symptom, refines the class name with the
	// generator and translates it into the query language.
	LocalizeSymptom(ctx context.Context, q SymptomQuery) (*SymptomResult, error)
	// Assess always returns a usable assessment for a valid prompt. degraded
	// is true when generation failed and the outage assessment was returned.
	Assess(ctx context.Context, prompt, patientID string) (a assessment.HealthAssessment, degraded bool, err error)
	// Chat answers free text; it only errors on invalid input.
	Chat(ctx context.Context, prompt, patientID string) (string, error)
	Translate(ctx context.Context, text, target string) (string, bool, error)
	ClassifyImage(ctx context.Context, img agent.Image, category string) (json.RawMessage, error)
	Transcribe(ctx context.Context, audio []byte, languageCode string) (string, error)
	Synthesize(ctx context.Context, text, languageCode string) ([]byte, error)
}

// snapshotLimit caps each record kind in the prompt context.
const snapshotLimit = 3

const escalationTimeout = 2 * time.Minute

type service struct {
	deps     Deps
	defaults assessment.Defaults
}

func NewService(deps Deps, defaults assessment.Defaults) Service {
	return &service{deps: deps, defaults: defaults}
}

func (s *service) LocalizeSymptom(ctx context.Context, q SymptomQuery) (*SymptomResult, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, apperr.New(apperr.InvalidInput, "Symptom text is required")
	}
	if strings.TrimSpace(q.Language) == "" {
		return nil, apperr.New(apperr.InvalidInput, "Language is required")
	}
	if !language.Valid(q.Language) {
		return nil, apperr.New(apperr.InvalidInput, fmt.Sprintf("Unsupported language tag %q", q.Language))
	}

	prediction, err := s.deps.Symptoms.Classify(ctx, q.Text)
	if err != nil {
		return nil, err
	}
	logger := log.WithFields(log.Fields{"symptom": prediction.Symptom, "class": prediction.PredictedClass})
	logger.Info("symptom classified")

	refined := s.refine(ctx, q.Text, prediction)

	translation := refined
	if code := language.Canonicalize(q.Language); code != language.English {
		translation, _ = s.deps.Translator.Translate(ctx, refined, code)
	}

	return &SymptomResult{
		Translation:     translation,
		OriginalSymptom: prediction.Symptom,
		PredictedClass:  prediction.PredictedClass,
		Success:         true,
	}, nil
}

// refine asks the generator to confirm or correct the classified symptom. Any
// failure keeps the classifier's answer.
func (s *service) refine(ctx context.Context, text string, p agent.Prediction) string {
	if s.deps.Generator == nil {
		return p.Symptom
	}
	prompt := fmt.Sprintf("Patient description: %s\nClassified symptom: %s\nPredicted class: %s", text, p.Symptom, p.PredictedClass)
	out, err := s.deps.Generator.Generate(ctx, refinementInstruction, prompt)
	if err != nil {
		log.WithError(err).Warn("refinement: generation failed, keeping classified symptom")
		metrics.Fallback("refinement")
		return p.Symptom
	}
	refined := cleanRefinement(out)
	if refined == "" {
		log.Warn("refinement: empty answer, keeping classified symptom")
		metrics.Fallback("refinement")
		return p.Symptom
	}
	return refined
}

// cleanRefinement keeps the first non-empty line of the answer without
// surrounding quotes or markdown emphasis.
func cleanRefinement(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "\"'`*.")
		if line != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func (s *service) Assess(ctx context.Context, prompt, patientID string) (assessment.HealthAssessment, bool, error) {
	if strings.TrimSpace(prompt) == "" {
		return assessment.HealthAssessment{}, false, apperr.New(apperr.InvalidInput, "Invalid prompt provided")
	}

	full := s.patientContext(ctx, patientID) + "\n\n" + prompt + resultsInstructions

	raw, err := s.generate(ctx, ruralHealthInstruction, full)
	if err != nil {
		log.WithError(err).Warn("assessment: generation failed, returning outage assessment")
		metrics.Fallback("generation")
		return s.defaults.Outage, true, nil
	}

	a := s.defaults.Repair(raw, assessment.AllFields)
	log.WithFields(log.Fields{"urgency": a.Urgency, "confidence": a.Confidence}).Info("assessment ready")

	if a.Urgency.Level() == assessment.UrgencyHigh && s.deps.Notifier != nil {
		go func(a assessment.HealthAssessment) {
			bgCtx, cancel := context.WithTimeout(context.Background(), escalationTimeout)
			defer cancel()
			if err := s.deps.Notifier.Escalate(bgCtx, a, patientID); err != nil {
				log.WithError(err).WithField("patient_id", patientID).Error("failed to escalate assessment")
			}
		}(a)
	}
	return a, false, nil
}

func (s *service) Chat(ctx context.Context, prompt, patientID string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.New(apperr.InvalidInput, "Invalid prompt provided")
	}

	patientContext := s.patientContext(ctx, patientID)
	full := patientContext + "\n\nUser Question: " + prompt +
		"\n\nPlease provide a helpful, safe, and personalized response based on the patient's medical context:"

	text, err := s.generate(ctx, chatInstruction, full)
	if err != nil {
		log.WithError(err).Warn("chat: generation failed, returning fallback answer")
		metrics.Fallback("chat")
		return chatFallback, nil
	}

	if !hasChatDisclaimer(text) {
		if patientContext != "" {
			text += personalizedDisclaimer
		} else {
			text += generalDisclaimer
		}
	}
	return text, nil
}

var chatDisclaimerMarkers = []string{
	"consult a healthcare professional",
	"see a doctor",
	"medical attention",
}

func hasChatDisclaimer(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range chatDisclaimerMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func (s *service) generate(ctx context.Context, system, prompt string) (string, error) {
	if s.deps.Generator == nil {
		return "", apperr.New(apperr.ConfigurationError, "no generator configured")
	}
	return s.deps.Generator.Generate(ctx, system, prompt)
}

// patientContext renders the optional snapshot. Lookup failures drop the
// personalization instead of failing the request.
func (s *service) patientContext(ctx context.Context, patientID string) string {
	if patientID == "" || s.deps.Patients == nil {
		return ""
	}
	snap, err := s.deps.Patients.Snapshot(ctx, patientID, snapshotLimit)
	if err != nil {
		log.WithError(err).WithField("patient_id", patientID).Warn("snapshot: lookup failed, continuing without patient context")
		metrics.Fallback("snapshot")
		return ""
	}
	return snap.PromptContext()
}

func (s *service) Translate(ctx context.Context, text, target string) (string, bool, error) {
	if strings.TrimSpace(text) == "" {
		return "", false, apperr.New(apperr.InvalidInput, "Invalid text provided")
	}
	if strings.TrimSpace(target) == "" {
		return "", false, apperr.New(apperr.InvalidInput, "Invalid target language provided")
	}
	out, ok := s.deps.Translator.Translate(ctx, text, target)
	return out, ok, nil
}

func (s *service) ClassifyImage(ctx context.Context, img agent.Image, category string) (json.RawMessage, error) {
	return s.deps.Images.Classify(ctx, img, category)
}

func (s *service) Transcribe(ctx context.Context, audio []byte, languageCode string) (string, error) {
	return s.deps.Transcriber.Transcribe(ctx, audio, languageCode)
}

func (s *service) Synthesize(ctx context.Context, text, languageCode string) ([]byte, error) {
	return s.deps.Synthesizer.Synthesize(ctx, text, languageCode)
}
