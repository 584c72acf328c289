// Package assessment turns free-form model output into a HealthAssessment that
// always carries every field the UI renders.
package assessment

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
)

// FreeTextLimit is the number of characters of an unparseable answer kept as
// the diagnosis.
const FreeTextLimit = 300

var (
	fencePattern  = regexp.MustCompile("```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	jsonMetaStrip = strings.NewReplacer("{", "", "}", "", "[", "", "]", "", `"`, "")
	safetyMarkers = []string{"consult", "healthcare professional", "medical attention"}
)

// Repair uses StandardDefaults.
func Repair(raw string, required []Field) HealthAssessment {
	return StandardDefaults().Repair(raw, required)
}

// Repair extracts the JSON object embedded in raw and backfills every field in
// required that is absent or empty. When raw holds no parseable object, a
// full assessment is synthesized from the text. The result always carries a
// safety disclaimer. Repair never fails.
func (d Defaults) Repair(raw string, required []Field) HealthAssessment {
	if obj, ok := extractObject(raw); ok {
		if missing := d.backfill(obj, required); len(missing) > 0 {
			log.WithField("fields", missing).Warn("assessment: backfilled missing fields")
		}
		return d.withDisclaimer(d.fromObject(obj))
	}

	log.WithField("length", len(raw)).Warn("assessment: no parseable JSON, using free-text fallback")
	return d.withDisclaimer(d.fromFreeText(raw))
}

// extractObject strips code fences and parses the span from the first '{' to
// the last '}'.
func extractObject(raw string) (map[string]any, bool) {
	cleaned := fencePattern.ReplaceAllString(raw, "")
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func (d Defaults) backfill(obj map[string]any, required []Field) []Field {
	var missing []Field
	for _, f := range required {
		if !falsy(obj[string(f)]) {
			continue
		}
		obj[string(f)] = d.Backfill.value(f)
		missing = append(missing, f)
	}
	return missing
}

var knownFields = func() map[string]bool {
	m := make(map[string]bool, len(AllFields))
	for _, f := range AllFields {
		m[string(f)] = true
	}
	return m
}()

func (d Defaults) fromObject(obj map[string]any) HealthAssessment {
	var extra map[string]any
	for k, v := range obj {
		if knownFields[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}

	return HealthAssessment{
		Diagnosis:              stringify(obj[string(FieldDiagnosis)]),
		Urgency:                d.urgency(obj[string(FieldUrgency)]),
		Confidence:             d.confidence(obj[string(FieldConfidence)]),
		Recommendations:        toStringList(obj[string(FieldRecommendations)]),
		HomeRemedies:           toStringList(obj[string(FieldHomeRemedies)]),
		DoctorVisit:            stringify(obj[string(FieldDoctorVisit)]),
		RuralSpecificAdvice:    toStringList(obj[string(FieldRuralSpecificAdvice)]),
		PreventiveCare:         toStringList(obj[string(FieldPreventiveCare)]),
		CulturalConsiderations: toStringList(obj[string(FieldCulturalConsiderations)]),
		Extra:                  extra,
	}
}

func (d Defaults) fromFreeText(raw string) HealthAssessment {
	a := d.FreeText
	a.Recommendations = append(StringList(nil), a.Recommendations...)
	a.HomeRemedies = append(StringList(nil), a.HomeRemedies...)
	a.RuralSpecificAdvice = append(StringList(nil), a.RuralSpecificAdvice...)
	a.PreventiveCare = append(StringList(nil), a.PreventiveCare...)
	a.CulturalConsiderations = append(StringList(nil), a.CulturalConsiderations...)

	if diagnosis := FreeTextDiagnosis(raw); strings.TrimSpace(diagnosis) != "" {
		a.Diagnosis = diagnosis
	}
	return a
}

// FreeTextDiagnosis keeps the first FreeTextLimit characters of raw with JSON
// metacharacters removed.
func FreeTextDiagnosis(raw string) string {
	runes := []rune(raw)
	if len(runes) > FreeTextLimit {
		runes = runes[:FreeTextLimit]
	}
	return jsonMetaStrip.Replace(string(runes))
}

func (d Defaults) withDisclaimer(a HealthAssessment) HealthAssessment {
	text := strings.ToLower(a.JSON())
	for _, marker := range safetyMarkers {
		if strings.Contains(text, marker) {
			return a
		}
	}
	if strings.TrimSpace(a.DoctorVisit) == "" {
		a.DoctorVisit = d.Disclaimer
	} else {
		a.DoctorVisit += " " + d.Disclaimer
	}
	return a
}

func (d Defaults) urgency(v any) Urgency {
	s, _ := v.(string)
	if u := Urgency(s); u.Valid() {
		return u
	}
	if d.Backfill.Urgency.Valid() {
		return d.Backfill.Urgency
	}
	return UrgencyMedium
}

func (d Defaults) confidence(v any) float64 {
	var c float64
	switch t := v.(type) {
	case float64:
		c = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		if err != nil {
			return clamp(d.Backfill.Confidence)
		}
		c = parsed
	default:
		return clamp(d.Backfill.Confidence)
	}
	if math.IsNaN(c) {
		return clamp(d.Backfill.Confidence)
	}
	return clamp(c)
}

func clamp(c float64) float64 {
	return math.Max(0, math.Min(100, c))
}

// falsy follows the truthiness the UI applies: missing, null, false, zero,
// blank strings and empty lists all count as absent.
func falsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0 || math.IsNaN(t)
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	}
	return false
}
