package assessment

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Level is u trimmed and lower-cased. Generated answers often capitalize it.
func (u Urgency) Level() Urgency {
	return Urgency(strings.ToLower(strings.TrimSpace(string(u))))
}

// Valid accepts any casing of low, medium and high.
func (u Urgency) Valid() bool {
	switch u.Level() {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// Field names a member of HealthAssessment by its JSON key.
type Field string

const (
	FieldDiagnosis              Field = "diagnosis"
	FieldUrgency                Field = "urgency"
	FieldConfidence             Field = "confidence"
	FieldRecommendations        Field = "recommendations"
	FieldHomeRemedies           Field = "homeRemedies"
	FieldDoctorVisit            Field = "doctorVisit"
	FieldRuralSpecificAdvice    Field = "ruralSpecificAdvice"
	FieldPreventiveCare         Field = "preventiveCare"
	FieldCulturalConsiderations Field = "culturalConsiderations"
)

// AllFields is the full set a usable assessment must carry.
var AllFields = []Field{
	FieldDiagnosis,
	FieldUrgency,
	FieldConfidence,
	FieldRecommendations,
	FieldHomeRemedies,
	FieldDoctorVisit,
	FieldRuralSpecificAdvice,
	FieldPreventiveCare,
	FieldCulturalConsiderations,
}

// HealthAssessment is the structured guidance returned to the patient.
type HealthAssessment struct {
	Diagnosis              string     `json:"diagnosis"`
	Urgency                Urgency    `json:"urgency"`
	Confidence             float64    `json:"confidence"`
	Recommendations        StringList `json:"recommendations"`
	HomeRemedies           StringList `json:"homeRemedies"`
	DoctorVisit            string     `json:"doctorVisit"`
	RuralSpecificAdvice    StringList `json:"ruralSpecificAdvice"`
	PreventiveCare         StringList `json:"preventiveCare"`
	CulturalConsiderations StringList `json:"culturalConsiderations"`

	// Extra holds keys of a generated answer outside the fields above. They
	// are written back out unchanged.
	Extra map[string]any `json:"-"`
}

type assessmentFields HealthAssessment

func (a HealthAssessment) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(assessmentFields(a))
	if err != nil || len(a.Extra) == 0 {
		return b, err
	}

	var known map[string]json.RawMessage
	if err := json.Unmarshal(b, &known); err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(a.Extra)+len(known))
	for k, v := range a.Extra {
		merged[k] = v
	}
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// JSON returns the serialized assessment. Marshaling a HealthAssessment
// cannot fail, so errors are not surfaced.
func (a HealthAssessment) JSON() string {
	b, _ := json.Marshal(a)
	return string(b)
}

// value returns the field as it would appear in a decoded JSON object.
func (a HealthAssessment) value(f Field) any {
	switch f {
	case FieldDiagnosis:
		return a.Diagnosis
	case FieldUrgency:
		return string(a.Urgency)
	case FieldConfidence:
		return a.Confidence
	case FieldRecommendations:
		return a.Recommendations.anySlice()
	case FieldHomeRemedies:
		return a.HomeRemedies.anySlice()
	case FieldDoctorVisit:
		return a.DoctorVisit
	case FieldRuralSpecificAdvice:
		return a.RuralSpecificAdvice.anySlice()
	case FieldPreventiveCare:
		return a.PreventiveCare.anySlice()
	case FieldCulturalConsiderations:
		return a.CulturalConsiderations.anySlice()
	}
	return nil
}

// StringList decodes either a JSON array or a single string. Models are not
// consistent about which one they emit.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*l = toStringList(raw)
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l StringList) anySlice() []any {
	out := make([]any, len(l))
	for i, s := range l {
		out[i] = s
	}
	return out
}

func toStringList(v any) StringList {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return StringList{t}
	case []any:
		out := make(StringList, 0, len(t))
		for _, item := range t {
			if s := stringify(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := stringify(t); s != "" {
			return StringList{s}
		}
		return nil
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
