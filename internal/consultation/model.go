package consultation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SymptomQuery is the input of the symptom localization flow.
type SymptomQuery struct {
	Text     string `json:"symptomText"`
	Language string `json:"language"`
}

// SymptomResult is the localized classification answered to the client.
type SymptomResult struct {
	Translation     string `json:"translation"`
	OriginalSymptom string `json:"originalSymptom"`
	PredictedClass  string `json:"predictedClass"`
	Success         bool   `json:"success"`
}

// PromptRequest is the body of both guidance endpoints.
type PromptRequest struct {
	Prompt    string    `json:"prompt"`
	PatientID PatientID `json:"patientId"`
}

// PatientID accepts either a JSON string or a JSON number. null and
// absent both decode to "".
type PatientID string

func (p *PatientID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = PatientID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("patientId must be a string or a number: %w", err)
	}
	*p = PatientID(n.String())
	return nil
}

type TranslateRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

type SpeechRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}
