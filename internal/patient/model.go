package patient

import "time"

type Patient struct {
	ID      string `json:"patient_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
	Contact string `json:"contact"`
	Address string `json:"address"`
}

type HistoryEntry struct {
	ID              int64     `json:"history_id"`
	Diagnosis       string    `json:"diagnosis"`
	DateOfDiagnosis time.Time `json:"date_of_diagnosis"`
	TreatmentGiven  string    `json:"treatment_given"`
	FamilyHistory   string    `json:"family_history"`
}

type Prescription struct {
	ID             int64  `json:"prescription_id"`
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	DoctorName     string `json:"doctor_name,omitempty"`
}

// Test statuses.
const (
	TestCompleted   = "completed"
	TestRecommended = "recommended"
)

// TestRecord is either a test the patient took or one a doctor recommended.
type TestRecord struct {
	ID         int64     `json:"id"`
	TestName   string    `json:"test_name"`
	Result     string    `json:"result"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	DoctorName string    `json:"doctor_name,omitempty"`
}

// Snapshot is a read-only bundle of a patient's identity and recent records.
// Patient is nil when no such patient exists.
type Snapshot struct {
	Patient       *Patient       `json:"patient"`
	History       []HistoryEntry `json:"history"`
	Prescriptions []Prescription `json:"prescriptions"`
	Tests         []TestRecord   `json:"tests"`
}

// Credentials is the login row of a patient.
type Credentials struct {
	Patient      Patient
	PasswordHash string
}
