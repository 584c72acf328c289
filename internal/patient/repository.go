package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
)

// Repository reads patient records. limit <= 0 means no limit.
type Repository interface {
	PatientInfo(ctx context.Context, id string) (*Patient, error)
	MedicalHistory(ctx context.Context, id string, limit int) ([]HistoryEntry, error)
	Prescriptions(ctx context.Context, id string, limit int) ([]Prescription, error)
	Tests(ctx context.Context, id string, limit int) ([]TestRecord, error)
	FindCredentials(ctx context.Context, email string) (*Credentials, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

// limitArg turns a non-positive limit into NULL, which Postgres reads as
// LIMIT ALL.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func (r *postgresRepo) PatientInfo(ctx context.Context, id string) (*Patient, error) {
	query := `SELECT patient_id, name, email, age, gender, contact, address FROM Patients WHERE patient_id = $1`

	var p Patient
	var age sql.NullInt64
	var gender, contact, address sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Email, &age, &gender, &contact, &address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query patient %s: %w", id, err)
	}
	p.Age = int(age.Int64)
	p.Gender = gender.String
	p.Contact = contact.String
	p.Address = address.String
	return &p, nil
}

func (r *postgresRepo) MedicalHistory(ctx context.Context, id string, limit int) ([]HistoryEntry, error) {
	query := `
		SELECT history_id, diagnosis, date_of_diagnosis, treatment_given, family_history
		FROM Medical_History
		WHERE patient_id = $1
		ORDER BY date_of_diagnosis DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, id, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("query medical history: %w", err)
	}
	defer rows.Close()

	history := []HistoryEntry{}
	for rows.Next() {
		var h HistoryEntry
		var treatment, family sql.NullString
		if err := rows.Scan(&h.ID, &h.Diagnosis, &h.DateOfDiagnosis, &treatment, &family); err != nil {
			return nil, fmt.Errorf("scan medical history: %w", err)
		}
		h.TreatmentGiven = treatment.String
		h.FamilyHistory = family.String
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *postgresRepo) Prescriptions(ctx context.Context, id string, limit int) ([]Prescription, error) {
	query := `
		SELECT p.prescription_id, p.medication_name, p.dosage, p.frequency, d.name AS doctor_name
		FROM Prescriptions p
		LEFT JOIN Doctors d ON p.doctor_id = d.doctor_id
		WHERE p.patient_id = $1
		ORDER BY p.prescription_id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, id, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("query prescriptions: %w", err)
	}
	defer rows.Close()

	prescriptions := []Prescription{}
	for rows.Next() {
		var p Prescription
		var dosage, frequency, doctor sql.NullString
		if err := rows.Scan(&p.ID, &p.MedicationName, &dosage, &frequency, &doctor); err != nil {
			return nil, fmt.Errorf("scan prescription: %w", err)
		}
		p.Dosage = dosage.String
		p.Frequency = frequency.String
		p.DoctorName = doctor.String
		prescriptions = append(prescriptions, p)
	}
	return prescriptions, rows.Err()
}

// Tests merges taken and recommended tests, newest first. Each source
// contributes at most ceil(limit/2) rows before the merged list is cut to limit.
func (r *postgresRepo) Tests(ctx context.Context, id string, limit int) ([]TestRecord, error) {
	var half any
	if limit > 0 {
		half = (limit + 1) / 2
	}

	completedQuery := `
		SELECT test_id, test_name, result, date_taken
		FROM Tests_Taken
		WHERE patient_id = $1
		ORDER BY date_taken DESC
		LIMIT $2`
	completed, err := r.queryTests(ctx, completedQuery, TestCompleted, false, id, half)
	if err != nil {
		return nil, err
	}

	recommendedQuery := `
		SELECT tr.recommendation_id, tr.test_name, tr.result, tr.recommendation_date, d.name AS doctor_name
		FROM Tests_Recommended tr
		LEFT JOIN Doctors d ON tr.doctor_id = d.doctor_id
		WHERE tr.patient_id = $1
		ORDER BY tr.recommendation_date DESC
		LIMIT $2`
	recommended, err := r.queryTests(ctx, recommendedQuery, TestRecommended, true, id, half)
	if err != nil {
		return nil, err
	}

	all := append(completed, recommended...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *postgresRepo) queryTests(ctx context.Context, query, status string, withDoctor bool, args ...any) ([]TestRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s tests: %w", status, err)
	}
	defer rows.Close()

	tests := []TestRecord{}
	for rows.Next() {
		t := TestRecord{Status: status}
		var result, doctor sql.NullString
		dest := []any{&t.ID, &t.TestName, &result, &t.Date}
		if withDoctor {
			dest = append(dest, &doctor)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s test: %w", status, err)
		}
		t.Result = result.String
		t.DoctorName = doctor.String
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

func (r *postgresRepo) FindCredentials(ctx context.Context, email string) (*Credentials, error) {
	query := `SELECT patient_id, name, email, age, gender, contact, address, password FROM Patients WHERE email = $1`

	var c Credentials
	var age sql.NullInt64
	var gender, contact, address, password sql.NullString
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&c.Patient.ID, &c.Patient.Name, &c.Patient.Email, &age, &gender, &contact, &address, &password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	c.Patient.Age = int(age.Int64)
	c.Patient.Gender = gender.String
	c.Patient.Contact = contact.String
	c.Patient.Address = address.String
	// patients registered by a clinic may have no password yet
	c.PasswordHash = password.String
	return &c, nil
}
