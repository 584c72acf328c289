package patient

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestPatientInfo(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM Patients WHERE patient_id = $1")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"patient_id", "name", "email", "age", "gender", "contact", "address"}).
			AddRow("p1", "Asha", "asha@example.com", 34, "female", nil, "Village Road"))

	p, err := repo.PatientInfo(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, &Patient{ID: "p1", Name: "Asha", Email: "asha@example.com", Age: 34, Gender: "female", Address: "Village Road"}, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientInfoMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM Patients").WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"patient_id"}))

	p, err := repo.PatientInfo(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMedicalHistoryLimit(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM Medical_History").WithArgs("p1", 3).
		WillReturnRows(sqlmock.NewRows([]string{"history_id", "diagnosis", "date_of_diagnosis", "treatment_given", "family_history"}).
			AddRow(2, "Malaria", day(10), "Chloroquine", nil).
			AddRow(1, "Anemia", day(1), "Iron", "Mother"))

	h, err := repo.MedicalHistory(context.Background(), "p1", 3)

	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "Malaria", h[0].Diagnosis)
	assert.Equal(t, "", h[0].FamilyHistory)
	assert.Equal(t, "Mother", h[1].FamilyHistory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicalHistoryUnlimited(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM Medical_History").WithArgs("p1", nil).
		WillReturnRows(sqlmock.NewRows([]string{"history_id", "diagnosis", "date_of_diagnosis", "treatment_given", "family_history"}))

	h, err := repo.MedicalHistory(context.Background(), "p1", 0)

	require.NoError(t, err)
	assert.NotNil(t, h)
	assert.Empty(t, h)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrescriptionsDoctorIsOptional(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("LEFT JOIN Doctors").WithArgs("p1", 3).
		WillReturnRows(sqlmock.NewRows([]string{"prescription_id", "medication_name", "dosage", "frequency", "doctor_name"}).
			AddRow(7, "Paracetamol", "500mg", "twice daily", "Rao").
			AddRow(6, "ORS", nil, nil, nil))

	p, err := repo.Prescriptions(context.Background(), "p1", 3)

	require.NoError(t, err)
	assert.Equal(t, []Prescription{
		{ID: 7, MedicationName: "Paracetamol", Dosage: "500mg", Frequency: "twice daily", DoctorName: "Rao"},
		{ID: 6, MedicationName: "ORS"},
	}, p)
}

func TestTestsMergeNewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM Tests_Taken").WithArgs("p1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"test_id", "test_name", "result", "date_taken"}).
			AddRow(11, "CBC", "normal", day(5)).
			AddRow(10, "Malaria smear", "positive", day(2)))
	mock.ExpectQuery("FROM Tests_Recommended").WithArgs("p1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"recommendation_id", "test_name", "result", "recommendation_date", "doctor_name"}).
			AddRow(21, "Blood sugar", nil, day(8), "Rao").
			AddRow(20, "X-ray", nil, day(3), nil))

	tests, err := repo.Tests(context.Background(), "p1", 3)

	require.NoError(t, err)
	require.Len(t, tests, 3)
	assert.Equal(t, "Blood sugar", tests[0].TestName)
	assert.Equal(t, TestRecommended, tests[0].Status)
	assert.Equal(t, "Rao", tests[0].DoctorName)
	assert.Equal(t, "CBC", tests[1].TestName)
	assert.Equal(t, TestCompleted, tests[1].Status)
	assert.Equal(t, "X-ray", tests[2].TestName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestsQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM Tests_Taken").WillReturnError(errors.New("connection reset"))

	_, err := repo.Tests(context.Background(), "p1", 3)

	assert.ErrorContains(t, err, "connection reset")
}

func TestFindCredentials(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM Patients WHERE email = $1")).WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"patient_id", "name", "email", "age", "gender", "contact", "address", "password"}).
			AddRow("p1", "Asha", "asha@example.com", 34, "female", "98450", nil, "$2a$hash"))

	c, err := repo.FindCredentials(context.Background(), "asha@example.com")

	require.NoError(t, err)
	assert.Equal(t, "p1", c.Patient.ID)
	assert.Equal(t, "$2a$hash", c.PasswordHash)
}

func TestFindCredentialsWithoutPassword(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM Patients WHERE email = $1")).WithArgs("ravi@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"patient_id", "name", "email", "age", "gender", "contact", "address", "password"}).
			AddRow("p2", "Ravi", "ravi@example.com", nil, nil, nil, nil, nil))

	c, err := repo.FindCredentials(context.Background(), "ravi@example.com")

	require.NoError(t, err)
	assert.Equal(t, "p2", c.Patient.ID)
	assert.Empty(t, c.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}
