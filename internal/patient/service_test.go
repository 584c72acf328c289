package patient

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	patient       *Patient
	history       []HistoryEntry
	prescriptions []Prescription
	tests         []TestRecord
	creds         *Credentials
	failOn        string
	limits        []int
	calls         atomic.Int32
}

func (f *fakeRepo) fail(name string) error {
	f.calls.Add(1)
	if f.failOn == name {
		return errors.New(name + " lookup failed")
	}
	return nil
}

func (f *fakeRepo) PatientInfo(ctx context.Context, id string) (*Patient, error) {
	return f.patient, f.fail("info")
}

func (f *fakeRepo) MedicalHistory(ctx context.Context, id string, limit int) ([]HistoryEntry, error) {
	return f.history, f.fail("history")
}

func (f *fakeRepo) Prescriptions(ctx context.Context, id string, limit int) ([]Prescription, error) {
	return f.prescriptions, f.fail("prescriptions")
}

func (f *fakeRepo) Tests(ctx context.Context, id string, limit int) ([]TestRecord, error) {
	return f.tests, f.fail("tests")
}

func (f *fakeRepo) FindCredentials(ctx context.Context, email string) (*Credentials, error) {
	if f.failOn == "credentials" {
		return nil, errors.New("db down")
	}
	return f.creds, nil
}

func sampleRepo() *fakeRepo {
	return &fakeRepo{
		patient: &Patient{ID: "p1", Name: "Asha", Age: 34, Gender: "female"},
		history: []HistoryEntry{
			{Diagnosis: "Malaria", DateOfDiagnosis: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), TreatmentGiven: "Chloroquine"},
		},
		prescriptions: []Prescription{
			{MedicationName: "Paracetamol", Dosage: "500mg", Frequency: "twice daily", DoctorName: "Rao"},
			{MedicationName: "ORS", Dosage: "1 sachet", Frequency: "as needed"},
		},
		tests: []TestRecord{
			{TestName: "CBC", Result: "normal", Status: TestCompleted, Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
			{TestName: "X-ray", Status: TestRecommended, Date: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestSnapshotAssemblesAllLookups(t *testing.T) {
	repo := sampleRepo()
	snap, err := NewService(repo).Snapshot(context.Background(), "p1", 3)

	require.NoError(t, err)
	assert.Equal(t, int32(4), repo.calls.Load())
	assert.Equal(t, "Asha", snap.Patient.Name)
	assert.Len(t, snap.History, 1)
	assert.Len(t, snap.Prescriptions, 2)
	assert.Len(t, snap.Tests, 2)
}

func TestSnapshotAbortsOnAnyFailure(t *testing.T) {
	for _, name := range []string{"info", "history", "prescriptions", "tests"} {
		t.Run(name, func(t *testing.T) {
			repo := sampleRepo()
			repo.failOn = name

			snap, err := NewService(repo).Snapshot(context.Background(), "p1", 3)

			assert.Nil(t, snap)
			assert.ErrorContains(t, err, name+" lookup failed")
		})
	}
}

func TestSnapshotEmptyListsAreNotNil(t *testing.T) {
	snap, err := NewService(&fakeRepo{}).Snapshot(context.Background(), "ghost", 0)

	require.NoError(t, err)
	assert.Nil(t, snap.Patient)
	assert.NotNil(t, snap.History)
	assert.NotNil(t, snap.Prescriptions)
	assert.NotNil(t, snap.Tests)
	assert.Empty(t, snap.PromptContext())
}

func TestPromptContext(t *testing.T) {
	repo := sampleRepo()
	snap := &Snapshot{Patient: repo.patient, History: repo.history, Prescriptions: repo.prescriptions, Tests: repo.tests}

	got := snap.PromptContext()

	assert.True(t, strings.HasPrefix(got, "\n\n--- PATIENT CONTEXT ---\n"))
	assert.True(t, strings.HasSuffix(got, "--- END PATIENT CONTEXT ---\n\n"))
	assert.Contains(t, got, "Patient: Asha (Age: 34, Gender: female)")
	assert.Contains(t, got, "1. Malaria (2024-03-10) - Treatment: Chloroquine")
	assert.Contains(t, got, "1. Paracetamol - 500mg, twice daily (Dr. Rao)\n")
	assert.Contains(t, got, "2. ORS - 1 sachet, as needed\n")
	assert.Contains(t, got, "1. [completed] CBC - Result: normal (2024-03-05)")
	assert.Contains(t, got, "2. [recommended] X-ray (2024-03-03)")
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &fakeRepo{creds: &Credentials{Patient: Patient{ID: "p1", Name: "Asha"}, PasswordHash: string(hash)}}
	svc := NewService(repo)

	p, err := svc.Login(context.Background(), " asha@example.com ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	_, err = svc.Login(context.Background(), "asha@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = NewService(&fakeRepo{}).Login(context.Background(), "nobody@example.com", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = NewService(&fakeRepo{failOn: "credentials"}).Login(context.Background(), "a@b.c", "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithoutStoredPassword(t *testing.T) {
	repo := &fakeRepo{creds: &Credentials{Patient: Patient{ID: "p2", Name: "Ravi"}}}

	_, err := NewService(repo).Login(context.Background(), "ravi@example.com", "")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
