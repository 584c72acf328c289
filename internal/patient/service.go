package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service interface {
	// Snapshot fetches the patient and up to limit of each record kind
	// concurrently. Any failed lookup fails the whole snapshot.
	Snapshot(ctx context.Context, id string, limit int) (*Snapshot, error)
	Login(ctx context.Context, email, password string) (*Patient, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Snapshot(ctx context.Context, id string, limit int) (*Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.repo.PatientInfo(ctx, id)
		snap.Patient = p
		return err
	})
	g.Go(func() error {
		h, err := s.repo.MedicalHistory(ctx, id, limit)
		snap.History = h
		return err
	})
	g.Go(func() error {
		p, err := s.repo.Prescriptions(ctx, id, limit)
		snap.Prescriptions = p
		return err
	})
	g.Go(func() error {
		t, err := s.repo.Tests(ctx, id, limit)
		snap.Tests = t
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble snapshot for %s: %w", id, err)
	}

	if snap.History == nil {
		snap.History = []HistoryEntry{}
	}
	if snap.Prescriptions == nil {
		snap.Prescriptions = []Prescription{}
	}
	if snap.Tests == nil {
		snap.Tests = []TestRecord{}
	}
	return &snap, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*Patient, error) {
	creds, err := s.repo.FindCredentials(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if creds == nil || creds.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.WithError(err).WithField("patient_id", creds.Patient.ID).Warn("stored password hash is unusable")
		}
		return nil, ErrInvalidCredentials
	}
	return &creds.Patient, nil
}

const dateLayout = "2006-01-02"

// PromptContext renders the snapshot as the patient block prepended to
// generation prompts. It is empty when the patient is unknown.
func (s *Snapshot) PromptContext() string {
	if s == nil || s.Patient == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n--- PATIENT CONTEXT ---\n")
	fmt.Fprintf(&b, "Patient: %s (Age: %d, Gender: %s)\n", s.Patient.Name, s.Patient.Age, s.Patient.Gender)

	if len(s.History) > 0 {
		b.WriteString("\nRecent Medical History:\n")
		for i, h := range s.History {
			fmt.Fprintf(&b, "%d. %s (%s) - Treatment: %s\n", i+1, h.Diagnosis, h.DateOfDiagnosis.Format(dateLayout), h.TreatmentGiven)
		}
	}

	if len(s.Prescriptions) > 0 {
		b.WriteString("\nCurrent/Recent Prescriptions:\n")
		for i, p := range s.Prescriptions {
			fmt.Fprintf(&b, "%d. %s - %s, %s", i+1, p.MedicationName, p.Dosage, p.Frequency)
			if p.DoctorName != "" {
				fmt.Fprintf(&b, " (Dr. %s)", p.DoctorName)
			}
			b.WriteString("\n")
		}
	}

	if len(s.Tests) > 0 {
		b.WriteString("\nRecent Tests:\n")
		for i, t := range s.Tests {
			fmt.Fprintf(&b, "%d. [%s] %s", i+1, t.Status, t.TestName)
			if t.Result != "" {
				fmt.Fprintf(&b, " - Result: %s", t.Result)
			}
			fmt.Fprintf(&b, " (%s)\n", t.Date.Format(dateLayout))
		}
	}

	b.WriteString("--- END PATIENT CONTEXT ---\n\n")
	return b.String()
}
