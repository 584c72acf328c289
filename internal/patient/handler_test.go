package patient

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupRouter(repo Repository) *chi.Mux {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(NewService(repo)))
	return r
}

func TestGetPatient(t *testing.T) {
	r := setupRouter(sampleRepo())

	req := httptest.NewRequest(http.MethodGet, "/patient/p1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Contains(t, body, "patient")
	assert.Contains(t, body, "history")
	assert.Contains(t, body, "prescriptions")
	assert.Contains(t, body, "tests")
}

func TestGetUnknownPatient(t *testing.T) {
	r := setupRouter(&fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/patient/ghost", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"patient": null, "history": [], "prescriptions": [], "tests": []}`, resp.Body.String())
}

func TestGetPatientFailure(t *testing.T) {
	repo := sampleRepo()
	repo.failOn = "tests"
	r := setupRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/patient/p1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"error": "Failed to fetch patient data"}`, resp.Body.String())
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &fakeRepo{creds: &Credentials{Patient: Patient{ID: "p1", Email: "asha@example.com"}, PasswordHash: string(hash)}}
	r := setupRouter(repo)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"email": "asha@example.com", "password": "s3cret"}`, http.StatusOK},
		{"wrong password", `{"email": "asha@example.com", "password": "nope"}`, http.StatusUnauthorized},
		{"missing password", `{"email": "asha@example.com"}`, http.StatusBadRequest},
		{"not json", `email=asha`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()

			r.ServeHTTP(resp, req)

			assert.Equal(t, tc.status, resp.Code)
		})
	}
}

func TestLoginHandlerStoreFailure(t *testing.T) {
	r := setupRouter(&fakeRepo{failOn: "credentials"})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email": "a@b.c", "password": "x"}`))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"message": "Login failed"}`, resp.Body.String())
}

func TestLoginHandlerAccountWithoutPassword(t *testing.T) {
	r := setupRouter(&fakeRepo{creds: &Credentials{Patient: Patient{ID: "p2", Email: "ravi@example.com"}}})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email": "ravi@example.com", "password": "anything"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
