package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnbsp/membership-workflow/constants"
	"github.com/tnbsp/membership-workflow/internal/card"
	"github.com/tnbsp/membership-workflow/internal/export"
	"github.com/tnbsp/membership-workflow/internal/filestore"
	"github.com/tnbsp/membership-workflow/internal/registration"
	"github.com/tnbsp/membership-workflow/internal/repository"
	"github.com/tnbsp/membership-workflow/internal/session"
	"github.com/tnbsp/membership-workflow/internal/verify"
)

type fakeVerifier struct {
	result verify.Result
}

func (f *fakeVerifier) Verify(context.Context, string, string) verify.Result {
	return f.result
}

type testEnv struct {
	router   http.Handler
	verifier *fakeVerifier
	members  repository.MemberRepository
	health   func(context.Context) error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()
	files, err := filestore.NewLocalStore(filestore.LocalConfig{
		TempDir:   filepath.Join(base, "tmp"),
		DocsDir:   filepath.Join(base, "docs"),
		PhotosDir: filepath.Join(base, "photos"),
		CardsDir:  filepath.Join(base, "cards"),
	}, nil)
	require.NoError(t, err)

	env := &testEnv{
		verifier: &fakeVerifier{result: verify.Result{Matched: true, Extracted: "ABC1234567"}},
		members:  repository.NewInMemoryMemberRepository(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	regSvc := registration.NewService(env.verifier, session.NewInMemoryStore(), files, env.members, 0, logger)
	deps := Deps{
		Registration: regSvc,
		Cards:        card.NewService(files, "https://tnbsp.org", logger),
		Export:       export.NewService(env.members, logger),
		Health: func(ctx context.Context) error {
			if env.health != nil {
				return env.health(ctx)
			}
			return nil
		},
		Logger: logger,
	}
	env.router = newRouter(&handler{deps: deps}, logger)
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = io.WriteString(fw, fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (e *testEnv) verifyDocument(t *testing.T) string {
	t.Helper()
	body, ct := multipartBody(t, map[string]string{"epic_number": "ABC1234567"}, "pdf_file", "doc.pdf", "%PDF")
	req := httptest.NewRequest(http.MethodPost, "/verify-document/", body)
	req.Header.Set("Content-Type", ct)
	rr := e.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func (e *testEnv) submitMember(t *testing.T, token string) int64 {
	t.Helper()
	body, ct := multipartBody(t, map[string]string{
		"verification_token": token,
		"name":               "R. Kumar",
		"contact_no":         "9876543210",
		"dob":                "1985-06-14",
	}, "", "", "")
	req := httptest.NewRequest(http.MethodPost, "/submit-details/", body)
	req.Header.Set("Content-Type", ct)
	rr := e.do(t, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotZero(t, resp.ID)
	return resp.ID
}

func TestVerifyDocumentEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.verifyDocument(t)
	assert.NotEmpty(t, token)
}

func TestVerifyDocumentMissingFile(t *testing.T) {
	env := newTestEnv(t)
	body, ct := multipartBody(t, map[string]string{"epic_number": "ABC1234567"}, "", "", "")
	req := httptest.NewRequest(http.MethodPost, "/verify-document/", body)
	req.Header.Set("Content-Type", ct)
	rr := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "pdf_file")
}

func TestVerifyDocumentDistinguishesFailures(t *testing.T) {
	env := newTestEnv(t)

	env.verifier.result = verify.Result{Matched: false, Extracted: ""}
	body, ct := multipartBody(t, map[string]string{"epic_number": "ABC1234567"}, "pdf_file", "doc.pdf", "%PDF")
	req := httptest.NewRequest(http.MethodPost, "/verify-document/", body)
	req.Header.Set("Content-Type", ct)
	rr := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "no EPIC number could be found")

	env.verifier.result = verify.Result{Matched: false, Extracted: "XYZ7654321"}
	body, ct = multipartBody(t, map[string]string{"epic_number": "ABC1234567"}, "pdf_file", "doc.pdf", "%PDF")
	req = httptest.NewRequest(http.MethodPost, "/verify-document/", body)
	req.Header.Set("Content-Type", ct)
	rr = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "XYZ7654321")
	assert.Contains(t, rr.Body.String(), "does not match")
}

func TestSubmitDetailsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.verifyDocument(t)
	id := env.submitMember(t, token)
	assert.NotZero(t, id)
}

func TestSubmitDetailsInvalidToken(t *testing.T) {
	env := newTestEnv(t)
	body, ct := multipartBody(t, map[string]string{
		"verification_token": "bogus",
		"name":               "R. Kumar",
		"contact_no":         "9876543210",
	}, "", "", "")
	req := httptest.NewRequest(http.MethodPost, "/submit-details/", body)
	req.Header.Set("Content-Type", ct)
	rr := env.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSubmitDetailsValidationError(t *testing.T) {
	env := newTestEnv(t)
	token := env.verifyDocument(t)
	body, ct := multipartBody(t, map[string]string{
		"verification_token": token,
		"name":               "R. Kumar",
		"contact_no":         "not-a-number",
	}, "", "", "")
	req := httptest.NewRequest(http.MethodPost, "/submit-details/", body)
	req.Header.Set("Content-Type", ct)
	rr := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "contact_no")
}

func TestUpdatePaymentEndpoint(t *testing.T) {
	env := newTestEnv(t)
	id := env.submitMember(t, env.verifyDocument(t))

	rr := env.do(t, jsonRequest(t, "/update-payment/", map[string]interface{}{
		"member_id": id, "status": "successful",
	}))
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	m, err := env.members.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.StatusActive), m.Status)
}

func TestUpdatePaymentSchemaRejections(t *testing.T) {
	env := newTestEnv(t)

	for name, payload := range map[string]map[string]interface{}{
		"unknown status":  {"member_id": 1, "status": "refunded"},
		"missing id":      {"status": "successful"},
		"extra field":     {"member_id": 1, "status": "failed", "note": "x"},
		"non-integer id":  {"member_id": "1", "status": "failed"},
		"zero member id":  {"member_id": 0, "status": "failed"},
	} {
		rr := env.do(t, jsonRequest(t, "/update-payment/", payload))
		assert.Equal(t, http.StatusBadRequest, rr.Code, name)
	}
}

func TestUpdatePaymentUnknownMember(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, jsonRequest(t, "/update-payment/", map[string]interface{}{
		"member_id": 424242, "status": "successful",
	}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestVerifyMembershipEndpoint(t *testing.T) {
	env := newTestEnv(t)
	id := env.submitMember(t, env.verifyDocument(t))
	m, err := env.members.GetByID(context.Background(), id)
	require.NoError(t, err)

	// Pending members are not publicly verifiable.
	rr := env.do(t, httptest.NewRequest(http.MethodGet,
		"/verify-membership?id=1&membership_no="+m.MembershipNo, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	env.do(t, jsonRequest(t, "/update-payment/", map[string]interface{}{
		"member_id": id, "status": "successful",
	}))

	rr = env.do(t, httptest.NewRequest(http.MethodGet,
		"/verify-membership?id=1&membership_no="+m.MembershipNo, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"valid":true`)

	rr = env.do(t, httptest.NewRequest(http.MethodGet,
		"/verify-membership?id=1&membership_no=BSP-000000-000000", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/verify-membership?id=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGenerateCardEndpoint(t *testing.T) {
	env := newTestEnv(t)
	id := env.submitMember(t, env.verifyDocument(t))

	rr := env.do(t, jsonRequest(t, "/generate-card/", map[string]interface{}{"member_id": id}))
	assert.Equal(t, http.StatusConflict, rr.Code, "pending members get no card")

	env.do(t, jsonRequest(t, "/update-payment/", map[string]interface{}{
		"member_id": id, "status": "successful",
	}))

	rr = env.do(t, jsonRequest(t, "/generate-card/", map[string]interface{}{"member_id": id}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF"))
}

func TestExportMembersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.submitMember(t, env.verifyDocument(t))

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/members/export.xlsx", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rr.Header().Get("Content-Type"))
	assert.NotZero(t, rr.Body.Len())
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	env.health = func(context.Context) error { return context.DeadlineExceeded }
	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func jsonRequest(t *testing.T, path string, payload interface{}) *http.Request {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}
