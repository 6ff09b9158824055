package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"privid/internal/verification/handler/mocks"
	"privid/internal/verification/models"
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/requestcontext"
)

var caller = id.MustPrincipal("0x7000000000000000000000000000000000000001")

type HandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	router      http.Handler
	now         time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	s.now = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(requestcontext.WithPrincipal(req.Context(), caller)))
		})
	})
	New(s.mockService, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) pending() *models.Request {
	return &models.Request{
		ID:                 3,
		CredentialID:       9,
		Requester:          caller,
		EncryptedThreshold: payload.Opaque("thr"),
		InputProof:         payload.Opaque("proof"),
		Status:             models.StatusPending,
		CreatedAt:          s.now,
	}
}

func (s *HandlerSuite) TestRequestVerification() {
	thr, proof := payload.Opaque("thr"), payload.Opaque("proof")
	s.mockService.EXPECT().
		RequestVerification(gomock.Any(), caller, id.CredentialID(9), thr, proof).
		Return(s.pending(), nil)

	body := `{"credential_id":"9","encrypted_threshold":"` + thr.String() + `","input_proof":"` + proof.String() + `"}`
	rec := s.do(http.MethodPost, "/v1/verifications", body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("3", resp["id"])
	s.Equal("pending", resp["status"])
	s.NotContains(resp, "input_proof")
	s.NotContains(resp, "resolver")
}

func (s *HandlerSuite) TestRequestVerification_Invalid() {
	tests := []struct {
		name string
		body string
	}{
		{"missing credential", `{"encrypted_threshold":"mdGhy","input_proof":"mcHJvb2Y"}`},
		{"bad credential id", `{"credential_id":"x","encrypted_threshold":"mdGhy","input_proof":"mcHJvb2Y"}`},
		{"missing proof", `{"credential_id":"9","encrypted_threshold":"mdGhy"}`},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(http.MethodPost, "/v1/verifications", tt.body)
			s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func (s *HandlerSuite) TestResolveVerification() {
	score := payload.Opaque("score")
	resolved := s.pending()
	resolvedAt := s.now.Add(time.Hour)
	resolved.Status, resolved.Resolver, resolved.ResolvedScore = models.StatusVerified, caller, score
	resolved.Resolution, resolved.ResolvedAt = models.ResolutionVerifier, &resolvedAt

	s.mockService.EXPECT().
		ResolveVerification(gomock.Any(), caller, id.RequestID(3), score, true).
		Return(resolved, nil)

	rec := s.do(http.MethodPost, "/v1/verifications/3/resolve", `{"encrypted_score":"`+score.String()+`","verified":true}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp RequestResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(models.StatusVerified, resp.Status)
	s.Require().NotNil(resp.Resolver)
	s.Equal(caller, *resp.Resolver)
	s.Equal(score, resp.ResolvedScore)
}

func (s *HandlerSuite) TestResolveVerification_MapsErrors() {
	tests := []struct {
		code   dErrors.Code
		status int
	}{
		{dErrors.CodeVerifierNotAuthorized, http.StatusForbidden},
		{dErrors.CodeRequestNotPending, http.StatusConflict},
		{dErrors.CodeRequestNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		s.Run(string(tt.code), func() {
			s.mockService.EXPECT().
				ResolveVerification(gomock.Any(), caller, id.RequestID(3), payload.Opaque("s"), false).
				Return(nil, dErrors.New(tt.code, "nope"))
			rec := s.do(http.MethodPost, "/v1/verifications/3/resolve", `{"encrypted_score":"`+payload.Opaque("s").String()+`","verified":false}`)
			s.Equal(tt.status, rec.Code)
		})
	}
}

func (s *HandlerSuite) TestResolveVerification_MissingOutcome() {
	rec := s.do(http.MethodPost, "/v1/verifications/3/resolve", `{"encrypted_score":"mcw"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestGetVerification() {
	s.mockService.EXPECT().GetVerificationRequestInfo(gomock.Any(), id.RequestID(3)).Return(s.pending(), nil)

	rec := s.do(http.MethodGet, "/v1/verifications/3", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/v1/verifications/0", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}
