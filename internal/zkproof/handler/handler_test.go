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

	"privid/internal/zkproof/handler/mocks"
	"privid/internal/zkproof/models"
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/requestcontext"
)

var prover = id.MustPrincipal("0x9000000000000000000000000000000000000001")

type HandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	router      http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(requestcontext.WithPrincipal(req.Context(), prover)))
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

func (s *HandlerSuite) sample() *models.Proof {
	return &models.Proof{
		ID:           4,
		CredentialID: 1,
		RequestID:    2,
		ProofType:    id.ProofTypeEncryptedProof,
		ProofHash:    payload.Opaque("hash"),
		Prover:       prover,
		IssuedAt:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *HandlerSuite) TestGenerateProof() {
	hash := payload.Opaque("hash")
	s.mockService.EXPECT().
		GenerateZKProof(gomock.Any(), prover, id.CredentialID(1), id.RequestID(2), id.ProofTypeEncryptedProof, hash).
		Return(s.sample(), nil)

	body := `{"credential_id":"1","request_id":"2","proof_type":"encrypted_proof","proof_hash":"` + hash.String() + `"}`
	rec := s.do(http.MethodPost, "/v1/proofs", body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp ProofResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("4", resp.ID)
	s.Equal(hash, resp.ProofHash)
	s.Equal(id.ProofTypeEncryptedProof, resp.ProofType)
}

func (s *HandlerSuite) TestGenerateProof_Invalid() {
	for name, body := range map[string]string{
		"unknown type":   `{"credential_id":"1","request_id":"2","proof_type":"snark","proof_hash":"maGFzaA"}`,
		"missing hash":   `{"credential_id":"1","request_id":"2","proof_type":1}`,
		"bad request id": `{"credential_id":"1","request_id":"0","proof_type":1,"proof_hash":"maGFzaA"}`,
	} {
		s.Run(name, func() {
			rec := s.do(http.MethodPost, "/v1/proofs", body)
			s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func (s *HandlerSuite) TestGenerateProof_MapsErrors() {
	tests := []struct {
		code   dErrors.Code
		status int
	}{
		{dErrors.CodeRequestNotVerified, http.StatusConflict},
		{dErrors.CodeCredentialUnusable, http.StatusConflict},
		{dErrors.CodeNotRequester, http.StatusForbidden},
		{dErrors.CodeRequestNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		s.Run(string(tt.code), func() {
			s.mockService.EXPECT().GenerateZKProof(gomock.Any(), prover, id.CredentialID(1), id.RequestID(2), id.ProofTypeZeroKnowledge, payload.Opaque("hash")).
				Return(nil, dErrors.New(tt.code, "nope"))
			rec := s.do(http.MethodPost, "/v1/proofs", `{"credential_id":"1","request_id":"2","proof_type":"zero_knowledge","proof_hash":"maGFzaA"}`)
			s.Equal(tt.status, rec.Code)
		})
	}
}

func (s *HandlerSuite) TestGetProof() {
	s.mockService.EXPECT().GetZKProofInfo(gomock.Any(), id.ProofID(4)).Return(s.sample(), nil)
	rec := s.do(http.MethodGet, "/v1/proofs/4", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	s.mockService.EXPECT().GetZKProofInfo(gomock.Any(), id.ProofID(5)).Return(nil, dErrors.New(dErrors.CodeProofNotFound, "nope"))
	rec = s.do(http.MethodGet, "/v1/proofs/5", "")
	s.Equal(http.StatusNotFound, rec.Code)
}
