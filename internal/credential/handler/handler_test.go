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

	"privid/internal/credential/handler/mocks"
	"privid/internal/credential/models"
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/platform/httputil"
	"privid/pkg/requestcontext"
)

var caller = id.MustPrincipal("0xb000000000000000000000000000000000000001")

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
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	// Stand-in for the auth and request-time middleware.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithPrincipal(req.Context(), caller)
			ctx = requestcontext.WithTime(ctx, s.now)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	New(s.mockService, logger).Register(r)
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

func (s *HandlerSuite) sample() *models.Credential {
	return &models.Credential{
		ID:            5,
		Owner:         caller,
		Type:          id.CredentialTypeGovernmentID,
		EncryptedHash: payload.Opaque("commitment"),
		Expiry:        s.now.Add(24 * time.Hour),
		CreatedAt:     s.now,
	}
}

func (s *HandlerSuite) TestCreateCredential() {
	expiry := s.now.Add(24 * time.Hour)
	s.mockService.EXPECT().
		CreateCredential(gomock.Any(), caller, id.CredentialTypeGovernmentID, payload.Opaque("commitment"), expiry).
		Return(s.sample(), nil)

	body := `{"credential_type":"government_id","encrypted_hash":"` + payload.Opaque("commitment").String() + `","expiry":"` + expiry.Format(time.RFC3339) + `"}`
	rec := s.do(http.MethodPost, "/v1/credentials", body)

	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var resp CredentialResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("5", resp.ID)
	s.Equal(caller, resp.Owner)
	s.True(resp.Usable)
	s.Equal(payload.Opaque("commitment"), resp.EncryptedHash)
}

func (s *HandlerSuite) TestCreateCredential_ValidationFailures() {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing type", `{"encrypted_hash":"mYWJj","expiry":"2027-01-01T00:00:00Z"}`},
		{"unknown type", `{"credential_type":"passport","encrypted_hash":"mYWJj","expiry":"2027-01-01T00:00:00Z"}`},
		{"invalid multibase", `{"credential_type":1,"encrypted_hash":"!!","expiry":"2027-01-01T00:00:00Z"}`},
		{"missing expiry", `{"credential_type":1,"encrypted_hash":"mYWJj"}`},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(http.MethodPost, "/v1/credentials", tt.body)
			s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func (s *HandlerSuite) TestRevokeCredential_MapsDomainErrors() {
	tests := []struct {
		code   dErrors.Code
		status int
	}{
		{dErrors.CodeNotOwner, http.StatusForbidden},
		{dErrors.CodeAlreadyRevoked, http.StatusConflict},
		{dErrors.CodeCredentialNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		s.Run(string(tt.code), func() {
			s.mockService.EXPECT().
				RevokeCredential(gomock.Any(), caller, id.CredentialID(5)).
				Return(nil, dErrors.New(tt.code, "nope"))

			rec := s.do(http.MethodPost, "/v1/credentials/5/revoke", "")
			s.Equal(tt.status, rec.Code)

			var resp httputil.ErrorResponse
			s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
			s.Equal(string(tt.code), resp.Error)
		})
	}
}

func (s *HandlerSuite) TestGetCredential() {
	s.Run("found", func() {
		revoked := s.sample()
		revoked.Revoked = true
		s.mockService.EXPECT().GetCredentialInfo(gomock.Any(), id.CredentialID(5)).Return(revoked, nil)

		rec := s.do(http.MethodGet, "/v1/credentials/5", "")
		s.Require().Equal(http.StatusOK, rec.Code)
		var resp CredentialResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.True(resp.Revoked)
		s.False(resp.Usable)
	})

	s.Run("invalid id", func() {
		rec := s.do(http.MethodGet, "/v1/credentials/abc", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestListCredentials() {
	s.mockService.EXPECT().ListByOwner(gomock.Any(), caller).Return([]*models.Credential{s.sample()}, nil)

	rec := s.do(http.MethodGet, "/v1/credentials", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var resp CredentialListResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Len(resp.Credentials, 1)
}
