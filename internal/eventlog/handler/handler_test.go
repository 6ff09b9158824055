package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"privid/internal/eventlog/models"
	"privid/internal/eventlog/service"
	"privid/internal/eventlog/store"
	id "privid/pkg/domain"
)

type HandlerSuite struct {
	suite.Suite
	router http.Handler
	log    *service.Log
}

func (s *HandlerSuite) SetupTest() {
	s.log = service.New(store.NewInMemory())
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := chi.NewRouter()
	New(s.log, logger).Register(r)
	s.router = r

	p := id.MustPrincipal("0x00000000000000000000000000000000000000d1")
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.log.Append(context.Background(), models.New(models.TypeCredentialCreated, "1", p)))
	}
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) get(path string) (*httptest.ResponseRecorder, *EventsResponse) {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		return rec, nil
	}
	var body EventsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, &body
}

func (s *HandlerSuite) TestListFromStart() {
	_, body := s.get("/v1/events")
	s.Require().NotNil(body)
	s.Len(body.Events, 3)
	s.Equal(uint64(3), body.Next)
}

func (s *HandlerSuite) TestListAfterWithLimit() {
	_, body := s.get("/v1/events?after=1&limit=1")
	s.Require().NotNil(body)
	s.Require().Len(body.Events, 1)
	s.Equal(uint64(2), body.Events[0].Seq)
	s.Equal(uint64(2), body.Next)
}

func (s *HandlerSuite) TestEmptyPageKeepsCursor() {
	_, body := s.get("/v1/events?after=3")
	s.Require().NotNil(body)
	s.Empty(body.Events)
	s.Equal(uint64(3), body.Next)
}

func (s *HandlerSuite) TestInvalidParameter() {
	rec, _ := s.get("/v1/events?after=-1")
	s.Equal(http.StatusBadRequest, rec.Code)
}
