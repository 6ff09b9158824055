package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	id "privid/pkg/domain"
	"privid/pkg/payload"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string) error
	ActAs(name string)
	Principal(name string) id.Principal
	Save(key, value string)
	Saved(key string) (string, error)
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers credential lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &credentialSteps{tc: tc}

	ctx.Step(`^"([^"]*)" registers a "([^"]*)" credential$`, steps.register)
	ctx.Step(`^"([^"]*)" registers a "([^"]*)" credential expiring in (-?\d+) days$`, steps.registerExpiring)
	ctx.Step(`^"([^"]*)" holds a "([^"]*)" credential$`, steps.holds)
	ctx.Step(`^"([^"]*)" revokes the credential$`, steps.revoke)
	ctx.Step(`^I fetch the credential$`, steps.fetch)
	ctx.Step(`^"([^"]*)" lists their credentials$`, steps.list)
	ctx.Step(`^the response should list (\d+) credentials?$`, steps.shouldList)
}

type credentialSteps struct {
	tc TestContext
}

func (s *credentialSteps) register(ctx context.Context, owner, credType string) error {
	return s.registerExpiring(ctx, owner, credType, 365)
}

func (s *credentialSteps) registerExpiring(ctx context.Context, owner, credType string, days int) error {
	s.tc.ActAs(owner)
	err := s.tc.POST("/v1/credentials", map[string]interface{}{
		"credential_type": credType,
		"encrypted_hash":  payload.Opaque("commitment-of-" + owner).String(),
		"expiry":          time.Now().AddDate(0, 0, days).UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == 201 {
		credentialID, err := s.tc.GetResponseField("id")
		if err != nil {
			return err
		}
		s.tc.Save("credential", fmt.Sprint(credentialID))
	}
	return nil
}

func (s *credentialSteps) holds(ctx context.Context, owner, credType string) error {
	if err := s.register(ctx, owner, credType); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 201 {
		return fmt.Errorf("credential registration failed with %d: %s", status, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *credentialSteps) revoke(ctx context.Context, caller string) error {
	credentialID, err := s.tc.Saved("credential")
	if err != nil {
		return err
	}
	s.tc.ActAs(caller)
	return s.tc.POST("/v1/credentials/"+credentialID+"/revoke", map[string]interface{}{})
}

func (s *credentialSteps) fetch(ctx context.Context) error {
	credentialID, err := s.tc.Saved("credential")
	if err != nil {
		return err
	}
	return s.tc.GET("/v1/credentials/" + credentialID)
}

func (s *credentialSteps) list(ctx context.Context, owner string) error {
	s.tc.ActAs(owner)
	return s.tc.GET("/v1/credentials")
}

func (s *credentialSteps) shouldList(ctx context.Context, n int) error {
	var body struct {
		Credentials []json.RawMessage `json:"credentials"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(body.Credentials) != n {
		return fmt.Errorf("expected %d credentials but got %d", n, len(body.Credentials))
	}
	return nil
}
