package admin

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	id "privid/pkg/domain"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	PUT(path string, body interface{}) error
	GET(path string) error
	ActAs(name string)
	Principal(name string) id.Principal
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers verifier-administration step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	ctx.Step(`^"([^"]*)" is an authorized verifier$`, steps.isAuthorizedVerifier)
	ctx.Step(`^"([^"]*)" authorizes "([^"]*)" as a verifier$`, steps.authorize)
	ctx.Step(`^"([^"]*)" deauthorizes verifier "([^"]*)"$`, steps.deauthorize)
	ctx.Step(`^I look up verifier "([^"]*)"$`, steps.lookUp)
}

type adminSteps struct {
	tc TestContext
}

func (s *adminSteps) isAuthorizedVerifier(ctx context.Context, verifier string) error {
	if err := s.authorize(ctx, "admin", verifier); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("authorizing %s failed with %d: %s", verifier, status, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *adminSteps) authorize(ctx context.Context, caller, verifier string) error {
	return s.set(caller, verifier, true)
}

func (s *adminSteps) deauthorize(ctx context.Context, caller, verifier string) error {
	return s.set(caller, verifier, false)
}

func (s *adminSteps) set(caller, verifier string, authorized bool) error {
	s.tc.ActAs(caller)
	return s.tc.PUT("/v1/verifiers/"+s.tc.Principal(verifier).String(), map[string]interface{}{
		"authorized": authorized,
	})
}

func (s *adminSteps) lookUp(ctx context.Context, verifier string) error {
	return s.tc.GET("/v1/verifiers/" + s.tc.Principal(verifier).String())
}
