package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

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

// RegisterSteps registers verification, proof and reputation step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &verificationSteps{tc: tc}

	// Verification requests
	ctx.Step(`^"([^"]*)" requests verification of the credential$`, steps.requestVerification)
	ctx.Step(`^"([^"]*)" requests verification with a (\d+)-byte input proof$`, steps.requestWithProofSize)
	ctx.Step(`^"([^"]*)" resolves the request as (verified|rejected)$`, steps.resolve)
	ctx.Step(`^I fetch the verification request$`, steps.fetchRequest)

	// Proofs
	ctx.Step(`^"([^"]*)" generates a "([^"]*)" proof for the request$`, steps.generateProof)
	ctx.Step(`^I fetch the proof$`, steps.fetchProof)

	// Reputation and events
	ctx.Step(`^the user reputation of "([^"]*)" should be (\d+)$`, steps.userReputationShouldBe)
	ctx.Step(`^the verifier reputation of "([^"]*)" should be (\d+)$`, steps.verifierReputationShouldBe)
	ctx.Step(`^the event log should record "([^"]*)"$`, steps.eventLogShouldRecord)
	ctx.Step(`^the event log should not mention the credential hash of "([^"]*)"$`, steps.eventLogShouldNotMentionHash)
}

type verificationSteps struct {
	tc TestContext
}

const minInputProofBytes = 64

func (s *verificationSteps) requestVerification(ctx context.Context, requester string) error {
	return s.requestWithProofSize(ctx, requester, minInputProofBytes)
}

func (s *verificationSteps) requestWithProofSize(ctx context.Context, requester string, size int) error {
	credentialID, err := s.tc.Saved("credential")
	if err != nil {
		return err
	}
	s.tc.ActAs(requester)
	err = s.tc.POST("/v1/verifications", map[string]interface{}{
		"credential_id":       credentialID,
		"encrypted_threshold": payload.Opaque("threshold-of-" + requester).String(),
		"input_proof":         payload.Opaque(strings.Repeat("p", size)).String(),
	})
	if err != nil {
		return err
	}
	return s.saveID("request")
}

func (s *verificationSteps) resolve(ctx context.Context, verifier, outcome string) error {
	requestID, err := s.tc.Saved("request")
	if err != nil {
		return err
	}
	s.tc.ActAs(verifier)
	return s.tc.POST("/v1/verifications/"+requestID+"/resolve", map[string]interface{}{
		"encrypted_score": payload.Opaque("score").String(),
		"verified":        outcome == "verified",
	})
}

func (s *verificationSteps) fetchRequest(ctx context.Context) error {
	requestID, err := s.tc.Saved("request")
	if err != nil {
		return err
	}
	return s.tc.GET("/v1/verifications/" + requestID)
}

func (s *verificationSteps) generateProof(ctx context.Context, prover, proofType string) error {
	credentialID, err := s.tc.Saved("credential")
	if err != nil {
		return err
	}
	requestID, err := s.tc.Saved("request")
	if err != nil {
		return err
	}
	s.tc.ActAs(prover)
	err = s.tc.POST("/v1/proofs", map[string]interface{}{
		"credential_id": credentialID,
		"request_id":    requestID,
		"proof_type":    proofType,
		"proof_hash":    payload.Opaque("proof-digest").String(),
	})
	if err != nil {
		return err
	}
	return s.saveID("proof")
}

func (s *verificationSteps) fetchProof(ctx context.Context) error {
	proofID, err := s.tc.Saved("proof")
	if err != nil {
		return err
	}
	return s.tc.GET("/v1/proofs/" + proofID)
}

func (s *verificationSteps) userReputationShouldBe(ctx context.Context, name string, want int) error {
	return s.reputationShouldBe(name, "user_score", want)
}

func (s *verificationSteps) verifierReputationShouldBe(ctx context.Context, name string, want int) error {
	return s.reputationShouldBe(name, "verifier_score", want)
}

func (s *verificationSteps) reputationShouldBe(name, field string, want int) error {
	if err := s.tc.GET("/v1/reputation/" + s.tc.Principal(name).String()); err != nil {
		return err
	}
	got, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		return fmt.Errorf("%s of %s: expected %d but got %v", field, name, want, got)
	}
	return nil
}

func (s *verificationSteps) eventLogShouldRecord(ctx context.Context, eventType string) error {
	events, err := s.events()
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.Type == eventType {
			return nil
		}
	}
	return fmt.Errorf("no %s event in log: %s", eventType, s.tc.GetLastResponseBody())
}

func (s *verificationSteps) eventLogShouldNotMentionHash(ctx context.Context, owner string) error {
	if _, err := s.events(); err != nil {
		return err
	}
	body := string(s.tc.GetLastResponseBody())
	for _, needle := range []string{"commitment-of-" + owner, payload.Opaque("commitment-of-" + owner).String()} {
		if strings.Contains(body, needle) {
			return fmt.Errorf("event log leaks credential hash %q", needle)
		}
	}
	return nil
}

type event struct {
	Type string `json:"type"`
}

func (s *verificationSteps) events() ([]event, error) {
	if err := s.tc.GET("/v1/events?limit=1000"); err != nil {
		return nil, err
	}
	var page struct {
		Events []event `json:"events"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &page); err != nil {
		return nil, fmt.Errorf("failed to parse events: %w", err)
	}
	return page.Events, nil
}

// saveID records the created entity's ID when the last call succeeded.
func (s *verificationSteps) saveID(key string) error {
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	v, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Save(key, fmt.Sprint(v))
	return nil
}
