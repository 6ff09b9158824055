package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	credentialmodels "privid/internal/credential/models"
	verificationmodels "privid/internal/verification/models"
	verifiermodels "privid/internal/verifier/models"
	zkproofmodels "privid/internal/zkproof/models"
	id "privid/pkg/domain"
	"privid/pkg/payload"
)

// CredentialService registers demo credentials.
type CredentialService interface {
	CreateCredential(ctx context.Context, owner id.Principal, credType id.CredentialType, hash payload.Opaque, expiry time.Time) (*credentialmodels.Credential, error)
}

// VerifierService grants demo verifiers.
type VerifierService interface {
	Admin() id.Principal
	AuthorizeVerifier(ctx context.Context, caller, verifier id.Principal, isAuthorized bool) (*verifiermodels.Verifier, error)
}

// VerificationService drives demo requests through their lifecycle.
type VerificationService interface {
	RequestVerification(ctx context.Context, requester id.Principal, credentialID id.CredentialID, threshold, inputProof payload.Opaque) (*verificationmodels.Request, error)
	ResolveVerification(ctx context.Context, verifier id.Principal, requestID id.RequestID, score payload.Opaque, verified bool) (*verificationmodels.Request, error)
}

// ProofService issues demo proofs.
type ProofService interface {
	GenerateZKProof(ctx context.Context, prover id.Principal, credentialID id.CredentialID, requestID id.RequestID, proofType id.ProofType, hash payload.Opaque) (*zkproofmodels.Proof, error)
}

// Seeder populates an engine with demo data through its public operations,
// so every seeded record has matching events and reputation.
type Seeder struct {
	credentials   CredentialService
	verifiers     VerifierService
	verifications VerificationService
	proofs        ProofService
	inputProof    payload.Opaque
	logger        *slog.Logger
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithInputProof sets the input proof attached to demo verification requests.
// Without one, only verifiers and credentials are seeded.
func WithInputProof(p payload.Opaque) Option {
	return func(s *Seeder) {
		s.inputProof = p.Clone()
	}
}

// New creates a new seeder
func New(credentials CredentialService, verifiers VerifierService, verifications VerificationService, proofs ProofService, logger *slog.Logger, opts ...Option) *Seeder {
	s := &Seeder{
		credentials:   credentials,
		verifiers:     verifiers,
		verifications: verifications,
		proofs:        proofs,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summary counts what SeedAll created.
type Summary struct {
	Verifiers   int
	Credentials int
	Requests    int
	Proofs      int
}

// DemoPrincipal derives a stable address for a demo actor label.
func DemoPrincipal(label string) id.Principal {
	digest := crypto.Keccak256([]byte("privid-demo:" + label))
	return id.Principal(common.BytesToAddress(digest[12:]))
}

var demoVerifiers = []string{"acme-kyc", "northwind-credit"}

var demoHolders = []struct {
	label string
	types []id.CredentialType
}{
	{"alice", []id.CredentialType{id.CredentialTypeGovernmentID, id.CredentialTypeFinancial}},
	{"bob", []id.CredentialType{id.CredentialTypeProfessional}},
	{"carol", []id.CredentialType{id.CredentialTypeAddress, id.CredentialTypeDigitalReputation}},
}

// SeedAll populates the engine with demo data
func (s *Seeder) SeedAll(ctx context.Context) (*Summary, error) {
	s.logger.Info("seeding demo data...")
	summary := &Summary{}

	verifiers, err := s.seedVerifiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed verifiers: %w", err)
	}
	summary.Verifiers = len(verifiers)

	credentials, err := s.seedCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed credentials: %w", err)
	}
	summary.Credentials = len(credentials)

	if len(s.inputProof) > 0 {
		if err := s.seedVerifications(ctx, verifiers, credentials, summary); err != nil {
			return nil, fmt.Errorf("failed to seed verifications: %w", err)
		}
	}

	s.logger.Info("demo data seeded successfully",
		"verifiers", summary.Verifiers,
		"credentials", summary.Credentials,
		"requests", summary.Requests,
		"proofs", summary.Proofs,
	)
	return summary, nil
}

func (s *Seeder) seedVerifiers(ctx context.Context) ([]id.Principal, error) {
	admin := s.verifiers.Admin()
	out := make([]id.Principal, 0, len(demoVerifiers))
	for _, label := range demoVerifiers {
		p := DemoPrincipal(label)
		if _, err := s.verifiers.AuthorizeVerifier(ctx, admin, p, true); err != nil {
			return nil, err
		}
		s.logger.Debug("seeded verifier", "label", label, "address", p)
		out = append(out, p)
	}
	return out, nil
}

func (s *Seeder) seedCredentials(ctx context.Context) ([]*credentialmodels.Credential, error) {
	expiry := time.Now().AddDate(1, 0, 0)
	var out []*credentialmodels.Credential
	for _, h := range demoHolders {
		owner := DemoPrincipal(h.label)
		for _, t := range h.types {
			hash := crypto.Keccak256([]byte(h.label + ":" + t.String()))
			c, err := s.credentials.CreateCredential(ctx, owner, t, hash, expiry)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// seedVerifications leaves one verified request with a proof, one rejected
// request and one pending request.
func (s *Seeder) seedVerifications(ctx context.Context, verifiers []id.Principal, credentials []*credentialmodels.Credential, summary *Summary) error {
	if len(verifiers) == 0 || len(credentials) < 3 {
		return nil
	}
	requester := DemoPrincipal("relying-party")
	threshold := payload.Opaque(strings.Repeat("t", 32))
	score := payload.Opaque(strings.Repeat("s", 32))

	outcomes := []struct {
		verified *bool
		proof    bool
	}{
		{verified: ptr(true), proof: true},
		{verified: ptr(false)},
		{},
	}
	for i, o := range outcomes {
		c := credentials[i]
		r, err := s.verifications.RequestVerification(ctx, requester, c.ID, threshold, s.inputProof)
		if err != nil {
			return err
		}
		summary.Requests++
		if o.verified == nil {
			continue
		}
		if _, err := s.verifications.ResolveVerification(ctx, verifiers[i%len(verifiers)], r.ID, score, *o.verified); err != nil {
			return err
		}
		if !o.proof {
			continue
		}
		digest := crypto.Keccak256([]byte(fmt.Sprintf("proof:%d:%d", c.ID, r.ID)))
		if _, err := s.proofs.GenerateZKProof(ctx, requester, c.ID, r.ID, id.ProofTypeZeroKnowledge, digest); err != nil {
			return err
		}
		summary.Proofs++
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
