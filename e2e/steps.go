package e2e

import (
	"github.com/cucumber/godog"

	"privid/e2e/steps/admin"
	"privid/e2e/steps/common"
	"privid/e2e/steps/credential"
	"privid/e2e/steps/verification"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	admin.RegisterSteps(ctx, tc)
	credential.RegisterSteps(ctx, tc)
	verification.RegisterSteps(ctx, tc)
}
