package config

import (
	"context"
	"os/exec"
	"strings"
)

// SubscriptionDetector finds the Azure subscription selected in the az CLI
type SubscriptionDetector struct {
	// run executes a command and returns its stdout
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewSubscriptionDetector creates a detector that shells out to the az CLI
func NewSubscriptionDetector() *SubscriptionDetector {
	return &SubscriptionDetector{
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// DetectionResult contains the result of subscription detection
type DetectionResult struct {
	Available      bool
	Status         string
	SubscriptionID string
	TenantID       string
}

// Detect asks `az account show` for the current subscription
func (d *SubscriptionDetector) Detect(ctx context.Context) DetectionResult {
	result := DetectionResult{}

	output, err := d.run(ctx, "az", "account", "show", "--query", "[id, tenantId]", "--output", "tsv")
	if err != nil {
		result.Status = "az CLI not found or not logged in"
		return result
	}

	fields := strings.Fields(string(output))
	if len(fields) == 0 {
		result.Status = "no subscription selected in az CLI"
		return result
	}

	result.Available = true
	result.SubscriptionID = fields[0]
	if len(fields) > 1 {
		result.TenantID = fields[1]
	}
	result.Status = "subscription " + result.SubscriptionID + " selected in az CLI"

	return result
}

// FillFromCLI sets the subscription and tenant from the az CLI when they are not configured
func (c *Config) FillFromCLI(ctx context.Context, d *SubscriptionDetector) bool {
	if c.Azure.SubscriptionID != "" {
		return false
	}
	result := d.Detect(ctx)
	if !result.Available {
		return false
	}
	c.Azure.SubscriptionID = result.SubscriptionID
	if c.Azure.TenantID == "" {
		c.Azure.TenantID = result.TenantID
	}
	return true
}
