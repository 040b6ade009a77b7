// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package provision resolves a sparse set of deployment parameters into a complete,
// dependency ordered resource plan and the flat export surface consumed by the
// application tier. Evaluation is a single pass with no cloud calls: the external
// deployment engine executes the plan, this package only guarantees it is internally
// consistent, deterministic and idempotent.
package provision

import (
	"crypto/sha256"
	"encoding/base32"
	"io"
	"strings"

	"github.com/azure-samples/appservice-ai-planner/pkg/azure"
)

// DeploymentContext carries the identity of the deployment target. It is created once
// at the start of evaluation and passed explicitly into every stage; stages never read
// ambient state.
type DeploymentContext struct {
	SubscriptionId    string
	TenantId          string
	ResourceGroupName string
	EnvironmentName   string
	Location          string

	// Seed is only set in validation mode, to make token derivation reproducible
	// across test runs. It must be empty for real deployments.
	Seed string
}

// ResourceGroupId returns the fully qualified id of the deployment's own resource group.
func (c DeploymentContext) ResourceGroupId() string {
	return azure.ResourceGroupRID(c.SubscriptionId, c.ResourceGroupName)
}

const resourceTokenLength = 13

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ResourceToken derives the short lowercase alphanumeric token used to generate default
// resource names. The token is a pure function of the resource group identity, the
// environment name and the location, plus the seed when one is set, so repeated
// evaluations of the same deployment converge on the same names.
func (c DeploymentContext) ResourceToken() string {
	h := sha256.New()
	io.WriteString(h, c.ResourceGroupId())
	io.WriteString(h, "|")
	io.WriteString(h, c.EnvironmentName)
	io.WriteString(h, "|")
	io.WriteString(h, c.Location)
	if c.Seed != "" {
		io.WriteString(h, "|")
		io.WriteString(h, c.Seed)
	}

	token := strings.ToLower(tokenEncoding.EncodeToString(h.Sum(nil)))
	return token[:resourceTokenLength]
}
