// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func testContext(envName string, location string) DeploymentContext {
	return DeploymentContext{
		SubscriptionId:    "70a036f6-8e4d-4615-bad6-149c02e7720d",
		TenantId:          "72f988bf-86f1-41af-91ab-2d7cd011db47",
		ResourceGroupName: "rg-" + envName,
		EnvironmentName:   envName,
		Location:          location,
		Seed:              "validation",
	}
}

var tokenPattern = regexp.MustCompile(`^[a-z0-9]{13}$`)

func Test_ResourceToken(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		first := testContext("demo1", "eastus").ResourceToken()
		second := testContext("demo1", "eastus").ResourceToken()
		require.Equal(t, first, second)
	})

	t.Run("LowercaseAlphanumeric", func(t *testing.T) {
		require.Regexp(t, tokenPattern, testContext("demo1", "eastus").ResourceToken())
	})

	t.Run("VariesByEnvironment", func(t *testing.T) {
		require.NotEqual(
			t,
			testContext("demo1", "eastus").ResourceToken(),
			testContext("demo2", "eastus").ResourceToken(),
		)
	})

	t.Run("VariesByLocation", func(t *testing.T) {
		require.NotEqual(
			t,
			testContext("demo1", "eastus").ResourceToken(),
			testContext("demo1", "westus2").ResourceToken(),
		)
	})

	t.Run("VariesBySeed", func(t *testing.T) {
		seeded := testContext("demo1", "eastus")
		unseeded := seeded
		unseeded.Seed = ""
		require.NotEqual(t, seeded.ResourceToken(), unseeded.ResourceToken())
	})
}
