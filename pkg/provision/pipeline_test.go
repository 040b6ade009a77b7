// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

import (
	"strings"
	"testing"

	"github.com/azure-samples/appservice-ai-planner/pkg/environment"
	"github.com/stretchr/testify/require"
)

// Every key the export surface must always publish, present even when the subsystem
// behind it is disabled.
var exportContractKeys = []string{
	environment.EnvNameEnvVarName,
	environment.LocationEnvVarName,
	environment.TenantIdEnvVarName,
	environment.SubscriptionIdEnvVarName,
	environment.ResourceGroupEnvVarName,
	environment.PrincipalIdEnvVarName,
	environment.ClientIdEnvVarName,
	environment.InferenceEndpointEnvVarName,
	environment.InferenceCredentialEnvVarName,
	environment.ChatDeploymentEnvVarName,
	environment.AudioDeploymentEnvVarName,
	environment.AudioModelWarningEnvVarName,
	environment.ServiceWebNameEnvVarName,
	environment.ServiceWebUriEnvVarName,
	environment.EnableKeyVaultEnvVarName,
	environment.KeyVaultNameEnvVarName,
	environment.KeyVaultEndpointEnvVarName,
	environment.SearchEndpointEnvVarName,
	environment.StorageAccountEnvVarName,
	environment.AppInsightsConnectionRefEnvVarName,
	environment.EnableTracingEnvVarName,
}

func Test_Evaluate_NewSetupScenario(t *testing.T) {
	dctx := testContext("demo1", "eastus")
	p := NewDefaultParameters()
	p.EnvironmentName = "demo1"
	p.Location = "eastus"

	result, err := Evaluate(dctx, p)
	require.NoError(t, err)

	plan := result.Plan
	require.NotNil(t, plan.Resource(logicalChatDeployment))
	require.NotNil(t, plan.Resource(logicalAudioDeployment))
	require.Equal(t, "gpt-4o-mini", plan.ChatDeploymentName)
	require.Equal(t, "gpt-4o-mini-audio-preview", plan.AudioDeploymentName)

	// the exported endpoint is the newly created account's synthesized endpoint
	aiName := result.Derivation.Names.AiAccount
	require.Equal(
		t,
		"https://"+aiName+".services.ai.azure.com/models",
		result.Exports[environment.InferenceEndpointEnvVarName],
	)
	require.Equal(
		t,
		environment.ManagedIdentityClientId,
		result.Exports[environment.ClientIdEnvVarName],
	)
}

func Test_Evaluate_ExistingSetupScenario(t *testing.T) {
	dctx := testContext("demo2", "eastus")
	p := NewDefaultParameters()
	p.EnvironmentName = "demo2"
	p.Location = "eastus"
	p.ExistingAiEndpoint = "https://myproj.eastus.models.ai.azure.com/models"

	result, err := Evaluate(dctx, p)
	require.NoError(t, err)

	require.Equal(t, "myproj", result.Derivation.Existing.AccountName)
	require.Contains(t, result.Derivation.Existing.ResourceId, "/accounts/myproj")
	require.False(t, result.Plan.HasKind(KindAiAccount))
	require.False(t, result.Plan.HasKind(KindModelDeployment))
	require.Equal(
		t,
		"https://myproj.eastus.models.ai.azure.com/models",
		result.Exports[environment.InferenceEndpointEnvVarName],
	)
}

func Test_Evaluate_ExportContract(t *testing.T) {
	t.Run("AllKeysAlwaysPresent", func(t *testing.T) {
		dctx := testContext("demo1", "eastus")
		p := NewDefaultParameters()
		p.EnvironmentName = "demo1"
		p.Location = "eastus"
		p.EnableMonitoring = false

		result, err := Evaluate(dctx, p)
		require.NoError(t, err)

		for _, key := range exportContractKeys {
			_, ok := result.Exports[key]
			require.True(t, ok, "export surface is missing key %s", key)
		}

		require.Equal(t, "", result.Exports[environment.KeyVaultNameEnvVarName])
		require.Equal(t, "false", result.Exports[environment.EnableKeyVaultEnvVarName])
		require.Equal(t, "false", result.Exports[environment.EnableTracingEnvVarName])
		require.Equal(t, "", result.Exports[environment.AppInsightsConnectionRefEnvVarName])
	})

	t.Run("ManagedIdentityModeLeaksNoSecrets", func(t *testing.T) {
		dctx := testContext("demo1", "eastus")
		p := NewDefaultParameters()
		p.EnvironmentName = "demo1"
		p.Location = "eastus"

		result, err := Evaluate(dctx, p)
		require.NoError(t, err)

		require.Equal(t, "", result.Exports[environment.InferenceCredentialEnvVarName])
	})

	t.Run("KeyVaultModeExportsReferencesOnly", func(t *testing.T) {
		dctx := testContext("demo1", "eastus")
		p := NewDefaultParameters()
		p.EnvironmentName = "demo1"
		p.Location = "eastus"
		p.EnableKeyVault = true

		result, err := Evaluate(dctx, p)
		require.NoError(t, err)

		credential := result.Exports[environment.InferenceCredentialEnvVarName]
		require.True(t, strings.HasPrefix(credential, "@Microsoft.KeyVault("),
			"key vault mode must export a vault reference, got %q", credential)
		require.Equal(t, "", result.Exports[environment.ClientIdEnvVarName])
		require.Equal(t, "true", result.Exports[environment.EnableKeyVaultEnvVarName])
	})

	t.Run("AudioWarningExported", func(t *testing.T) {
		dctx := testContext("demo1", "westeurope")
		p := NewDefaultParameters()
		p.EnvironmentName = "demo1"
		p.Location = "westeurope"

		result, err := Evaluate(dctx, p)
		require.NoError(t, err)

		require.Equal(t, "", result.Exports[environment.AudioDeploymentEnvVarName])
		require.NotEmpty(t, result.Exports[environment.AudioModelWarningEnvVarName])
	})
}

func Test_Evaluate_IdempotentConvergence(t *testing.T) {
	dctx := testContext("demo1", "eastus")
	p := NewDefaultParameters()
	p.EnvironmentName = "demo1"
	p.Location = "eastus"

	first, err := Evaluate(dctx, p)
	require.NoError(t, err)
	second, err := Evaluate(dctx, p)
	require.NoError(t, err)

	require.Equal(t, len(first.Plan.Bindings), len(second.Plan.Bindings))
	for i := range first.Plan.Bindings {
		require.Equal(t, first.Plan.Bindings[i].Name, second.Plan.Bindings[i].Name)
		require.Equal(t, first.Plan.Bindings[i].Id, second.Plan.Bindings[i].Id)
	}
	require.Equal(t, first.Exports, second.Exports)
}

func Test_Evaluate_RejectsMalformedInput(t *testing.T) {
	dctx := testContext("demo1", "eastus")

	t.Run("MalformedEndpoint", func(t *testing.T) {
		p := NewDefaultParameters()
		p.EnvironmentName = "demo1"
		p.Location = "eastus"
		p.ExistingAiEndpoint = "myproj.eastus.models.ai.azure.com"

		_, err := Evaluate(dctx, p)
		require.Error(t, err)
		require.ErrorContains(t, err, "existingAiEndpoint")
	})

	t.Run("MissingEnvironmentName", func(t *testing.T) {
		p := NewDefaultParameters()
		p.Location = "eastus"

		_, err := Evaluate(dctx, p)
		require.Error(t, err)
		require.ErrorContains(t, err, "environmentName")
	})
}
