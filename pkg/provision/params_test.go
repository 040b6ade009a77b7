// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeParametersFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.parameters.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func Test_ApplyFile(t *testing.T) {
	t.Run("OverlaysValues", func(t *testing.T) {
		path := writeParametersFile(t, `{
			"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentParameters.json#",
			"contentVersion": "1.0.0.0",
			"parameters": {
				"environmentName": {"value": "demo1"},
				"location": {"value": "eastus"},
				"chatModelCapacity": {"value": 100},
				"enableKeyVault": {"value": true},
				"appServiceName": {"value": "my-chatbot"}
			}
		}`)

		p := NewDefaultParameters()
		require.NoError(t, p.ApplyFile(path))

		require.Equal(t, "demo1", p.EnvironmentName)
		require.Equal(t, "eastus", p.Location)
		require.Equal(t, int32(100), p.ChatModel.Capacity)
		require.True(t, p.EnableKeyVault)
		require.Equal(t, "my-chatbot", p.AppServiceName)
		// untouched defaults survive the overlay
		require.Equal(t, "gpt-4o-mini", p.ChatModel.Name)
	})

	t.Run("Tags", func(t *testing.T) {
		path := writeParametersFile(t, `{
			"parameters": {
				"tags": {"value": {"costCenter": "1234", "team": "chatbot"}}
			}
		}`)

		p := NewDefaultParameters()
		require.NoError(t, p.ApplyFile(path))
		require.Equal(t, map[string]string{"costCenter": "1234", "team": "chatbot"}, p.Tags)
	})

	t.Run("TagsWrongValueType", func(t *testing.T) {
		path := writeParametersFile(t, `{
			"parameters": {"tags": {"value": {"costCenter": 1234}}}
		}`)

		p := NewDefaultParameters()
		err := p.ApplyFile(path)
		require.Error(t, err)
		require.ErrorContains(t, err, "costCenter")
	})

	t.Run("UnknownParameter", func(t *testing.T) {
		path := writeParametersFile(t, `{
			"parameters": {"notAThing": {"value": "x"}}
		}`)

		p := NewDefaultParameters()
		err := p.ApplyFile(path)
		require.Error(t, err)
		require.ErrorContains(t, err, "notAThing")
	})

	t.Run("WrongType", func(t *testing.T) {
		path := writeParametersFile(t, `{
			"parameters": {"enableKeyVault": {"value": "yes"}}
		}`)

		p := NewDefaultParameters()
		err := p.ApplyFile(path)
		require.Error(t, err)
		require.ErrorContains(t, err, "enableKeyVault")
	})
}

func Test_ApplyEnviron(t *testing.T) {
	values := map[string]string{
		"AZURE_ENV_NAME":             "demo1",
		"AZURE_LOCATION":             "eastus",
		"AZURE_EXISTING_AI_ENDPOINT": "https://myproj.eastus.models.ai.azure.com",
	}
	lookup := func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}

	p := NewDefaultParameters()
	p.ApplyEnviron(lookup)

	require.Equal(t, "demo1", p.EnvironmentName)
	require.Equal(t, "eastus", p.Location)
	require.Equal(t, "https://myproj.eastus.models.ai.azure.com", p.ExistingAiEndpoint)
}

func Test_Validate(t *testing.T) {
	dctx := testContext("demo1", "eastus")

	t.Run("Valid", func(t *testing.T) {
		p := NewDefaultParameters()
		p.EnvironmentName = "demo1"
		p.Location = "eastus"
		require.NoError(t, p.Validate(dctx))
	})

	t.Run("AggregatesAllFieldErrors", func(t *testing.T) {
		p := NewDefaultParameters()
		p.ChatModel.Capacity = -1

		err := p.Validate(dctx)
		require.Error(t, err)
		require.ErrorContains(t, err, "environmentName")
		require.ErrorContains(t, err, "location")
		require.ErrorContains(t, err, "chatModelCapacity")
	})

	t.Run("BadSetupValue", func(t *testing.T) {
		p := NewDefaultParameters()
		p.EnvironmentName = "demo1"
		p.Location = "eastus"
		p.AiSetup = "maybe"

		err := p.Validate(dctx)
		require.Error(t, err)
		require.ErrorContains(t, err, "aiSetup")
	})

	t.Run("ExistingRequiresEndpoint", func(t *testing.T) {
		p := NewDefaultParameters()
		p.EnvironmentName = "demo1"
		p.Location = "eastus"
		p.AiSetup = "existing"

		err := p.Validate(dctx)
		require.Error(t, err)
		require.ErrorContains(t, err, "existingAiEndpoint")
	})

	t.Run("MalformedEndpointNamed", func(t *testing.T) {
		p := NewDefaultParameters()
		p.EnvironmentName = "demo1"
		p.Location = "eastus"
		p.ExistingAiEndpoint = "not-a-url"

		err := p.Validate(dctx)
		require.Error(t, err)
		require.ErrorContains(t, err, "existingAiEndpoint")
	})
}
