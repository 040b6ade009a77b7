// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package environment

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_IsValidEnvironmentName(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		require.True(t, IsValidEnvironmentName("demo1"))
		require.True(t, IsValidEnvironmentName("my-env_2.test(x)"))
	})

	t.Run("Invalid", func(t *testing.T) {
		require.False(t, IsValidEnvironmentName(""))
		require.False(t, IsValidEnvironmentName("has space"))
		require.False(t, IsValidEnvironmentName("has/slash"))
	})
}

func Test_SaveAndLoadRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".azure", "demo1", ".env")

	env := Empty(file)
	env.Values[EnvNameEnvVarName] = "demo1"
	env.Values[LocationEnvVarName] = "eastus"
	env.Values[InferenceEndpointEnvVarName] = "https://aixyz.services.ai.azure.com/models"
	require.NoError(t, env.Save())

	loaded, err := FromFile(file)
	require.NoError(t, err)
	require.Equal(t, "demo1", loaded.GetEnvName())
	require.Equal(t, "eastus", loaded.GetLocation())
	require.Equal(t, "https://aixyz.services.ai.azure.com/models", loaded.Values[InferenceEndpointEnvVarName])
}

func Test_SaveWithoutFileIsNoop(t *testing.T) {
	env := Environment{Values: map[string]string{"A": "1"}}
	require.NoError(t, env.Save())
}

func Test_FromFileMissing(t *testing.T) {
	env, err := FromFile(filepath.Join(t.TempDir(), "missing", ".env"))
	require.Error(t, err)
	require.NotNil(t, env.Values)
	require.Empty(t, env.Values)
}
