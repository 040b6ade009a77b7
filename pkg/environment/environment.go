// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package environment

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/azure-samples/appservice-ai-planner/pkg/osutil"
	"github.com/joho/godotenv"
)

// Names of the keys published on the export surface. The consuming Flask application
// reads these as process environment variables with exact name matching, so renaming
// any of them is a breaking change.
const (
	// EnvNameEnvVarName is the name of the key used to store the envname property in the environment.
	EnvNameEnvVarName = "AZURE_ENV_NAME"

	// LocationEnvVarName is the name of the key used to store the location property in the environment.
	LocationEnvVarName = "AZURE_LOCATION"

	// SubscriptionIdEnvVarName is the name of the key used to store the subscription id property in the environment.
	SubscriptionIdEnvVarName = "AZURE_SUBSCRIPTION_ID"

	// PrincipalIdEnvVarName is the name of the key used to store the id of a principal in the environment.
	PrincipalIdEnvVarName = "AZURE_PRINCIPAL_ID"

	// TenantIdEnvVarName is the tenant that owns the subscription
	TenantIdEnvVarName = "AZURE_TENANT_ID"

	// ResourceGroupEnvVarName is the name of the azure resource group that should be used for deployments
	ResourceGroupEnvVarName = "AZURE_RESOURCE_GROUP"

	// ClientIdEnvVarName carries the authentication mode marker consumed by the
	// application; in managed identity mode its value is ManagedIdentityClientId.
	ClientIdEnvVarName = "AZURE_CLIENT_ID"

	// InferenceEndpointEnvVarName is the AI inference endpoint the application talks to.
	InferenceEndpointEnvVarName = "AZURE_INFERENCE_ENDPOINT"

	// InferenceCredentialEnvVarName is the legacy credential slot. In managed identity
	// mode it is empty; in key vault mode it holds a vault reference, never a literal
	// secret.
	InferenceCredentialEnvVarName = "AZURE_INFERENCE_CREDENTIAL"

	// ChatDeploymentEnvVarName is the name of the chat model deployment.
	ChatDeploymentEnvVarName = "AZURE_AI_CHAT_DEPLOYMENT_NAME"

	// AudioDeploymentEnvVarName is the name of the audio model deployment, empty when
	// the audio model was dropped or not requested.
	AudioDeploymentEnvVarName = "AZURE_AI_AUDIO_DEPLOYMENT_NAME"

	// AudioModelWarningEnvVarName carries the degrade-and-warn message produced when the
	// selected region cannot host the audio model.
	AudioModelWarningEnvVarName = "AZURE_AI_AUDIO_MODEL_WARNING"

	// ServiceWebNameEnvVarName is the name of the provisioned app service.
	ServiceWebNameEnvVarName = "SERVICE_WEB_NAME"

	// ServiceWebUriEnvVarName is the https URI of the provisioned app service.
	ServiceWebUriEnvVarName = "SERVICE_WEB_URI"

	// EnableKeyVaultEnvVarName reports whether the legacy key vault mode is active.
	EnableKeyVaultEnvVarName = "ENABLE_KEY_VAULT"

	// KeyVaultNameEnvVarName is the name of the provisioned key vault, empty when disabled.
	KeyVaultNameEnvVarName = "AZURE_KEY_VAULT_NAME"

	// KeyVaultEndpointEnvVarName is the vault URI, empty when disabled.
	KeyVaultEndpointEnvVarName = "AZURE_KEY_VAULT_ENDPOINT"

	// SearchEndpointEnvVarName is the search service endpoint, empty when disabled.
	SearchEndpointEnvVarName = "AZURE_SEARCH_ENDPOINT"

	// StorageAccountEnvVarName is the name of the provisioned storage account.
	StorageAccountEnvVarName = "AZURE_STORAGE_ACCOUNT"

	// AppInsightsConnectionRefEnvVarName points at the application insights connection
	// string resource reference, empty when monitoring is disabled.
	AppInsightsConnectionRefEnvVarName = "APPLICATIONINSIGHTS_CONNECTION_STRING_REF"

	// EnableTracingEnvVarName reports whether monitoring backed tracing is active.
	EnableTracingEnvVarName = "ENABLE_TRACING"
)

// ManagedIdentityClientId is the marker value the application checks to decide it is
// running with a system assigned managed identity instead of an API key.
const ManagedIdentityClientId = "system-assigned-managed-identity"

type Environment struct {
	// Values is a map of setting names to values.
	Values map[string]string
	// File is a path to the file that backs this environment. If empty, the Environment
	// will not be persisted when `Save` is called. This allows the zero value to be used
	// for testing.
	File string
}

// Same restrictions as a deployment name (ref: https://docs.microsoft.com/azure/azure-resource-manager/management/resource-name-rules#microsoftresources)
var environmentNameRegexp = regexp.MustCompile(`^[a-zA-Z0-9-\(\)_\.]{1,64}$`)

func IsValidEnvironmentName(name string) bool {
	return environmentNameRegexp.MatchString(name)
}

// FromFile loads an environment from a file on disk. On error,
// an valid empty environment file, configured to persist its contents
// to file, is returned.
func FromFile(file string) (Environment, error) {
	env := Environment{
		Values: make(map[string]string),
		File:   file,
	}

	e, err := godotenv.Read(file)
	if err != nil {
		env.Values = make(map[string]string)
		return env, fmt.Errorf("can't read %s: %w", file, err)
	}

	env.Values = e
	return env, nil
}

// Empty returns an empty environment, which will be persisted
// to a given file when saved.
func Empty(file string) Environment {
	return Environment{
		File:   file,
		Values: make(map[string]string),
	}
}

// If `File` is set, Save writes the current contents of the environment to
// the given file, creating it and any intermediate directories as needed.
func (e *Environment) Save() error {
	if e.File == "" {
		return nil
	}

	err := os.MkdirAll(filepath.Dir(e.File), osutil.PermissionDirectory)
	if err != nil {
		return fmt.Errorf("failed to create a directory: %w", err)
	}

	err = godotenv.Write(e.Values, e.File)
	if err != nil {
		return fmt.Errorf("can't write '%s': %w", e.File, err)
	}

	return nil
}

func (e *Environment) GetEnvName() string {
	return e.Values[EnvNameEnvVarName]
}

func (e *Environment) GetSubscriptionId() string {
	return e.Values[SubscriptionIdEnvVarName]
}

func (e *Environment) GetTenantId() string {
	return e.Values[TenantIdEnvVarName]
}

func (e *Environment) GetLocation() string {
	return e.Values[LocationEnvVarName]
}
