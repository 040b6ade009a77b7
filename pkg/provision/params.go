// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/azure-samples/appservice-ai-planner/pkg/azure"
	"github.com/azure-samples/appservice-ai-planner/pkg/environment"
	"go.uber.org/multierr"
)

// ModelDeploymentSpec describes one AI model deployment to create on a new account.
type ModelDeploymentSpec struct {
	Name     string
	Format   string
	Version  string
	SKUName  string
	Capacity int32
}

// Parameters is the raw user input surface. Every field has a safe default; empty
// strings mean "not supplied" and are interchangeable with omitting the parameter.
type Parameters struct {
	EnvironmentName string
	Location        string

	// AiSetup selects the "new" or "existing" AI branch. A non-empty
	// ExistingAiEndpoint takes precedence over this flag, see Derive.
	AiSetup string

	// AiLocation is the region for AI resources, defaulting to Location.
	AiLocation string

	ExistingAiEndpoint       string
	ExistingAiSubscriptionId string
	ExistingAiResourceGroup  string

	ChatModel  ModelDeploymentSpec
	AudioModel ModelDeploymentSpec

	// Optional explicit names. When empty the name is generated from the resource token.
	AppServiceName     string
	AppServicePlanName string
	AiAccountName      string
	StorageAccountName string
	KeyVaultName       string
	LogAnalyticsName   string
	AppInsightsName    string
	SearchServiceName  string

	EnableMonitoring bool
	EnableSearch     bool
	EnableKeyVault   bool

	AssignUserRoles bool
	UserPrincipalId string

	// Seed enables validation mode, see DeploymentContext.Seed.
	Seed string

	Tags map[string]string
}

const (
	aiSetupNew      = "new"
	aiSetupExisting = "existing"
)

// NewDefaultParameters returns the parameter set with every default applied: a minimal
// chat plus audio model pair, monitoring on, search and the legacy key vault mode off.
func NewDefaultParameters() Parameters {
	return Parameters{
		AiSetup: aiSetupNew,
		ChatModel: ModelDeploymentSpec{
			Name:     "gpt-4o-mini",
			Format:   "OpenAI",
			Version:  "2024-07-18",
			SKUName:  "GlobalStandard",
			Capacity: 50,
		},
		AudioModel: ModelDeploymentSpec{
			Name:     "gpt-4o-mini-audio-preview",
			Format:   "OpenAI",
			Version:  "2024-12-17",
			SKUName:  "GlobalStandard",
			Capacity: 80,
		},
		EnableMonitoring: true,
	}
}

// ApplyFile overlays values from an ARM `.parameters.json` file. Unknown parameter
// names are rejected so typos surface before evaluation.
func (p *Parameters) ApplyFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading parameters file: %w", err)
	}

	var file azure.ArmParameterFile
	if err := json.Unmarshal(content, &file); err != nil {
		return fmt.Errorf("parsing parameters file %s: %w", path, err)
	}

	for name, param := range file.Parameters {
		if err := p.apply(name, param.Value); err != nil {
			return fmt.Errorf("parameters file %s: %w", path, err)
		}
	}

	return nil
}

// ApplyEnviron overlays values from the process environment using the same key names
// the export surface publishes, so a prior deployment's .env can be replayed.
func (p *Parameters) ApplyEnviron(lookup func(string) (string, bool)) {
	if v, ok := lookup(environment.EnvNameEnvVarName); ok && v != "" {
		p.EnvironmentName = v
	}
	if v, ok := lookup(environment.LocationEnvVarName); ok && v != "" {
		p.Location = v
	}
	if v, ok := lookup("AZURE_AI_SETUP"); ok && v != "" {
		p.AiSetup = v
	}
	if v, ok := lookup("AZURE_AI_LOCATION"); ok && v != "" {
		p.AiLocation = v
	}
	if v, ok := lookup("AZURE_EXISTING_AI_ENDPOINT"); ok && v != "" {
		p.ExistingAiEndpoint = v
	}
	if v, ok := lookup("AZURE_EXISTING_AI_SUBSCRIPTION_ID"); ok && v != "" {
		p.ExistingAiSubscriptionId = v
	}
	if v, ok := lookup("AZURE_EXISTING_AI_RESOURCE_GROUP"); ok && v != "" {
		p.ExistingAiResourceGroup = v
	}
	if v, ok := lookup(environment.PrincipalIdEnvVarName); ok && v != "" {
		p.UserPrincipalId = v
	}
}

// apply sets a single named parameter from an untyped value.
func (p *Parameters) apply(name string, value any) error {
	setString := func(dst *string) error {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("parameter %s: expected string, got %T", name, value)
		}
		*dst = s
		return nil
	}
	setBool := func(dst *bool) error {
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("parameter %s: expected bool, got %T", name, value)
		}
		*dst = b
		return nil
	}
	setCapacity := func(dst *int32) error {
		// encoding/json decodes numbers as float64
		f, ok := value.(float64)
		if !ok {
			return fmt.Errorf("parameter %s: expected number, got %T", name, value)
		}
		*dst = int32(f)
		return nil
	}

	switch name {
	case "environmentName":
		return setString(&p.EnvironmentName)
	case "location":
		return setString(&p.Location)
	case "aiSetup":
		return setString(&p.AiSetup)
	case "aiLocation":
		return setString(&p.AiLocation)
	case "existingAiEndpoint":
		return setString(&p.ExistingAiEndpoint)
	case "existingAiSubscriptionId":
		return setString(&p.ExistingAiSubscriptionId)
	case "existingAiResourceGroup":
		return setString(&p.ExistingAiResourceGroup)
	case "chatModelName":
		return setString(&p.ChatModel.Name)
	case "chatModelFormat":
		return setString(&p.ChatModel.Format)
	case "chatModelVersion":
		return setString(&p.ChatModel.Version)
	case "chatModelSkuName":
		return setString(&p.ChatModel.SKUName)
	case "chatModelCapacity":
		return setCapacity(&p.ChatModel.Capacity)
	case "audioModelName":
		return setString(&p.AudioModel.Name)
	case "audioModelFormat":
		return setString(&p.AudioModel.Format)
	case "audioModelVersion":
		return setString(&p.AudioModel.Version)
	case "audioModelSkuName":
		return setString(&p.AudioModel.SKUName)
	case "audioModelCapacity":
		return setCapacity(&p.AudioModel.Capacity)
	case "appServiceName":
		return setString(&p.AppServiceName)
	case "appServicePlanName":
		return setString(&p.AppServicePlanName)
	case "aiAccountName":
		return setString(&p.AiAccountName)
	case "storageAccountName":
		return setString(&p.StorageAccountName)
	case "keyVaultName":
		return setString(&p.KeyVaultName)
	case "logAnalyticsName":
		return setString(&p.LogAnalyticsName)
	case "appInsightsName":
		return setString(&p.AppInsightsName)
	case "searchServiceName":
		return setString(&p.SearchServiceName)
	case "enableMonitoring":
		return setBool(&p.EnableMonitoring)
	case "enableSearch":
		return setBool(&p.EnableSearch)
	case "enableKeyVault":
		return setBool(&p.EnableKeyVault)
	case "assignUserRoles":
		return setBool(&p.AssignUserRoles)
	case "userPrincipalId":
		return setString(&p.UserPrincipalId)
	case "seed":
		return setString(&p.Seed)
	case "tags":
		raw, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("parameter %s: expected object, got %T", name, value)
		}
		tags := make(map[string]string, len(raw))
		for k, v := range raw {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("parameter %s: tag %s: expected string, got %T", name, k, v)
			}
			tags[k] = s
		}
		p.Tags = tags
		return nil
	default:
		return fmt.Errorf("unknown parameter %s", name)
	}
}

// Validate rejects malformed input before any plan is built. All field errors are
// aggregated so the caller sees every offending field at once.
func (p Parameters) Validate(dctx DeploymentContext) error {
	var err error

	if strings.TrimSpace(p.EnvironmentName) == "" {
		err = multierr.Append(err, fmt.Errorf("environmentName: value is required"))
	} else if !environment.IsValidEnvironmentName(p.EnvironmentName) {
		err = multierr.Append(err, fmt.Errorf(
			"environmentName: %q is not a valid environment name", p.EnvironmentName))
	}

	if strings.TrimSpace(p.Location) == "" {
		err = multierr.Append(err, fmt.Errorf("location: value is required"))
	}

	switch p.AiSetup {
	case "", aiSetupNew, aiSetupExisting:
	default:
		err = multierr.Append(err, fmt.Errorf(
			"aiSetup: %q is not an allowed value (new, existing)", p.AiSetup))
	}

	if p.AiSetup == aiSetupExisting && strings.TrimSpace(p.ExistingAiEndpoint) == "" {
		err = multierr.Append(err, fmt.Errorf(
			"existingAiEndpoint: value is required when aiSetup is %q", aiSetupExisting))
	}

	if endpoint := strings.TrimSpace(p.ExistingAiEndpoint); endpoint != "" {
		if _, parseErr := ParseExistingEndpoint(endpoint, dctx,
			p.ExistingAiSubscriptionId, p.ExistingAiResourceGroup); parseErr != nil {
			err = multierr.Append(err, fmt.Errorf("existingAiEndpoint: %w", parseErr))
		}
	}

	if p.AiSetup != aiSetupExisting && strings.TrimSpace(p.ExistingAiEndpoint) == "" {
		if strings.TrimSpace(p.ChatModel.Name) == "" {
			err = multierr.Append(err, fmt.Errorf("chatModelName: value is required for a new AI setup"))
		}
		if p.ChatModel.Capacity <= 0 {
			err = multierr.Append(err, fmt.Errorf(
				"chatModelCapacity: %d is out of range, must be positive", p.ChatModel.Capacity))
		}
		if p.AudioModel.Name != "" && p.AudioModel.Capacity <= 0 {
			err = multierr.Append(err, fmt.Errorf(
				"audioModelCapacity: %d is out of range, must be positive", p.AudioModel.Capacity))
		}
	}

	return err
}
