// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/azure-samples/appservice-ai-planner/pkg/azure"
)

// SetupChoice selects which of the two mutually exclusive AI branches the topology
// builder executes. Exactly one branch provisions resources, never both, never neither.
type SetupChoice string

const (
	SetupNew      SetupChoice = "new"
	SetupExisting SetupChoice = "existing"
)

// ExistingAccount is a reference to an AI account the pipeline does not own,
// synthesized from a user supplied endpoint URL.
type ExistingAccount struct {
	AccountName    string
	SubscriptionId string
	ResourceGroup  string
	ResourceId     string
	Endpoint       string
}

// ParseExistingEndpoint parses a user supplied AI endpoint into an ExistingAccount.
// The endpoint is accepted with or without a trailing /models segment. The account
// name is the first DNS label of the host. Subscription and resource group fall back
// to the deployment's own when no override is supplied. A URL without a scheme
// separator is rejected rather than silently producing a broken reference.
func ParseExistingEndpoint(
	endpoint string,
	dctx DeploymentContext,
	subscriptionIdOverride string,
	resourceGroupOverride string,
) (*ExistingAccount, error) {
	endpoint = strings.TrimSpace(endpoint)
	if !strings.Contains(endpoint, "://") {
		return nil, fmt.Errorf("endpoint %q is missing a scheme, expected https://...", endpoint)
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("endpoint %q is not a valid URL: %w", endpoint, err)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("endpoint %q has no host", endpoint)
	}

	accountName := host
	if idx := strings.Index(host, "."); idx > 0 {
		accountName = host[:idx]
	}
	if accountName == "" {
		return nil, fmt.Errorf("endpoint %q has no account name in its host", endpoint)
	}

	subscriptionId := strings.TrimSpace(subscriptionIdOverride)
	if subscriptionId == "" {
		subscriptionId = dctx.SubscriptionId
	}
	resourceGroup := strings.TrimSpace(resourceGroupOverride)
	if resourceGroup == "" {
		resourceGroup = dctx.ResourceGroupName
	}

	// Normalize to the .../models form the inference client expects, accepting input
	// with or without the segment.
	base := strings.TrimSuffix(strings.TrimRight(endpoint, "/"), "/models")

	return &ExistingAccount{
		AccountName:    accountName,
		SubscriptionId: subscriptionId,
		ResourceGroup:  resourceGroup,
		ResourceId:     azure.CognitiveAccountRID(subscriptionId, resourceGroup, accountName),
		Endpoint:       base + "/models",
	}, nil
}

// ResourceNames holds the resolved name for every resource kind, whether or not that
// kind ends up in the plan.
type ResourceNames struct {
	AppService     string
	AppServicePlan string
	AiAccount      string
	StorageAccount string
	KeyVault       string
	LogAnalytics   string
	AppInsights    string
	SearchService  string
}

// Default name abbreviations, following the cloud adoption framework prefixes.
const (
	abbrAppService     = "app-"
	abbrAppServicePlan = "plan-"
	abbrAiAccount      = "cog-"
	abbrStorageAccount = "st"
	abbrKeyVault       = "kv-"
	abbrLogAnalytics   = "log-"
	abbrAppInsights    = "appi-"
	abbrSearchService  = "srch-"
)

// Derivation is the complete, internally consistent output of the derivation stage:
// every downstream decision is fully determined by these values and never re-derived.
type Derivation struct {
	Context DeploymentContext
	Token   string

	Setup SetupChoice
	// Existing is set only when Setup is SetupExisting.
	Existing *ExistingAccount

	Names      ResourceNames
	AiLocation string

	ChatModel  ModelDeploymentSpec
	AudioModel ModelDeploymentSpec

	EnableMonitoring bool
	EnableSearch     bool
	EnableKeyVault   bool

	AssignUserRoles bool
	UserPrincipalId string

	Tags map[string]string
}

// resolveName applies the single override rule: a non-empty user override wins,
// otherwise the name is abbreviation + token. Empty overrides are identical to
// "not supplied".
func resolveName(override string, abbreviation string, token string, trace *Trace, kind string) string {
	if name := strings.TrimSpace(override); name != "" {
		trace.recordName(kind, name, nameSourceOverride)
		return name
	}

	name := abbreviation + token
	trace.recordName(kind, name, nameSourceGenerated)
	return name
}

// Derive turns validated parameters into a Derivation. It is a pure function of its
// inputs: no clock, no randomness, no ambient lookups.
//
// Branch precedence is a single rule applied once: a supplied existing endpoint forces
// the existing branch regardless of a stale aiSetup flag; the new branch runs only when
// no endpoint was supplied.
func Derive(dctx DeploymentContext, p Parameters, trace *Trace) (*Derivation, error) {
	token := dctx.ResourceToken()
	trace.ResourceToken = token

	d := &Derivation{
		Context:          dctx,
		Token:            token,
		ChatModel:        p.ChatModel,
		AudioModel:       p.AudioModel,
		EnableMonitoring: p.EnableMonitoring,
		EnableSearch:     p.EnableSearch,
		EnableKeyVault:   p.EnableKeyVault,
		AssignUserRoles:  p.AssignUserRoles,
		UserPrincipalId:  strings.TrimSpace(p.UserPrincipalId),
		Tags:             p.Tags,
	}

	d.AiLocation = strings.TrimSpace(p.AiLocation)
	if d.AiLocation == "" {
		d.AiLocation = dctx.Location
	}

	if endpoint := strings.TrimSpace(p.ExistingAiEndpoint); endpoint != "" {
		existing, err := ParseExistingEndpoint(
			endpoint, dctx, p.ExistingAiSubscriptionId, p.ExistingAiResourceGroup)
		if err != nil {
			return nil, fmt.Errorf("existingAiEndpoint: %w", err)
		}
		d.Setup = SetupExisting
		d.Existing = existing
	} else if p.AiSetup == aiSetupExisting {
		return nil, fmt.Errorf("existingAiEndpoint: value is required when aiSetup is %q", aiSetupExisting)
	} else {
		d.Setup = SetupNew
	}
	trace.Setup = d.Setup

	d.Names = ResourceNames{
		AppService:     resolveName(p.AppServiceName, abbrAppService, token, trace, "appService"),
		AppServicePlan: resolveName(p.AppServicePlanName, abbrAppServicePlan, token, trace, "appServicePlan"),
		StorageAccount: resolveName(p.StorageAccountName, abbrStorageAccount, token, trace, "storageAccount"),
		KeyVault:       resolveName(p.KeyVaultName, abbrKeyVault, token, trace, "keyVault"),
		LogAnalytics:   resolveName(p.LogAnalyticsName, abbrLogAnalytics, token, trace, "logAnalytics"),
		AppInsights:    resolveName(p.AppInsightsName, abbrAppInsights, token, trace, "appInsights"),
		SearchService:  resolveName(p.SearchServiceName, abbrSearchService, token, trace, "searchService"),
	}

	if d.Setup == SetupExisting {
		d.Names.AiAccount = d.Existing.AccountName
		trace.recordName("aiAccount", d.Existing.AccountName, nameSourceExisting)
	} else {
		d.Names.AiAccount = resolveName(p.AiAccountName, abbrAiAccount, token, trace, "aiAccount")
	}

	return d, nil
}
