// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

import (
	"fmt"
	"strconv"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/operationalinsights/armoperationalinsights/v2"
	"github.com/azure-samples/appservice-ai-planner/pkg/azure"
	"github.com/azure-samples/appservice-ai-planner/pkg/environment"
)

// ResourceKind is the provider resource type of a planned resource.
type ResourceKind string

const (
	KindStorageAccount  ResourceKind = "Microsoft.Storage/storageAccounts"
	KindLogAnalytics    ResourceKind = "Microsoft.OperationalInsights/workspaces"
	KindAppInsights     ResourceKind = "Microsoft.Insights/components"
	KindSearchService   ResourceKind = "Microsoft.Search/searchServices"
	KindKeyVault        ResourceKind = "Microsoft.KeyVault/vaults"
	KindKeyVaultSecret  ResourceKind = "Microsoft.KeyVault/vaults/secrets"
	KindAiAccount       ResourceKind = "Microsoft.CognitiveServices/accounts"
	KindModelDeployment ResourceKind = "Microsoft.CognitiveServices/accounts/deployments"
	KindAppServicePlan  ResourceKind = "Microsoft.Web/serverfarms"
	KindAppService      ResourceKind = "Microsoft.Web/sites"
)

// Logical names wiring resources to their dependents within one plan.
const (
	logicalStorage         = "storage"
	logicalLogAnalytics    = "logAnalytics"
	logicalAppInsights     = "appInsights"
	logicalSearch          = "search"
	logicalKeyVault        = "keyVault"
	logicalAi              = "ai"
	logicalChatDeployment  = "chatDeployment"
	logicalAudioDeployment = "audioDeployment"
	logicalAppServicePlan  = "appServicePlan"
	logicalWeb             = "web"
	logicalInferenceSecret = "inferenceSecret"
)

// Resource is one planned resource: identity plus the typed provider body the
// deployment engine submits. DependsOn carries logical names and expresses the only
// ordering the engine must honor; independent resources may be created concurrently.
type Resource struct {
	LogicalName string
	Kind        ResourceKind
	Name        string
	Id          string
	Location    string
	DependsOn   []string
	Body        any
}

// Plan is the dependency ordered instantiation plan handed to the deployment engine,
// plus the resolved values the export surface publishes. A subsystem whose flag is
// false contributes zero resources and resolves to empty strings everywhere it is
// referenced.
type Plan struct {
	Resources []*Resource
	Bindings  []*IdentityBinding
	Warnings  []string

	InferenceEndpoint   string
	ChatDeploymentName  string
	AudioDeploymentName string
	AudioModelWarning   string

	// AiBrokenReference is set when the existing branch was selected but no valid
	// account reference could be synthesized. Role bindings against the AI scope are
	// skipped instead of targeting an empty scope.
	AiBrokenReference bool
}

// Resource returns the planned resource with the given logical name, or nil.
func (p *Plan) Resource(logicalName string) *Resource {
	for _, res := range p.Resources {
		if res.LogicalName == logicalName {
			return res
		}
	}
	return nil
}

// HasKind reports whether any planned resource has the given kind.
func (p *Plan) HasKind(kind ResourceKind) bool {
	for _, res := range p.Resources {
		if res.Kind == kind {
			return true
		}
	}
	return false
}

// Regions able to host the chat and the audio model simultaneously. Outside this list
// the audio deployment is dropped from the plan with a warning, chat is kept.
var audioCapableLocations = map[string]bool{
	"eastus":        true,
	"eastus2":       true,
	"swedencentral": true,
}

const (
	aiServiceDomain  = "services.ai.azure.com"
	vaultDomain      = "vault.azure.net"
	searchDomain     = "search.windows.net"
	websitesDomain   = "azurewebsites.net"
	inferenceSecret  = "azure-inference-credential"
	webLinuxRuntime  = "PYTHON|3.11"
	webPlanSKU       = "B1"
	logRetentionDays = int32(30)
)

// NewAccountEndpoint returns the documented endpoint form of an AI account created by
// this pipeline.
func NewAccountEndpoint(accountName string) string {
	return fmt.Sprintf("https://%s.%s/models", accountName, aiServiceDomain)
}

// VaultEndpoint returns the vault URI for a key vault name.
func VaultEndpoint(vaultName string) string {
	return fmt.Sprintf("https://%s.%s/", vaultName, vaultDomain)
}

// vaultSecretReference renders the app-settings pointer string for a vault secret.
// Only the pointer ever leaves the plan, never a literal secret value.
func vaultSecretReference(vaultName string, secretName string) string {
	return fmt.Sprintf("@Microsoft.KeyVault(SecretUri=https://%s.%s/secrets/%s)",
		vaultName, vaultDomain, secretName)
}

// BuildPlan decides, per optional subsystem, whether to instantiate resources, and
// stitches cross subsystem references in dependency order:
// storage -> monitoring -> search -> key vault -> AI -> compute -> bindings -> secrets.
func BuildPlan(d *Derivation, trace *Trace) (*Plan, error) {
	dctx := d.Context
	plan := &Plan{}

	tags := map[string]*string{"azd-env-name": to.Ptr(dctx.EnvironmentName)}
	for k, v := range d.Tags {
		tags[k] = to.Ptr(v)
	}

	storage := &Resource{
		LogicalName: logicalStorage,
		Kind:        KindStorageAccount,
		Name:        d.Names.StorageAccount,
		Id:          azure.StorageAccountRID(dctx.SubscriptionId, dctx.ResourceGroupName, d.Names.StorageAccount),
		Location:    dctx.Location,
		Body: map[string]any{
			"kind": "StorageV2",
			"sku":  map[string]any{"name": "Standard_LRS"},
			"properties": map[string]any{
				"allowBlobPublicAccess":    false,
				"allowSharedKeyAccess":     false,
				"minimumTlsVersion":        "TLS1_2",
				"supportsHttpsTrafficOnly": true,
			},
		},
	}
	plan.Resources = append(plan.Resources, storage)

	appInsightsId := ""
	if d.EnableMonitoring {
		workspace := &Resource{
			LogicalName: logicalLogAnalytics,
			Kind:        KindLogAnalytics,
			Name:        d.Names.LogAnalytics,
			Id: azure.LogAnalyticsWorkspaceRID(
				dctx.SubscriptionId, dctx.ResourceGroupName, d.Names.LogAnalytics),
			Location: dctx.Location,
			Body: armoperationalinsights.Workspace{
				Location: to.Ptr(dctx.Location),
				Tags:     tags,
				Properties: &armoperationalinsights.WorkspaceProperties{
					RetentionInDays: to.Ptr(logRetentionDays),
					SKU: &armoperationalinsights.WorkspaceSKU{
						Name: to.Ptr(armoperationalinsights.WorkspaceSKUNameEnumPerGB2018),
					},
				},
			},
		}
		plan.Resources = append(plan.Resources, workspace)

		appInsightsId = azure.AppInsightsComponentRID(
			dctx.SubscriptionId, dctx.ResourceGroupName, d.Names.AppInsights)
		plan.Resources = append(plan.Resources, &Resource{
			LogicalName: logicalAppInsights,
			Kind:        KindAppInsights,
			Name:        d.Names.AppInsights,
			Id:          appInsightsId,
			Location:    dctx.Location,
			DependsOn:   []string{logicalLogAnalytics},
			Body: map[string]any{
				"kind": "web",
				"properties": map[string]any{
					"Application_Type":    "web",
					"WorkspaceResourceId": workspace.Id,
				},
			},
		})
	}

	searchEndpoint := ""
	if d.EnableSearch {
		searchEndpoint = fmt.Sprintf("https://%s.%s", d.Names.SearchService, searchDomain)
		plan.Resources = append(plan.Resources, &Resource{
			LogicalName: logicalSearch,
			Kind:        KindSearchService,
			Name:        d.Names.SearchService,
			Id: azure.SearchServiceRID(
				dctx.SubscriptionId, dctx.ResourceGroupName, d.Names.SearchService),
			Location: dctx.Location,
			Body: map[string]any{
				"sku": map[string]any{"name": "basic"},
				"properties": map[string]any{
					"disableLocalAuth": true,
					"replicaCount":     1,
					"partitionCount":   1,
				},
			},
		})
	}

	if d.EnableKeyVault {
		plan.Resources = append(plan.Resources, &Resource{
			LogicalName: logicalKeyVault,
			Kind:        KindKeyVault,
			Name:        d.Names.KeyVault,
			Id:          azure.KeyVaultRID(dctx.SubscriptionId, dctx.ResourceGroupName, d.Names.KeyVault),
			Location:    dctx.Location,
			Body: armkeyvault.Vault{
				Location: to.Ptr(dctx.Location),
				Tags:     tags,
				Properties: &armkeyvault.VaultProperties{
					TenantID:                to.Ptr(dctx.TenantId),
					EnableRbacAuthorization: to.Ptr(true),
					SKU: &armkeyvault.SKU{
						Family: to.Ptr(armkeyvault.SKUFamilyA),
						Name:   to.Ptr(armkeyvault.SKUNameStandard),
					},
				},
			},
		})
	}

	// AI branch. Exactly one of the two branches contributes, never both.
	aiScope := BindingScope{}
	switch d.Setup {
	case SetupNew:
		aiId := azure.CognitiveAccountRID(dctx.SubscriptionId, dctx.ResourceGroupName, d.Names.AiAccount)
		aiScope = scopeFor(dctx, dctx.SubscriptionId, dctx.ResourceGroupName, aiId)
		plan.InferenceEndpoint = NewAccountEndpoint(d.Names.AiAccount)

		aiDepends := []string{logicalStorage}
		if d.EnableMonitoring {
			aiDepends = append(aiDepends, logicalAppInsights)
		}
		plan.Resources = append(plan.Resources, &Resource{
			LogicalName: logicalAi,
			Kind:        KindAiAccount,
			Name:        d.Names.AiAccount,
			Id:          aiId,
			Location:    d.AiLocation,
			DependsOn:   aiDepends,
			Body: armcognitiveservices.Account{
				Kind:     to.Ptr("AIServices"),
				Location: to.Ptr(d.AiLocation),
				Tags:     tags,
				SKU: &armcognitiveservices.SKU{
					Name: to.Ptr("S0"),
				},
				Identity: &armcognitiveservices.Identity{
					Type: to.Ptr(armcognitiveservices.ResourceIdentityTypeSystemAssigned),
				},
				Properties: &armcognitiveservices.AccountProperties{
					CustomSubDomainName: to.Ptr(d.Names.AiAccount),
					DisableLocalAuth:    to.Ptr(!d.EnableKeyVault),
					PublicNetworkAccess: to.Ptr(armcognitiveservices.PublicNetworkAccessEnabled),
				},
			},
		})

		plan.ChatDeploymentName = d.ChatModel.Name
		plan.Resources = append(plan.Resources, modelDeployment(dctx, d, logicalChatDeployment, d.ChatModel))

		if d.AudioModel.Name != "" {
			if audioCapableLocations[d.AiLocation] {
				plan.AudioDeploymentName = d.AudioModel.Name
				audio := modelDeployment(dctx, d, logicalAudioDeployment, d.AudioModel)
				// Model deployments on one account roll out serially.
				audio.DependsOn = append(audio.DependsOn, logicalChatDeployment)
				plan.Resources = append(plan.Resources, audio)
			} else {
				plan.AudioModelWarning = fmt.Sprintf(
					"audio model %s is not available in %s; deploying chat model only",
					d.AudioModel.Name, d.AiLocation)
				plan.Warnings = append(plan.Warnings, plan.AudioModelWarning)
				trace.warn(plan.AudioModelWarning)
			}
		}

	case SetupExisting:
		if d.Existing == nil || d.Existing.ResourceId == "" {
			plan.AiBrokenReference = true
			trace.warn("existing AI reference is invalid; AI role bindings will be skipped")
		} else {
			aiScope = scopeFor(dctx, d.Existing.SubscriptionId, d.Existing.ResourceGroup, d.Existing.ResourceId)
			plan.InferenceEndpoint = d.Existing.Endpoint
			plan.ChatDeploymentName = d.ChatModel.Name
		}
	}

	planId := azure.ServerFarmRID(dctx.SubscriptionId, dctx.ResourceGroupName, d.Names.AppServicePlan)
	plan.Resources = append(plan.Resources, &Resource{
		LogicalName: logicalAppServicePlan,
		Kind:        KindAppServicePlan,
		Name:        d.Names.AppServicePlan,
		Id:          planId,
		Location:    dctx.Location,
		Body: armappservice.Plan{
			Kind:     to.Ptr("linux"),
			Location: to.Ptr(dctx.Location),
			Tags:     tags,
			SKU: &armappservice.SKUDescription{
				Name: to.Ptr(webPlanSKU),
			},
			Properties: &armappservice.PlanProperties{
				Reserved: to.Ptr(true),
			},
		},
	})

	webDepends := []string{logicalAppServicePlan, logicalStorage}
	if d.Setup == SetupNew {
		webDepends = append(webDepends, logicalAi)
	}
	if d.EnableKeyVault {
		webDepends = append(webDepends, logicalKeyVault)
	}
	plan.Resources = append(plan.Resources, &Resource{
		LogicalName: logicalWeb,
		Kind:        KindAppService,
		Name:        d.Names.AppService,
		Id:          azure.WebsiteRID(dctx.SubscriptionId, dctx.ResourceGroupName, d.Names.AppService),
		Location:    dctx.Location,
		DependsOn:   webDepends,
		Body: armappservice.Site{
			Kind:     to.Ptr("app,linux"),
			Location: to.Ptr(dctx.Location),
			Tags:     tags,
			Identity: &armappservice.ManagedServiceIdentity{
				Type: to.Ptr(armappservice.ManagedServiceIdentityTypeSystemAssigned),
			},
			Properties: &armappservice.SiteProperties{
				ServerFarmID: to.Ptr(planId),
				HTTPSOnly:    to.Ptr(true),
				SiteConfig: &armappservice.SiteConfig{
					LinuxFxVersion: to.Ptr(webLinuxRuntime),
					AlwaysOn:       to.Ptr(true),
					AppSettings:    webAppSettings(d, plan, searchEndpoint, appInsightsId),
				},
			},
		},
	})

	bindings := newBindingSet(trace)
	webIdentity := PrincipalRef{Kind: PrincipalSiteIdentity, Value: d.Names.AppService}

	storageScope := scopeFor(dctx, dctx.SubscriptionId, dctx.ResourceGroupName, storage.Id)
	bindings.add(webIdentity, armauthorization.PrincipalTypeServicePrincipal,
		azure.RoleStorageBlobDataContributor, storageScope)
	bindings.add(webIdentity, armauthorization.PrincipalTypeServicePrincipal,
		azure.RoleCognitiveServicesUser, aiScope)
	bindings.add(webIdentity, armauthorization.PrincipalTypeServicePrincipal,
		azure.RoleCognitiveServicesOpenAIUser, aiScope)

	if d.EnableSearch {
		searchScope := scopeFor(dctx, dctx.SubscriptionId, dctx.ResourceGroupName,
			plan.Resource(logicalSearch).Id)
		bindings.add(webIdentity, armauthorization.PrincipalTypeServicePrincipal,
			azure.RoleSearchIndexDataContributor, searchScope)
	}

	if d.EnableKeyVault {
		vaultScope := scopeFor(dctx, dctx.SubscriptionId, dctx.ResourceGroupName,
			plan.Resource(logicalKeyVault).Id)
		bindings.add(webIdentity, armauthorization.PrincipalTypeServicePrincipal,
			azure.RoleKeyVaultSecretsUser, vaultScope)

		if d.AssignUserRoles {
			bindings.add(PrincipalRef{Kind: PrincipalLiteral, Value: d.UserPrincipalId},
				armauthorization.PrincipalTypeUser, azure.RoleKeyVaultSecretsOfficer, vaultScope)
		}
	}

	if d.AssignUserRoles {
		user := PrincipalRef{Kind: PrincipalLiteral, Value: d.UserPrincipalId}
		bindings.add(user, armauthorization.PrincipalTypeUser, azure.RoleCognitiveServicesUser, aiScope)
		bindings.add(user, armauthorization.PrincipalTypeUser, azure.RoleCognitiveServicesOpenAIUser, aiScope)
	}

	plan.Bindings = bindings.bindings

	// Legacy secret population: only when both the vault and a usable AI reference
	// exist. The plan stores the secret's identity, the engine fills in its value.
	if d.EnableKeyVault && !plan.AiBrokenReference {
		secretDepends := []string{logicalKeyVault, logicalWeb}
		if d.Setup == SetupNew {
			secretDepends = append(secretDepends, logicalAi)
		}
		plan.Resources = append(plan.Resources, &Resource{
			LogicalName: logicalInferenceSecret,
			Kind:        KindKeyVaultSecret,
			Name:        inferenceSecret,
			Id: azure.KeyVaultRID(dctx.SubscriptionId, dctx.ResourceGroupName, d.Names.KeyVault) +
				"/secrets/" + inferenceSecret,
			Location:  dctx.Location,
			DependsOn: secretDepends,
			Body: map[string]any{
				"properties": map[string]any{
					"contentType": "text/plain",
				},
			},
		})
	}

	return plan, nil
}

func modelDeployment(dctx DeploymentContext, d *Derivation, logicalName string, spec ModelDeploymentSpec) *Resource {
	return &Resource{
		LogicalName: logicalName,
		Kind:        KindModelDeployment,
		Name:        spec.Name,
		Id: azure.ModelDeploymentRID(
			dctx.SubscriptionId, dctx.ResourceGroupName, d.Names.AiAccount, spec.Name),
		Location:  d.AiLocation,
		DependsOn: []string{logicalAi},
		Body: armcognitiveservices.Deployment{
			SKU: &armcognitiveservices.SKU{
				Name:     to.Ptr(spec.SKUName),
				Capacity: to.Ptr(spec.Capacity),
			},
			Properties: &armcognitiveservices.DeploymentProperties{
				Model: &armcognitiveservices.DeploymentModel{
					Format:  to.Ptr(spec.Format),
					Name:    to.Ptr(spec.Name),
					Version: to.Ptr(spec.Version),
				},
			},
		},
	}
}

// webAppSettings renders the app service settings block. It mirrors the export
// surface keys the application reads, minus the deployment-cli only values.
func webAppSettings(d *Derivation, plan *Plan, searchEndpoint string, appInsightsId string) []*armappservice.NameValuePair {
	setting := func(name, value string) *armappservice.NameValuePair {
		return &armappservice.NameValuePair{Name: to.Ptr(name), Value: to.Ptr(value)}
	}

	clientId := ""
	credential := ""
	vaultName := ""
	if d.EnableKeyVault {
		credential = vaultSecretReference(d.Names.KeyVault, inferenceSecret)
		vaultName = d.Names.KeyVault
	} else {
		clientId = environment.ManagedIdentityClientId
	}

	return []*armappservice.NameValuePair{
		setting(environment.ClientIdEnvVarName, clientId),
		setting(environment.InferenceEndpointEnvVarName, plan.InferenceEndpoint),
		setting(environment.InferenceCredentialEnvVarName, credential),
		setting(environment.ChatDeploymentEnvVarName, plan.ChatDeploymentName),
		setting(environment.AudioDeploymentEnvVarName, plan.AudioDeploymentName),
		setting(environment.AudioModelWarningEnvVarName, plan.AudioModelWarning),
		setting(environment.StorageAccountEnvVarName, d.Names.StorageAccount),
		setting(environment.SearchEndpointEnvVarName, searchEndpoint),
		setting(environment.EnableKeyVaultEnvVarName, strconv.FormatBool(d.EnableKeyVault)),
		setting(environment.KeyVaultNameEnvVarName, vaultName),
		setting(environment.EnableTracingEnvVarName, strconv.FormatBool(d.EnableMonitoring)),
		setting(environment.AppInsightsConnectionRefEnvVarName, appInsightsId),
		setting("SCM_DO_BUILD_DURING_DEPLOYMENT", "true"),
	}
}
