// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure-samples/appservice-ai-planner/pkg/environment"
	"github.com/azure-samples/appservice-ai-planner/pkg/output"
	"github.com/azure-samples/appservice-ai-planner/pkg/provision"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// planFlags binds every deployment parameter to the command line. Flag values
// overlay the parameters file and the process environment, but only when the flag
// was actually set, so file values survive unset flags.
type planFlags struct {
	parametersFile string

	subscriptionId    string
	tenantId          string
	resourceGroupName string

	environmentName string
	location        string

	aiSetup            string
	aiLocation         string
	existingAiEndpoint string
	existingAiSubId    string
	existingAiGroup    string
	enableMonitoring   bool
	enableSearch       bool
	enableKeyVault     bool
	assignUserRoles    bool
	userPrincipalId    string
	seed               string
	tags               map[string]string

	chatModelName      string
	chatModelVersion   string
	chatModelCapacity  int32
	audioModelName     string
	audioModelVersion  string
	audioModelCapacity int32

	appServiceName     string
	appServicePlanName string
	aiAccountName      string
	storageAccountName string
	keyVaultName       string
	logAnalyticsName   string
	appInsightsName    string
	searchServiceName  string
}

func (f *planFlags) Bind(flags *pflag.FlagSet) {
	flags.StringVarP(&f.parametersFile, "parameters", "p", "",
		"Path to an ARM .parameters.json file to load values from.")

	flags.StringVar(&f.subscriptionId, "subscription", "",
		"Target subscription id (defaults to AZURE_SUBSCRIPTION_ID).")
	flags.StringVar(&f.tenantId, "tenant", "",
		"Target tenant id (defaults to AZURE_TENANT_ID).")
	flags.StringVar(&f.resourceGroupName, "resource-group", "",
		"Target resource group name (defaults to rg-<environment>).")

	flags.StringVarP(&f.environmentName, "environment", "e", "", "Environment name.")
	flags.StringVarP(&f.location, "location", "l", "", "Azure location.")

	flags.StringVar(&f.aiSetup, "ai-setup", "", "AI setup choice: new or existing.")
	flags.StringVar(&f.aiLocation, "ai-location", "",
		"Location for AI resources (defaults to the deployment location).")
	flags.StringVar(&f.existingAiEndpoint, "existing-ai-endpoint", "",
		"Endpoint of an existing AI account to reference instead of creating one.")
	flags.StringVar(&f.existingAiSubId, "existing-ai-subscription", "",
		"Subscription id of the existing AI account.")
	flags.StringVar(&f.existingAiGroup, "existing-ai-resource-group", "",
		"Resource group of the existing AI account.")
	flags.BoolVar(&f.enableMonitoring, "enable-monitoring", true,
		"Provision log analytics and application insights.")
	flags.BoolVar(&f.enableSearch, "enable-search", false, "Provision a search service.")
	flags.BoolVar(&f.enableKeyVault, "enable-key-vault", false,
		"Legacy mode: provision a key vault and reference the credential from it.")
	flags.BoolVar(&f.assignUserRoles, "assign-user-roles", false,
		"Also assign roles to the deploying user.")
	flags.StringVar(&f.userPrincipalId, "user-principal-id", "",
		"Object id of the deploying user (defaults to AZURE_PRINCIPAL_ID).")
	flags.StringVar(&f.seed, "seed", "",
		"Validation mode seed for reproducible resource tokens.")
	flags.StringToStringVar(&f.tags, "tags", nil,
		"Additional tags applied to every resource, as key=value pairs.")

	flags.StringVar(&f.chatModelName, "chat-model", "", "Chat model name.")
	flags.StringVar(&f.chatModelVersion, "chat-model-version", "", "Chat model version.")
	flags.Int32Var(&f.chatModelCapacity, "chat-model-capacity", 0, "Chat model capacity.")
	flags.StringVar(&f.audioModelName, "audio-model", "",
		"Audio model name (pass an empty value to skip the audio deployment).")
	flags.StringVar(&f.audioModelVersion, "audio-model-version", "", "Audio model version.")
	flags.Int32Var(&f.audioModelCapacity, "audio-model-capacity", 0, "Audio model capacity.")

	flags.StringVar(&f.appServiceName, "app-service-name", "", "Override the app service name.")
	flags.StringVar(&f.appServicePlanName, "app-service-plan-name", "",
		"Override the app service plan name.")
	flags.StringVar(&f.aiAccountName, "ai-account-name", "", "Override the AI account name.")
	flags.StringVar(&f.storageAccountName, "storage-account-name", "",
		"Override the storage account name.")
	flags.StringVar(&f.keyVaultName, "key-vault-name", "", "Override the key vault name.")
	flags.StringVar(&f.logAnalyticsName, "log-analytics-name", "",
		"Override the log analytics workspace name.")
	flags.StringVar(&f.appInsightsName, "app-insights-name", "",
		"Override the application insights name.")
	flags.StringVar(&f.searchServiceName, "search-service-name", "",
		"Override the search service name.")
}

// resolveInputs assembles the deployment context and parameters from defaults, the
// parameters file, the process environment and explicitly set flags, in that order.
func (f *planFlags) resolveInputs(flags *pflag.FlagSet) (provision.DeploymentContext, provision.Parameters, error) {
	params := provision.NewDefaultParameters()

	if f.parametersFile != "" {
		if err := params.ApplyFile(f.parametersFile); err != nil {
			return provision.DeploymentContext{}, params, err
		}
	}

	params.ApplyEnviron(os.LookupEnv)

	setIfChanged := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	setIfChanged("environment", func() { params.EnvironmentName = f.environmentName })
	setIfChanged("location", func() { params.Location = f.location })
	setIfChanged("ai-setup", func() { params.AiSetup = f.aiSetup })
	setIfChanged("ai-location", func() { params.AiLocation = f.aiLocation })
	setIfChanged("existing-ai-endpoint", func() { params.ExistingAiEndpoint = f.existingAiEndpoint })
	setIfChanged("existing-ai-subscription", func() { params.ExistingAiSubscriptionId = f.existingAiSubId })
	setIfChanged("existing-ai-resource-group", func() { params.ExistingAiResourceGroup = f.existingAiGroup })
	setIfChanged("enable-monitoring", func() { params.EnableMonitoring = f.enableMonitoring })
	setIfChanged("enable-search", func() { params.EnableSearch = f.enableSearch })
	setIfChanged("enable-key-vault", func() { params.EnableKeyVault = f.enableKeyVault })
	setIfChanged("assign-user-roles", func() { params.AssignUserRoles = f.assignUserRoles })
	setIfChanged("user-principal-id", func() { params.UserPrincipalId = f.userPrincipalId })
	setIfChanged("seed", func() { params.Seed = f.seed })
	setIfChanged("tags", func() { params.Tags = f.tags })

	setIfChanged("chat-model", func() { params.ChatModel.Name = f.chatModelName })
	setIfChanged("chat-model-version", func() { params.ChatModel.Version = f.chatModelVersion })
	setIfChanged("chat-model-capacity", func() { params.ChatModel.Capacity = f.chatModelCapacity })
	setIfChanged("audio-model", func() { params.AudioModel.Name = f.audioModelName })
	setIfChanged("audio-model-version", func() { params.AudioModel.Version = f.audioModelVersion })
	setIfChanged("audio-model-capacity", func() { params.AudioModel.Capacity = f.audioModelCapacity })

	setIfChanged("app-service-name", func() { params.AppServiceName = f.appServiceName })
	setIfChanged("app-service-plan-name", func() { params.AppServicePlanName = f.appServicePlanName })
	setIfChanged("ai-account-name", func() { params.AiAccountName = f.aiAccountName })
	setIfChanged("storage-account-name", func() { params.StorageAccountName = f.storageAccountName })
	setIfChanged("key-vault-name", func() { params.KeyVaultName = f.keyVaultName })
	setIfChanged("log-analytics-name", func() { params.LogAnalyticsName = f.logAnalyticsName })
	setIfChanged("app-insights-name", func() { params.AppInsightsName = f.appInsightsName })
	setIfChanged("search-service-name", func() { params.SearchServiceName = f.searchServiceName })

	subscriptionId := f.subscriptionId
	if subscriptionId == "" {
		subscriptionId = os.Getenv(environment.SubscriptionIdEnvVarName)
	}
	if subscriptionId == "" {
		return provision.DeploymentContext{}, params, fmt.Errorf(
			"no subscription id: pass --subscription or set %s", environment.SubscriptionIdEnvVarName)
	}

	tenantId := f.tenantId
	if tenantId == "" {
		tenantId = os.Getenv(environment.TenantIdEnvVarName)
	}

	resourceGroupName := f.resourceGroupName
	if resourceGroupName == "" {
		resourceGroupName = os.Getenv(environment.ResourceGroupEnvVarName)
	}
	if resourceGroupName == "" && params.EnvironmentName != "" {
		resourceGroupName = "rg-" + params.EnvironmentName
	}

	dctx := provision.DeploymentContext{
		SubscriptionId:    subscriptionId,
		TenantId:          tenantId,
		ResourceGroupName: resourceGroupName,
		EnvironmentName:   params.EnvironmentName,
		Location:          params.Location,
		Seed:              params.Seed,
	}

	return dctx, params, nil
}

func newPlanCmd() *cobra.Command {
	flags := &planFlags{}
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Evaluate the deployment and print the resource plan.",
		Long: heredoc.Doc(`
			Evaluate the deployment and print the resource plan.

			The plan lists every resource that would be created, in dependency order,
			together with the role assignments wiring the app service identity to the
			resources it needs. Re-running with identical inputs always produces an
			identical plan.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			dctx, params, err := flags.resolveInputs(cmd.Flags())
			if err != nil {
				return err
			}

			result, err := provision.Evaluate(dctx, params)
			if err != nil {
				return err
			}

			for _, warning := range result.Plan.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("WARNING: %s", warning))
			}

			formatter, err := output.NewFormatter(outputFormat)
			if err != nil {
				return err
			}

			return formatter.Format(result, cmd.OutOrStdout(), nil)
		},
	}

	flags.Bind(cmd.Flags())
	cmd.Flags().StringVarP(&outputFormat, "output", "o", string(output.JsonFormat),
		"Output format: json or none.")

	return cmd
}
