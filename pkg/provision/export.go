// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

import (
	"fmt"
	"strconv"

	"github.com/azure-samples/appservice-ai-planner/pkg/environment"
)

// BuildExports flattens the resolved plan into the stable external contract. Every key
// is always present: disabled subsystems export an empty string or "false", never a
// missing key, because consumers key on presence. In managed identity mode the map
// contains no secret material; in the legacy key vault mode the credential slot holds
// a vault reference string, never a literal secret.
func BuildExports(d *Derivation, plan *Plan) map[string]string {
	dctx := d.Context

	clientId := ""
	credential := ""
	vaultName := ""
	vaultEndpoint := ""
	if d.EnableKeyVault {
		credential = vaultSecretReference(d.Names.KeyVault, inferenceSecret)
		vaultName = d.Names.KeyVault
		vaultEndpoint = VaultEndpoint(d.Names.KeyVault)
	} else {
		clientId = environment.ManagedIdentityClientId
	}

	searchEndpoint := ""
	if d.EnableSearch {
		searchEndpoint = fmt.Sprintf("https://%s.%s", d.Names.SearchService, searchDomain)
	}

	appInsightsRef := ""
	if res := plan.Resource(logicalAppInsights); res != nil {
		appInsightsRef = res.Id
	}

	return map[string]string{
		environment.EnvNameEnvVarName:        dctx.EnvironmentName,
		environment.LocationEnvVarName:       dctx.Location,
		environment.TenantIdEnvVarName:       dctx.TenantId,
		environment.SubscriptionIdEnvVarName: dctx.SubscriptionId,
		environment.ResourceGroupEnvVarName:  dctx.ResourceGroupName,
		environment.PrincipalIdEnvVarName:    d.UserPrincipalId,

		environment.ClientIdEnvVarName:            clientId,
		environment.InferenceEndpointEnvVarName:   plan.InferenceEndpoint,
		environment.InferenceCredentialEnvVarName: credential,
		environment.ChatDeploymentEnvVarName:      plan.ChatDeploymentName,
		environment.AudioDeploymentEnvVarName:     plan.AudioDeploymentName,
		environment.AudioModelWarningEnvVarName:   plan.AudioModelWarning,

		environment.ServiceWebNameEnvVarName: d.Names.AppService,
		environment.ServiceWebUriEnvVarName:  fmt.Sprintf("https://%s.%s", d.Names.AppService, websitesDomain),

		environment.EnableKeyVaultEnvVarName:   strconv.FormatBool(d.EnableKeyVault),
		environment.KeyVaultNameEnvVarName:     vaultName,
		environment.KeyVaultEndpointEnvVarName: vaultEndpoint,

		environment.SearchEndpointEnvVarName:           searchEndpoint,
		environment.StorageAccountEnvVarName:           d.Names.StorageAccount,
		environment.AppInsightsConnectionRefEnvVarName: appInsightsRef,
		environment.EnableTracingEnvVarName:            strconv.FormatBool(d.EnableMonitoring),
	}
}
