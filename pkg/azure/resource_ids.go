// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azure

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/azure-samples/appservice-ai-planner/pkg/convert"
)

// SubscriptionFromRID returns the subscription id component of a resource id, or an
// empty string if the resource id does not contain a subscription.
func SubscriptionFromRID(rid string) string {
	parts := strings.Split(rid, "/")
	for idx, part := range parts {
		if part == "subscriptions" && idx+1 < len(parts) {
			return parts[idx+1]
		}
	}

	return ""
}

// Creates Azure subscription resource ID
func SubscriptionRID(subscriptionId string) string {
	return fmt.Sprintf("/subscriptions/%s", subscriptionId)
}

// Creates resource ID for an Azure resource group
func ResourceGroupRID(subscriptionId, resourceGroupName string) string {
	return fmt.Sprintf("%s/resourceGroups/%s", SubscriptionRID(subscriptionId), resourceGroupName)
}

// CognitiveAccountRID creates the resource ID for a Cognitive Services account. The
// format is part of the external contract and must not change.
func CognitiveAccountRID(subscriptionId, resourceGroupName, accountName string) string {
	return fmt.Sprintf(
		"%s/providers/Microsoft.CognitiveServices/accounts/%s",
		ResourceGroupRID(subscriptionId, resourceGroupName),
		accountName,
	)
}

// ModelDeploymentRID creates the resource ID for a model deployment under a Cognitive
// Services account.
func ModelDeploymentRID(subscriptionId, resourceGroupName, accountName, deploymentName string) string {
	return fmt.Sprintf(
		"%s/deployments/%s",
		CognitiveAccountRID(subscriptionId, resourceGroupName, accountName),
		deploymentName,
	)
}

func WebsiteRID(subscriptionId, resourceGroupName, websiteName string) string {
	return fmt.Sprintf(
		"%s/providers/Microsoft.Web/sites/%s",
		ResourceGroupRID(subscriptionId, resourceGroupName),
		websiteName,
	)
}

func ServerFarmRID(subscriptionId, resourceGroupName, planName string) string {
	return fmt.Sprintf(
		"%s/providers/Microsoft.Web/serverfarms/%s",
		ResourceGroupRID(subscriptionId, resourceGroupName),
		planName,
	)
}

func StorageAccountRID(subscriptionId, resourceGroupName, accountName string) string {
	return fmt.Sprintf(
		"%s/providers/Microsoft.Storage/storageAccounts/%s",
		ResourceGroupRID(subscriptionId, resourceGroupName),
		accountName,
	)
}

func KeyVaultRID(subscriptionId, resourceGroupName, vaultName string) string {
	return fmt.Sprintf(
		"%s/providers/Microsoft.KeyVault/vaults/%s",
		ResourceGroupRID(subscriptionId, resourceGroupName),
		vaultName,
	)
}

func LogAnalyticsWorkspaceRID(subscriptionId, resourceGroupName, workspaceName string) string {
	return fmt.Sprintf(
		"%s/providers/Microsoft.OperationalInsights/workspaces/%s",
		ResourceGroupRID(subscriptionId, resourceGroupName),
		workspaceName,
	)
}

func AppInsightsComponentRID(subscriptionId, resourceGroupName, componentName string) string {
	return fmt.Sprintf(
		"%s/providers/Microsoft.Insights/components/%s",
		ResourceGroupRID(subscriptionId, resourceGroupName),
		componentName,
	)
}

func SearchServiceRID(subscriptionId, resourceGroupName, serviceName string) string {
	return fmt.Sprintf(
		"%s/providers/Microsoft.Search/searchServices/%s",
		ResourceGroupRID(subscriptionId, resourceGroupName),
		serviceName,
	)
}

// RoleAssignmentRID creates the resource ID for a role assignment nested under the
// scope of the resource it grants access to.
func RoleAssignmentRID(scope, assignmentName string) string {
	return fmt.Sprintf("%s/providers/Microsoft.Authorization/roleAssignments/%s", scope, assignmentName)
}

var resourceIdRegex = regexp.MustCompile("/.+/(?i)resourceGroups/(.+?)/.+")

// Find the resource group name from the resource id
func GetResourceGroupName(resourceId string) *string {
	matches := resourceIdRegex.FindSubmatch([]byte(resourceId))
	if matches == nil || len(matches) < 2 {
		return nil
	}

	return convert.RefOf(string(matches[1]))
}
