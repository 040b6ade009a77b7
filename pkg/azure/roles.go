// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azure

import "fmt"

// Well known Azure built-in role definition ids. These are fixed constants published by
// the platform and identical in every tenant.
const (
	RoleCognitiveServicesUser       = "a97b65f3-24c7-4388-baec-2e87135dc908"
	RoleCognitiveServicesOpenAIUser = "5e0bd9bd-7b93-4f28-af87-19fc36ad61bd"
	RoleKeyVaultSecretsOfficer      = "b86a8fe4-44ce-4948-aee5-eccb2c155cd7"
	RoleKeyVaultSecretsUser         = "4633458b-17de-408a-b874-0445c86b69e6"
	RoleStorageBlobDataContributor  = "ba92f5b4-2d11-453d-a403-e96b0029c9fe"
	RoleSearchIndexDataContributor  = "8ebe5a00-799e-43f5-93ac-243d3dce84a7"
)

// RoleDefinitionRID returns the fully qualified resource id of a built-in role
// definition within the given subscription.
func RoleDefinitionRID(subscriptionId, roleDefinitionId string) string {
	return fmt.Sprintf(
		"%s/providers/Microsoft.Authorization/roleDefinitions/%s",
		SubscriptionRID(subscriptionId),
		roleDefinitionId,
	)
}
