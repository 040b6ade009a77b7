// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azure

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_CognitiveAccountRID(t *testing.T) {
	rid := CognitiveAccountRID("70a036f6-8e4d-4615-bad6-149c02e7720d", "rg-demo1", "myproj")
	require.Equal(
		t,
		"/subscriptions/70a036f6-8e4d-4615-bad6-149c02e7720d/resourceGroups/rg-demo1/"+
			"providers/Microsoft.CognitiveServices/accounts/myproj",
		rid,
	)
}

func Test_SubscriptionFromRID(t *testing.T) {
	t.Run("WithSubscription", func(t *testing.T) {
		rid := WebsiteRID("70a036f6-8e4d-4615-bad6-149c02e7720d", "rg-demo1", "app-web")
		require.Equal(t, "70a036f6-8e4d-4615-bad6-149c02e7720d", SubscriptionFromRID(rid))
	})

	t.Run("WithoutSubscription", func(t *testing.T) {
		require.Equal(t, "", SubscriptionFromRID("/providers/Microsoft.Web/sites/app-web"))
	})
}

func Test_GetResourceGroupName(t *testing.T) {
	t.Run("WithMatch", func(t *testing.T) {
		test := "/subscriptions/70a036f6-8e4d-4615-bad6-149c02e7720d/" +
			"resourceGroups/RESOURCE_GROUP_NAME/providers/" +
			"Microsoft.CognitiveServices/accounts/ACCOUNT_NAME"
		resourceGroup := GetResourceGroupName(test)

		require.Equal(t, "RESOURCE_GROUP_NAME", *resourceGroup)
	})

	t.Run("WithMatchLower", func(t *testing.T) {
		test := "/subscriptions/70a036f6-8e4d-4615-bad6-149c02e7720d/" +
			"resourcegroups/RESOURCE_GROUP_NAME/providers/Microsoft.CognitiveServices/" +
			"accounts/ACCOUNT_NAME"
		resourceGroup := GetResourceGroupName(test)

		require.Equal(t, "RESOURCE_GROUP_NAME", *resourceGroup)
	})

	t.Run("NoMatch", func(t *testing.T) {
		test := "i don't have what your looking for"
		resourceGroup := GetResourceGroupName(test)

		require.Nil(t, resourceGroup)
	})
}

func Test_RoleAssignmentRID(t *testing.T) {
	scope := CognitiveAccountRID("70a036f6-8e4d-4615-bad6-149c02e7720d", "rg-demo1", "myproj")
	rid := RoleAssignmentRID(scope, "00000000-0000-0000-0000-000000000000")
	require.Equal(
		t,
		scope+"/providers/Microsoft.Authorization/roleAssignments/00000000-0000-0000-0000-000000000000",
		rid,
	)
}
