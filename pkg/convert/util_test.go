// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package convert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ToValueWithDefault(t *testing.T) {
	t.Run("WithValue", func(t *testing.T) {
		require.Equal(t, "apple", ToValueWithDefault(RefOf("apple"), "banana"))
	})

	t.Run("WithNil", func(t *testing.T) {
		require.Equal(t, "banana", ToValueWithDefault(nil, "banana"))
	})

	t.Run("WithEmptyString", func(t *testing.T) {
		require.Equal(t, "banana", ToValueWithDefault(RefOf(""), "banana"))
	})
}
