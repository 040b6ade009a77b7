// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_EnvVarsFormatter(t *testing.T) {
	t.Run("SortedOutput", func(t *testing.T) {
		var buf bytes.Buffer
		formatter := &EnvVarsFormatter{}

		err := formatter.Format(map[string]string{
			"B_KEY": "b value",
			"A_KEY": "a value",
		}, &buf, nil)

		require.NoError(t, err)
		require.Equal(t, "A_KEY=\"a value\"\nB_KEY=\"b value\"\n", buf.String())
	})

	t.Run("WrongType", func(t *testing.T) {
		var buf bytes.Buffer
		formatter := &EnvVarsFormatter{}

		err := formatter.Format([]string{"not", "a", "map"}, &buf, nil)
		require.Error(t, err)
	})
}
