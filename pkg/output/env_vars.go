// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"fmt"
	"io"
	"sort"
)

type EnvVarsFormatter struct {
}

func (f *EnvVarsFormatter) Kind() Format {
	return EnvVarsFormat
}

func (f *EnvVarsFormatter) Format(obj interface{}, writer io.Writer, _ interface{}) error {
	values, ok := obj.(map[string]string)
	if !ok {
		return fmt.Errorf("EnvVarsFormatter can only format objects of type map[string]string")
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var content string
	for _, key := range keys {
		content += fmt.Sprintf("%s=%q\n", key, values[key])
	}

	_, err := writer.Write([]byte(content))
	if err != nil {
		return fmt.Errorf("could not write content: %w", err)
	}

	return nil
}

var _ Formatter = (*EnvVarsFormatter)(nil)
