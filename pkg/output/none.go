// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import "io"

type NoneFormatter struct {
}

func (f *NoneFormatter) Kind() Format {
	return NoneFormat
}

func (f *NoneFormatter) Format(obj interface{}, writer io.Writer, _ interface{}) error {
	return nil
}

var _ Formatter = (*NoneFormatter)(nil)
