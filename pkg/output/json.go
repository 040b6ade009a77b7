// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"encoding/json"
	"io"
)

// JsonFormatter renders the object as indented JSON followed by a newline.
type JsonFormatter struct{}

func (f *JsonFormatter) Kind() Format {
	return JsonFormat
}

func (f *JsonFormatter) Format(obj interface{}, writer io.Writer, _ interface{}) error {
	b, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return err
	}

	_, err = writer.Write(append(b, '\n'))
	return err
}

var _ Formatter = (*JsonFormatter)(nil)
