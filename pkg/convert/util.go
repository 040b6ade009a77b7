// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package convert

// RefOf returns a pointer to the given value.
func RefOf[T any](value T) *T {
	return &value
}

// Converts a pointer to a value type
// If the ptr is nil returns default value, otherwise the value of value of the pointer
func ToValueWithDefault[T any](ptr *T, defaultValue T) T {
	if ptr == nil {
		return defaultValue
	}

	if str, ok := any(ptr).(*string); ok && *str == "" {
		return defaultValue
	}

	return *ptr
}
