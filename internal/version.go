// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

// Version is the version string printed by `aiplan version`. It is set at build time
// via -ldflags for release builds.
var Version = "0.1.0-dev"
