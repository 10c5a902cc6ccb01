// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package version

// Version is the semantic version of this build. Overridden at link
// time by the release tooling via -ldflags.
var Version = "0.1.0+git"
