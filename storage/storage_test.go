// Copyright The Jumpstart Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import "testing"

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"shared-key", "identity"} {
		s, err := ParseStrategy(valid)
		if err != nil {
			t.Errorf("ParseStrategy(%q) = %v", valid, err)
		}
		if string(s) != valid {
			t.Errorf("ParseStrategy(%q) = %q", valid, s)
		}
	}

	if _, err := ParseStrategy("kerberos"); err == nil {
		t.Error("ParseStrategy accepted an unknown strategy")
	}
}

func TestStrategyAlternate(t *testing.T) {
	if StrategySharedKey.Alternate() != StrategyIdentity {
		t.Error("shared-key should alternate to identity")
	}
	if StrategyIdentity.Alternate() != StrategySharedKey {
		t.Error("identity should alternate to shared-key")
	}
	if s := StrategySharedKey; s.Alternate().Alternate() != s {
		t.Error("Alternate is not an involution")
	}
}
