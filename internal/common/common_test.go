package common_test

import (
	"testing"

	"tender-alert-engine/internal/common"
)

func TestIsCountryCode(t *testing.T) {
	for _, code := range []string{"DE", "FR", "AT", "US", "JP"} {
		if !common.IsCountryCode(code) {
			t.Errorf("IsCountryCode(%q) = false, want true", code)
		}
	}
	for _, code := range []string{"", "de", "XX", "DEU", "D"} {
		if common.IsCountryCode(code) {
			t.Errorf("IsCountryCode(%q) = true, want false", code)
		}
	}
}

func TestIsCpvCode(t *testing.T) {
	for _, code := range []string{"72000000", "45231300", "00000000"} {
		if !common.IsCpvCode(code) {
			t.Errorf("IsCpvCode(%q) = false, want true", code)
		}
	}
	for _, code := range []string{"", "7200000", "720000000", "72000000-9", "72abc000"} {
		if common.IsCpvCode(code) {
			t.Errorf("IsCpvCode(%q) = true, want false", code)
		}
	}
}

func TestCpvDivision(t *testing.T) {
	if got := common.CpvDivision("72000000"); got != "72" {
		t.Errorf("CpvDivision(72000000) = %q, want 72", got)
	}
	if got := common.CpvDivision("7"); got != "7" {
		t.Errorf("CpvDivision(7) = %q, want 7", got)
	}
}
