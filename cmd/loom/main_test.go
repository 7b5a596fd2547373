package main

import "testing"

func TestBuildVersion(t *testing.T) {
	defer func(v, c, d string) { version, commit, date = v, c, d }(version, commit, date)

	version, commit, date = "dev", "none", "unknown"
	if got := buildVersion(); got != "dev" {
		t.Errorf("buildVersion() = %q, want %q", got, "dev")
	}

	version, commit, date = "1.2.0", "abc1234", "2026-08-30"
	want := "1.2.0 (commit abc1234, built 2026-08-30)"
	if got := buildVersion(); got != want {
		t.Errorf("buildVersion() = %q, want %q", got, want)
	}
}
