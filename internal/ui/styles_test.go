package ui

import (
	"strings"
	"testing"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

func TestRenderStatus(t *testing.T) {
	SetColor(true)
	t.Cleanup(func() { SetColor(true) })

	got := RenderStatus(model.StatusAssignedToAgent)
	if !strings.HasPrefix(got, "\x1b[38;5;214m") || !strings.Contains(got, "Assigned to Agent") {
		t.Fatalf("got %q", got)
	}
	if got := RenderStatus(model.StatusSubmitted); got != "Submitted" {
		t.Fatalf("uncolored status: got %q", got)
	}

	ForceNoColor()
	if got := RenderStatus(model.StatusDelivered); got != "Delivered" {
		t.Fatalf("no-color: got %q", got)
	}
	if got := RenderError("boom"); got != "boom" {
		t.Fatalf("no-color error: got %q", got)
	}
}

func TestShouldUseColor_Env(t *testing.T) {
	for _, tc := range []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"NoColor", map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}, false},
		{"Force", map[string]string{"NO_COLOR": "", "CLICOLOR_FORCE": "1"}, true},
		{"Disabled", map[string]string{"NO_COLOR": "", "CLICOLOR_FORCE": "", "CLICOLOR": "0"}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if got := ShouldUseColor(); got != tc.want {
				t.Fatalf("ShouldUseColor() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestColorFromEnv_FallsBackToTTY(t *testing.T) {
	none := func(string) string { return "" }
	for _, tty := range []bool{true, false} {
		if got := colorFromEnv(none, func() bool { return tty }); got != tty {
			t.Errorf("tty=%v: got %v", tty, got)
		}
	}
	forced := func(k string) string {
		if k == "CLICOLOR_FORCE" {
			return " 1 "
		}
		return ""
	}
	if !colorFromEnv(forced, func() bool { return false }) {
		t.Error("CLICOLOR_FORCE should win over a missing TTY")
	}
}
