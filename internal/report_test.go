package internal

import (
	"strings"
	"testing"
)

func TestReportAccumulation(t *testing.T) {
	r := &Report{}
	r.Infof("using %s", "store")
	r.Okf("all good")
	r.Warnf("missing %d aliases", 2)
	r.Add(Finding{Error, "broken"})

	if len(r.Findings) != 4 {
		t.Fatalf("expected 4 findings, got %d", len(r.Findings))
	}
	wantLevels := []Level{Info, OK, Warn, Error}
	for i, want := range wantLevels {
		if r.Findings[i].Level != want {
			t.Errorf("finding %d level = %v, want %v", i, r.Findings[i].Level, want)
		}
	}
}

func TestReportHasErrors(t *testing.T) {
	r := &Report{}
	r.Infof("info")
	r.Warnf("warn")
	if r.HasErrors() {
		t.Error("warnings are not errors")
	}
	r.Errorf("bad")
	if !r.HasErrors() {
		t.Error("expected HasErrors after an error finding")
	}
}

func TestRenderPlainPrefixes(t *testing.T) {
	r := &Report{}
	r.Infof("plain info")
	r.Okf("fine")
	r.Warnf("careful")
	r.Errorf("broken")

	var sb strings.Builder
	r.Render(&sb, false)
	out := sb.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), out)
	}
	want := []string{"plain info", "OK: fine", "WARN: careful", "ERROR: broken"}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestRenderSymbols(t *testing.T) {
	r := &Report{}
	r.Okf("fine")
	r.Errorf("broken")

	var sb strings.Builder
	r.Render(&sb, true)
	out := sb.String()

	if !strings.Contains(out, "✅ fine") {
		t.Errorf("OK symbol missing: %q", out)
	}
	if !strings.Contains(out, "❌ broken") {
		t.Errorf("error symbol missing: %q", out)
	}
	if strings.Contains(out, "OK:") || strings.Contains(out, "ERROR:") {
		t.Errorf("text prefixes should not appear in symbol mode: %q", out)
	}
}
