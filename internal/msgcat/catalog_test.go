package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderEmbedded(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("banner.turn", map[string]any{"Side": "White"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "White's Turn" {
		t.Fatalf("banner = %q", got)
	}
}

func TestRenderMissingDataFails(t *testing.T) {
	c := Default()
	if _, err := c.Render("banner.turn", map[string]any{}); err == nil {
		t.Fatalf("missing template data should fail")
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("unknown key should fail")
	}
	if got := c.Text("no.such.key", nil, "fallback"); got != "fallback" {
		t.Fatalf("Text fallback = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("button:\n  start: \"Play\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Text("button.start", nil, ""); got != "Play" {
		t.Fatalf("override not applied: %q", got)
	}
	if got := c.Text("button.exit", nil, ""); got != "Exit" {
		t.Fatalf("embedded key lost: %q", got)
	}
}

func writeOverride(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOverrideLaterFileWins(t *testing.T) {
	dir := t.TempDir()
	writeOverride(t, dir, "a.yaml", "button:\n  start: \"Play\"\n  exit: \"Leave\"\n")
	writeOverride(t, dir, "b.yml", "button:\n  start: \"Go\"\n")
	writeOverride(t, dir, "notes.txt", "ignored")
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Text("button.start", nil, ""); got != "Go" {
		t.Fatalf("button.start = %q", got)
	}
	if got := c.Text("button.exit", nil, ""); got != "Leave" {
		t.Fatalf("button.exit = %q", got)
	}
}

func TestOverrideRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeOverride(t, dir, "a.yaml", "button:\n  strat: \"Play\"\n")
	if _, err := New(dir); err == nil || !strings.Contains(err.Error(), "button.strat") {
		t.Fatalf("typo key accepted: %v", err)
	}
}

func TestOverrideRejectsBrokenTemplate(t *testing.T) {
	dir := t.TempDir()
	writeOverride(t, dir, "a.yaml", "banner:\n  turn: \"{{.Side\"\n")
	if _, err := New(dir); err == nil {
		t.Fatalf("unparsable template accepted")
	}
}

func TestNilCatalogFallsBack(t *testing.T) {
	var c *Catalog
	if got := c.Text("banner.title", nil, "fallback"); got != "fallback" {
		t.Fatalf("nil catalogue = %q", got)
	}
}
