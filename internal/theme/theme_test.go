package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultNeedsNoFile(t *testing.T) {
	skin, err := Load("", t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if skin.Name != "default" || skin.Palette(true) != Default.Dark || skin.Palette(false) != Default.Light {
		t.Fatalf("unexpected skin %+v", skin)
	}
}

func TestLoad_PartialSkinKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "skins"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := "dark:\n  accent: \"#FF00AA\"\n"
	if err := os.WriteFile(filepath.Join(dir, "skins", "pink.yml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	skin, err := Load("pink", dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if skin.Name != "pink" {
		t.Errorf("name = %q", skin.Name)
	}
	if skin.Dark.Accent != "#FF00AA" {
		t.Errorf("dark accent = %q", skin.Dark.Accent)
	}
	if skin.Dark.Text != Default.Dark.Text || skin.Light != Default.Light {
		t.Errorf("defaults not preserved: %+v", skin)
	}
}

func TestLoad_MissingSkin(t *testing.T) {
	skin, err := Load("nope", t.TempDir())
	if err == nil {
		t.Fatal("expected error")
	}
	if skin.Name != "default" {
		t.Errorf("fallback = %q", skin.Name)
	}
}

func TestParse_RejectsBadColor(t *testing.T) {
	if _, err := Parse([]byte("light:\n  text: red\n"), "bad"); err == nil {
		t.Fatal("expected invalid color error")
	}
	if _, err := Parse([]byte("light: [\n"), "broken"); err == nil {
		t.Fatal("expected yaml error")
	}
}
