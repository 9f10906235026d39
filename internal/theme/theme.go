// Package theme defines the light and dark palettes and loads skin files.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Palette holds the colors a front end needs for one theme.
type Palette struct {
	Background string `yaml:"background"`
	Surface    string `yaml:"surface"`
	Text       string `yaml:"text"`
	Muted      string `yaml:"muted"`
	Accent     string `yaml:"accent"`
	Border     string `yaml:"border"`
	HeaderBg   string `yaml:"header_bg"`
	RowAlt     string `yaml:"row_alt"`
	Success    string `yaml:"success"`
	Error      string `yaml:"error"`
}

// Skin pairs a light and a dark palette.
type Skin struct {
	Name  string  `yaml:"name"`
	Light Palette `yaml:"light"`
	Dark  Palette `yaml:"dark"`
}

// Default is the built-in skin.
var Default = Skin{
	Name: "default",
	Light: Palette{
		Background: "#F9FAFB",
		Surface:    "#FFFFFF",
		Text:       "#1F2937",
		Muted:      "#6B7280",
		Accent:     "#4F46E5",
		Border:     "#E5E7EB",
		HeaderBg:   "#F3F4F6",
		RowAlt:     "#F9FAFB",
		Success:    "#16A34A",
		Error:      "#DC2626",
	},
	Dark: Palette{
		Background: "#111827",
		Surface:    "#1F2937",
		Text:       "#F3F4F6",
		Muted:      "#9CA3AF",
		Accent:     "#6366F1",
		Border:     "#374151",
		HeaderBg:   "#374151",
		RowAlt:     "#111827",
		Success:    "#4ADE80",
		Error:      "#F87171",
	},
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Palette returns the dark or light palette.
func (s Skin) Palette(dark bool) Palette {
	if dark {
		return s.Dark
	}
	return s.Light
}

// Load reads <dir>/skins/<name>.yml. Missing colors fall back to Default.
// The name "default" or "" returns Default without touching the disk.
func Load(name, dir string) (Skin, error) {
	if name == "" || name == Default.Name {
		return Default, nil
	}

	path := filepath.Join(dir, "skins", name+".yml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default, fmt.Errorf("theme: skin %q not found at %s", name, path)
		}
		return Default, fmt.Errorf("theme: read skin: %w", err)
	}
	return Parse(data, name)
}

// Parse decodes a YAML skin and validates its colors.
func Parse(data []byte, name string) (Skin, error) {
	skin := Default
	if err := yaml.Unmarshal(data, &skin); err != nil {
		return Default, fmt.Errorf("theme: parse skin %q: %w", name, err)
	}
	if skin.Name == "" || skin.Name == Default.Name {
		skin.Name = name
	}
	for _, p := range []Palette{skin.Light, skin.Dark} {
		for _, c := range p.colors() {
			if !hexColor.MatchString(c) {
				return Default, fmt.Errorf("theme: skin %q: invalid color %q", name, c)
			}
		}
	}
	return skin, nil
}

func (p Palette) colors() []string {
	return []string{p.Background, p.Surface, p.Text, p.Muted, p.Accent, p.Border, p.HeaderBg, p.RowAlt, p.Success, p.Error}
}
