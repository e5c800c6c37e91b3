package render

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

var flavors = map[string]catppuccin.Flavor{
	"latte":     catppuccin.Latte,
	"frappe":    catppuccin.Frappe,
	"macchiato": catppuccin.Macchiato,
	"mocha":     catppuccin.Mocha,
}

// Palette colours the parts of a tree listing with one catppuccin flavour.
type Palette struct {
	flavor catppuccin.Flavor
}

// NewPalette picks the flavour named by theme, mocha when unknown.
func NewPalette(theme string) *Palette {
	flavor, ok := flavors[theme]
	if !ok {
		flavor = catppuccin.Mocha
	}
	return &Palette{flavor: flavor}
}

func (p *Palette) color(c catppuccin.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex)
}

// Heading is the root project's name line.
func (p *Palette) Heading() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(p.color(p.flavor.Mauve()))
}

// OutRoot is the Gradle build root line below the heading.
func (p *Palette) OutRoot() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.color(p.flavor.Subtext0())).MarginBottom(1)
}

// Path is a project's build directory.
func (p *Palette) Path() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.color(p.flavor.Teal()))
}

// Implicit marks parents that only exist because a child was included.
func (p *Palette) Implicit() lipgloss.Style {
	return lipgloss.NewStyle().Italic(true).Foreground(p.color(p.flavor.Overlay0()))
}

// Warning is used for fallback notes.
func (p *Palette) Warning() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(p.color(p.flavor.Yellow()))
}
