// Package theme holds the static branding registry and picks the active
// theme for a given document, persisted override and host.
package theme

import (
	"bytes"
	"fmt"
	"html/template"
	"slices"
)

// DefaultName is the theme used when nothing else selects one.
const DefaultName = "helix"

// Logo describes how the brand logo is drawn.
type Logo struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Height int    `json:"height"`
}

var logoTmpl = template.Must(template.New("logo").Parse(
	`<div class="brand-logo" style="display:flex;flex-direction:row;align-items:center">` +
		`<img src="{{.Src}}" alt="{{.Alt}}" style="height:{{.Height}}px;margin:0 8px"></div>`))

// Config is one branding configuration.
type Config struct {
	Company   string `json:"company"`
	URL       string `json:"url"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`

	DarkIcon            string `json:"darkIcon"`
	DarkIconHover       string `json:"darkIconHover"`
	DarkHighlight       string `json:"darkHighlight"`
	DarkScrollbar       string `json:"darkScrollbar"`
	DarkScrollbarThumb  string `json:"darkScrollbarThumb"`
	DarkScrollbarHover  string `json:"darkScrollbarHover"`
	DarkBackgroundColor string `json:"darkBackgroundColor"`
	DarkBackgroundImage string `json:"darkBackgroundImage"`
	DarkBorder          string `json:"darkBorder"`
	DarkText            string `json:"darkText"`
	DarkPanel           string `json:"darkPanel"`

	LightIcon            string `json:"lightIcon"`
	LightIconHover       string `json:"lightIconHover"`
	LightHighlight       string `json:"lightHighlight"`
	LightBackgroundColor string `json:"lightBackgroundColor"`
	LightBackgroundImage string `json:"lightBackgroundImage"`
	LightBorder          string `json:"lightBorder"`
	LightText            string `json:"lightText"`
	LightPanel           string `json:"lightPanel"`

	// ActiveSections lists the enabled UI sections. Empty means all of them.
	ActiveSections []string `json:"activeSections"`

	Logo Logo `json:"logo"`
}

// SectionActive reports whether the named UI section is enabled.
func (c Config) SectionActive(section string) bool {
	return len(c.ActiveSections) == 0 || slices.Contains(c.ActiveSections, section)
}

// RenderLogo returns the HTML fragment for the brand logo.
func (c Config) RenderLogo() (template.HTML, error) {
	var buf bytes.Buffer
	if err := logoTmpl.Execute(&buf, c.Logo); err != nil {
		return "", fmt.Errorf("render logo for %s: %w", c.Company, err)
	}
	return template.HTML(buf.String()), nil
}

// themes is the registry of known themes, keyed by theme name. It is only
// read through Lookup, Known and Names.
var themes = map[string]Config{
	"helix": {
		Company:   "Helix",
		URL:       "https://tryhelix.ai/",
		Primary:   "#5d5d7b",
		Secondary: "#00d5ff",

		DarkIcon:            "#5d5d7b",
		DarkIconHover:       "#00d5ff",
		DarkHighlight:       "#00d5ff",
		DarkScrollbar:       "#1a1a1d",
		DarkScrollbarThumb:  "#2b2b2f",
		DarkScrollbarHover:  "#3c3c40",
		DarkBackgroundColor: "#070714",
		DarkBackgroundImage: "url('/img/nebula-dark.png')",
		DarkBorder:          "0.1rem solid #303047",
		DarkText:            "#ffffff",
		DarkPanel:           "#10101e",

		LightIcon:            "#5d5d7b",
		LightIconHover:       "#00d5ff",
		LightHighlight:       "#00d5ff",
		LightBackgroundColor: "#ffffff",
		LightBackgroundImage: "url('/img/nebula-light.png')",
		LightBorder:          "1px solid #aeaeae",
		LightText:            "#333",
		LightPanel:           "#f4f4f4",

		ActiveSections: []string{},

		Logo: Logo{Src: "/img/logo.png", Alt: "Helix", Height: 30},
	},
}

// domains maps a network host name to its theme name.
var domains = map[string]string{
	"helix.ml": "helix",
}

// Lookup returns a copy of the named theme.
func Lookup(name string) (Config, bool) {
	c, ok := themes[name]
	if ok {
		c.ActiveSections = slices.Clone(c.ActiveSections)
	}
	return c, ok
}

// Known reports whether name is in the registry.
func Known(name string) bool {
	_, ok := themes[name]
	return ok
}

// Names returns the registered theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
