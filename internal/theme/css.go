package theme

import (
	"fmt"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
)

// Mode is the colour scheme the UI is rendered in.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// ParseMode maps anything other than "light" to dark.
func ParseMode(s string) Mode {
	if Mode(s) == ModeLight {
		return ModeLight
	}
	return ModeDark
}

var cssMinifier = func() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	return m
}()

// CSSVariables renders the theme as :root custom properties for mode.
// Falls back to the unminified text if minification fails.
func (c Config) CSSVariables(mode Mode) string {
	vars := [][2]string{
		{"primary", c.Primary},
		{"secondary", c.Secondary},
	}
	if mode == ModeLight {
		vars = append(vars,
			[2]string{"icon", c.LightIcon},
			[2]string{"icon-hover", c.LightIconHover},
			[2]string{"highlight", c.LightHighlight},
			[2]string{"background-color", c.LightBackgroundColor},
			[2]string{"background-image", c.LightBackgroundImage},
			[2]string{"border", c.LightBorder},
			[2]string{"text", c.LightText},
			[2]string{"panel", c.LightPanel},
		)
	} else {
		vars = append(vars,
			[2]string{"icon", c.DarkIcon},
			[2]string{"icon-hover", c.DarkIconHover},
			[2]string{"highlight", c.DarkHighlight},
			[2]string{"scrollbar", c.DarkScrollbar},
			[2]string{"scrollbar-thumb", c.DarkScrollbarThumb},
			[2]string{"scrollbar-hover", c.DarkScrollbarHover},
			[2]string{"background-color", c.DarkBackgroundColor},
			[2]string{"background-image", c.DarkBackgroundImage},
			[2]string{"border", c.DarkBorder},
			[2]string{"text", c.DarkText},
			[2]string{"panel", c.DarkPanel},
		)
	}

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, kv := range vars {
		if kv[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "  --theme-%s: %s;\n", kv[0], kv[1])
	}
	b.WriteString("}\n")

	raw := b.String()
	out, err := cssMinifier.String("text/css", raw)
	if err != nil {
		return raw
	}
	return out
}
