package config

import "time"

type Render struct {
	// Timeout bounds a single HTML to PDF conversion.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// WarmDebounce is the quiet period collapsing a burst of mutation
	// signals into a single background render.
	WarmDebounce time.Duration `env:"WARM_DEBOUNCE" envDefault:"1500ms"`

	// LogoPath points to the company logo embedded in rendered documents.
	LogoPath string `env:"LOGO_PATH,expand"`
}

type PublicLink struct {
	DefaultTTLDays int `env:"DEFAULT_TTL_DAYS" envDefault:"30"`
}
