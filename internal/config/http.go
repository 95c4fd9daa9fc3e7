package config

import "time"

type HTTP struct {
	BaseURL string `env:"BASE_URL,expand" envDefault:"/"`
	Address string `env:"ADDRESS,expand" envDefault:":3003"`

	// PublicBaseURL is the absolute base used when building shareable
	// links. When empty, the request host is used.
	PublicBaseURL string `env:"PUBLIC_BASE_URL,expand"`

	Auth      Auth      `envPrefix:"AUTH_"`
	RateLimit RateLimit `envPrefix:"RATELIMIT_"`
}

type Auth struct {
	Admin User `envPrefix:"ADMIN_"`
}

type User struct {
	Username string `env:"USERNAME,expand" envDefault:"admin"`
	Password string `env:"PASSWORD,expand"`
}

// RateLimit bounds the anonymous public surface per remote address.
type RateLimit struct {
	Enabled      bool          `env:"ENABLED" envDefault:"true"`
	Interval     time.Duration `env:"INTERVAL" envDefault:"500ms"`
	MaxBurst     int           `env:"MAX_BURST" envDefault:"20"`
	TrustHeaders bool          `env:"TRUST_HEADERS" envDefault:"false"`
}
