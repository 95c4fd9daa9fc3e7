package config

type Storage struct {
	Database Database `envPrefix:"DATABASE_"`
	Cache    Cache    `envPrefix:"CACHE_"`
}

type Database struct {
	DSN string `env:"DSN" envDefault:"data.sqlite"`
}

type Cache struct {
	// Enabled toggles the render cache as a whole. Disabled, every request
	// recomputes the render: slower, identical bytes.
	Enabled   bool   `env:"ENABLED" envDefault:"true"`
	Directory string `env:"DIRECTORY,expand" envDefault:".cache/pdfs"`
}
