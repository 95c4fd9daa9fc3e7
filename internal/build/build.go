package build

// Overridden at build time through ldflags.
var (
	ShortVersion = "0.0.0"
	LongVersion  = "0.0.0-dev"
)
