package config

// UIConfig configures the interactive terminal UI.
type UIConfig struct {
	Theme string `yaml:"theme"` // light, dark, auto
}

// DefaultUIConfig returns the default UI configuration.
func DefaultUIConfig() UIConfig {
	return UIConfig{
		Theme: "auto",
	}
}

// ValidThemes lists the accepted theme names.
var ValidThemes = []string{"light", "dark", "auto"}
