package config

const (
	DefaultSyntaxTheme string = "gruvbox"

	// Terminal palette used by the composer view.
	ColorAccent  string = "#fabd2f"
	ColorMuted   string = "#928374"
	ColorError   string = "#fb4934"
	ColorSuccess string = "#b8bb26"
	ColorInfo    string = "#83a598"
)
