package config

const (
	MarkdownRendererMmark   = "mmark"
	MarkdownRendererClassic = "classic"
)
