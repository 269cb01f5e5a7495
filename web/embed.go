package web

import "embed"

// TemplatesFS embeds the page templates rendered by internal/http.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds stylesheets served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
