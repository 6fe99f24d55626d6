// Package web embeds the page templates and the browser assets.
package web

import "embed"

// TemplatesFS holds the calendar, editor and stats templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds app.css and app.js.
//
//go:embed static/*
var StaticFS embed.FS
