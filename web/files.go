// Package web embeds the dashboard frontend served by the relay daemon.
package web

import "embed"

//go:embed index.html
var Files embed.FS
