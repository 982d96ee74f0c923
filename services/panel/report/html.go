// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package report

import (
	"html/template"
	"strings"
	"time"
)

// htmlShell wraps a rendered report body in a self-contained page so
// archived reports open cleanly in a browser.
var htmlShell = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: 'Segoe UI', system-ui, sans-serif; background: #0e1117; color: #fafafa; max-width: 960px; margin: 0 auto; padding: 2rem; }
h1, h2, h3 { color: #00d4aa; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #2d3439; padding: 0.4rem 0.6rem; text-align: left; }
th { background: #1a1f26; }
hr { border: none; border-top: 1px solid #2d3439; margin: 1.5rem 0; }
.generated { color: #8b949e; font-size: 0.85rem; }
pre { white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="generated">Generated {{.Generated}}</p>
<pre>{{.Body}}</pre>
</body>
</html>
`))

// HTMLReport wraps report content in the panel's HTML shell.
func HTMLReport(title, body string, now time.Time) (string, error) {
	var b strings.Builder
	err := htmlShell.Execute(&b, struct {
		Title     string
		Generated string
		Body      string
	}{
		Title:     title,
		Generated: now.Format("2006-01-02 15:04"),
		Body:      body,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
