package view

import (
	"context"

	"github.com/a-h/templ"
)

const datastarScriptURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

const stylesheet = `
body{font-family:system-ui,sans-serif;max-width:42rem;margin:2rem auto;padding:0 1rem;color:#222}
header{display:flex;justify-content:space-between;align-items:center;margin-bottom:1.5rem}
form{display:grid;gap:.5rem;margin-bottom:1.5rem}
input,textarea,button{font:inherit;padding:.4rem}
.error{color:#b00020;margin:0}
.auth{display:grid;grid-template-columns:1fr 1fr;gap:2rem}
#task-list{list-style:none;padding:0}
#task-list li{display:flex;gap:.75rem;align-items:flex-start;padding:.5rem 0;border-bottom:1px solid #eee}
#task-list li.done .title{text-decoration:line-through;color:#888}
.task-body{flex:1}
.meta{font-size:.85rem;color:#666}
`

// Page wraps body in the HTML document shell.
func Page(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><style>` + stylesheet + `</style>`)
		h.raw(`<script type="module" src="` + datastarScriptURL + `"></script>`)
		h.raw(`</head><body>`)
		h.render(ctx, body)
		h.raw(`</body></html>`)
	})
}
