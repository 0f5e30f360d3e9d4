// Package site serves the landing page at the root path.
package site

import (
	"context"
	"net/http"
)

// Register attaches the landing page to mux. Unknown paths get a 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/", NewRootHandler().HandleRoot)
}

// RootHandler handles root path requests
type RootHandler struct{}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / with a short index of the API.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

const indexHTML = `<!doctype html>
<html>
  <head><meta charset="utf-8"><title>hopgraph</title></head>
  <body>
    <h1>hopgraph</h1>
    <ul>
      <li><a href="/api-docs">API reference</a></li>
      <li><code>GET /organizations?org_name=</code></li>
      <li><code>GET /org-transitions?org_id=</code></li>
      <li><code>GET /employee-transitions?source_org_id=&amp;dest_org_id=&amp;hop=</code></li>
      <li><code>GET /related-background?dest_org_ids=&amp;viewer_id=</code></li>
      <li><a href="/healthz">Metrics</a></li>
    </ul>
  </body>
</html>`
