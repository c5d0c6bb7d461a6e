package api

import (
	_ "embed"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

//go:embed shell.html
var fallbackShell []byte

// ShellHandler serves the single-page application shell and its static
// assets. When no static directory is configured (or index.html is missing
// from it) a minimal embedded shell is served instead, so the API remains
// usable without a built frontend.
type ShellHandler struct {
	staticDir string
}

// NewShellHandler creates a ShellHandler rooted at staticDir. staticDir may
// be empty.
func NewShellHandler(staticDir string) *ShellHandler {
	return &ShellHandler{staticDir: staticDir}
}

// ServeShell serves the application shell regardless of the request path.
func (s *ShellHandler) ServeShell(w http.ResponseWriter, r *http.Request) {
	if s.staticDir != "" {
		index := filepath.Join(s.staticDir, "index.html")
		if info, err := os.Stat(index); err == nil && !info.IsDir() {
			http.ServeFile(w, r, index)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(fallbackShell)
}

// ServeStatic resolves the request path inside the static directory. Paths
// that resolve to nothing fall through to the structured 404.
func (s *ShellHandler) ServeStatic(w http.ResponseWriter, r *http.Request) {
	if s.staticDir != "" {
		rel := strings.TrimPrefix(r.URL.Path, "/")
		// Clean with a leading slash so ".." cannot escape the root.
		p := filepath.Join(s.staticDir, filepath.Clean("/"+rel))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			http.ServeFile(w, r, p)
			return
		}
	}
	NotFoundHandler(w, r)
}
