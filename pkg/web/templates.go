package web

import (
	"html/template"
	"io"
	"io/fs"
	"sync"

	"github.com/rotisserie/eris"
)

// templateSet holds the parsed page templates behind a lock so the dev-mode
// watcher can swap them out while requests are in flight.
type templateSet struct {
	mu   sync.RWMutex
	tmpl *template.Template
	fsys fs.FS
}

func newTemplateSet(fsys fs.FS) (*templateSet, error) {
	ts := &templateSet{fsys: fsys}
	return ts, ts.reload()
}

func (ts *templateSet) reload() error {
	tmpl, err := template.ParseFS(ts.fsys, "templates/*.tmpl")
	if err != nil {
		return eris.Wrap(err, "failed to parse templates")
	}

	ts.mu.Lock()
	ts.tmpl = tmpl
	ts.mu.Unlock()
	return nil
}

func (ts *templateSet) render(w io.Writer, name string, data interface{}) error {
	ts.mu.RLock()
	tmpl := ts.tmpl
	ts.mu.RUnlock()

	return tmpl.ExecuteTemplate(w, name, data)
}
