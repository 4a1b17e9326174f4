package golang

import (
	"strings"

	"github.com/crossbind/crossbind/spec"
)

// writeDocs renders a model doc block as a Go comment. Deprecations
// lower to the standard "Deprecated:" paragraph so go tooling flags
// callers.
func writeDocs(f *file, docs *spec.Docs, ind string) {
	if docs == nil || docs.IsZero() {
		return
	}
	wrote := false
	if docs.Summary != "" {
		writeCommentLines(f, docs.Summary, ind)
		wrote = true
	}
	if docs.Remarks != "" {
		if wrote {
			f.printf("%s//\n", ind)
		}
		writeCommentLines(f, docs.Remarks, ind)
		wrote = true
	}
	if docs.Deprecated != "" {
		if wrote {
			f.printf("%s//\n", ind)
		}
		writeCommentLines(f, "Deprecated: "+docs.Deprecated, ind)
	}
}

func writeCommentLines(f *file, text string, ind string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			f.printf("%s//\n", ind)
			continue
		}
		f.printf("%s// %s\n", ind, line)
	}
}
