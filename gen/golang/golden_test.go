package golang

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestEmitEnum_Golden(t *testing.T) {
	out := emitWidgets(t, defaultTestConfig())
	g := goldie.New(t)
	g.Assert(t, "color", out.Get("widgets/color.go"))
}

func TestEmit_StableAcrossRuns(t *testing.T) {
	first := emitWidgets(t, defaultTestConfig())
	second := emitWidgets(t, defaultTestConfig())

	a, b := first.Files(), second.Files()
	if len(a) != len(b) {
		t.Fatalf("run file counts differ: %d vs %d", len(a), len(b))
	}
	for path, content := range a {
		if !bytes.Equal(content, b[path]) {
			t.Errorf("%s differs between runs:\n--- first\n%s\n--- second\n%s", path, content, b[path])
		}
	}
}
