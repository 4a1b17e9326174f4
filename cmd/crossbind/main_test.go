package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "crossbind.yaml", `
out: ./bindings
moduleBase: example.com/bindings
searchPaths:
  - ./deps
packageNames:
  "@scope/widgets": widgets
validators: false
descriptors:
  - widgets.json
`)

	cfg, err := loadFileConfig(path)
	require.NoError(t, err)
	require.Equal(t, "./bindings", cfg.Out)
	require.Equal(t, "example.com/bindings", cfg.ModuleBase)
	require.Equal(t, []string{"./deps"}, cfg.SearchPaths)
	require.Equal(t, map[string]string{"@scope/widgets": "widgets"}, cfg.PackageNames)
	require.NotNil(t, cfg.Validators)
	require.False(t, *cfg.Validators)
	require.Equal(t, []string{"widgets.json"}, cfg.Descriptors)
}

func TestLoadFileConfig_MissingDefaultIsEmpty(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := loadFileConfig("")
	require.NoError(t, err)
	require.Equal(t, &fileConfig{}, cfg)
}

func TestLoadFileConfig_MissingExplicitFails(t *testing.T) {
	_, err := loadFileConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDirResolver(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "depA.json", `{"name": "depA", "version": "1.0.0"}`)

	resolver := newDirResolver([]string{t.TempDir(), dir})
	doc, err := resolver.Resolve("depA")
	require.NoError(t, err)
	require.Equal(t, "depA", doc.Name)
	require.Equal(t, "1.0.0", doc.Version)

	_, err = resolver.Resolve("depB")
	require.Error(t, err)
	require.Contains(t, err.Error(), "depB")
	require.Contains(t, err.Error(), dir)
}

func TestDirResolver_NoSearchPaths(t *testing.T) {
	_, err := newDirResolver(nil).Resolve("depA")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--search-path")
}

func TestGenCmdRun(t *testing.T) {
	dir := t.TempDir()
	descriptor := writeFile(t, dir, "pets.json", `{
		"name": "pets",
		"version": "1.0.0",
		"types": {
			"pets.Dog": {
				"kind": "class",
				"methods": [
					{"name": "bark", "returns": {"type": {"primitive": "string"}}}
				]
			}
		}
	}`)
	out := filepath.Join(dir, "bindings")

	cmd := &GenCmd{
		Out:         out,
		Descriptors: []string{descriptor},
		ModuleBase:  "example.com/bindings",
	}
	require.NoError(t, cmd.Run())

	src, err := os.ReadFile(filepath.Join(out, "pets", "dog.go"))
	require.NoError(t, err)
	require.Contains(t, string(src), "type Dog struct {")
	require.Contains(t, string(src), "func (d *Dog) Bark() (string, error) {")
}

func TestGenCmdRun_RequiresDescriptors(t *testing.T) {
	chdir(t, t.TempDir())

	cmd := &GenCmd{Out: "bindings"}
	err := cmd.Run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "descriptor")
}

func TestCheckCmdRun(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "pets.json", `{"name": "pets", "version": "1.0.0"}`)
	require.NoError(t, (&CheckCmd{Descriptors: []string{good}}).Run())

	bad := writeFile(t, dir, "bad.json", `{
		"name": "bad",
		"version": "1.0.0",
		"types": {
			"bad.Orphan": {"kind": "class", "base": "bad.Missing"}
		}
	}`)
	err := (&CheckCmd{Descriptors: []string{bad}}).Run()
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "validation failed"))
}

func TestVersion(t *testing.T) {
	require.NotEmpty(t, Version())
}
