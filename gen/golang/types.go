package golang

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// defaultRuntimeImport is the bridge client package linked into every
// generated binding.
const defaultRuntimeImport = "github.com/crossbind/crossbind/runtime"

// Config controls how assemblies are rendered to Go source.
type Config struct {
	// ModuleBase is the import path prefix under which generated
	// packages live, e.g. "example.com/bindings".
	ModuleBase string

	// PackageNames overrides the derived Go package name per assembly.
	PackageNames map[string]string

	// Validators controls emission of runtime argument validators.
	Validators bool

	// WidenNumericUnions makes generated union validators accept any
	// Go numeric kind where a union lists the number primitive.
	WidenNumericUnions bool

	// AcceptForeignProxies makes generated union validators accept any
	// bridge-backed proxy value as a fallback when static matching
	// fails.
	AcceptForeignProxies bool

	// RuntimeImport overrides the bridge client import path.
	RuntimeImport string
}

// DefaultConfig returns the configuration used when the caller does
// not specify one.
func DefaultConfig() Config {
	return Config{
		Validators:           true,
		WidenNumericUnions:   true,
		AcceptForeignProxies: true,
		RuntimeImport:        defaultRuntimeImport,
	}
}

func (c Config) runtimeImport() string {
	if c.RuntimeImport != "" {
		return c.RuntimeImport
	}
	return defaultRuntimeImport
}

// file accumulates the body of one generated source file. Imports are
// registered as the body is written and rendered into the preamble at
// assembly time.
type file struct {
	path    string
	pkg     string
	imports map[string]string // import path -> alias ("" for default)
	body    bytes.Buffer
}

func newFile(path, pkg string) *file {
	return &file{path: path, pkg: pkg, imports: make(map[string]string)}
}

// importPkg registers an import and returns the qualifier to use in
// the body.
func (f *file) importPkg(path string) string {
	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	if alias, ok := f.imports[path]; ok {
		if alias != "" {
			return alias
		}
		return base
	}
	// Alias on collision with an already imported package of the same
	// base name.
	qualifier := base
	for f.qualifierTaken(qualifier) {
		qualifier += "_"
	}
	if qualifier == base {
		f.imports[path] = ""
	} else {
		f.imports[path] = qualifier
	}
	return qualifier
}

func (f *file) qualifierTaken(q string) bool {
	for path, alias := range f.imports {
		name := alias
		if name == "" {
			name = path
			if i := strings.LastIndexByte(path, '/'); i >= 0 {
				name = path[i+1:]
			}
		}
		if name == q {
			return true
		}
	}
	return false
}

func (f *file) printf(format string, args ...interface{}) {
	fmt.Fprintf(&f.body, format, args...)
}

// assemble renders the complete file: header, package clause, import
// block, body.
func (f *file) assemble() []byte {
	var out bytes.Buffer
	out.WriteString("// Code generated by crossbind. DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n\n", f.pkg)
	if len(f.imports) > 0 {
		paths := make([]string, 0, len(f.imports))
		for p := range f.imports {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		out.WriteString("import (\n")
		for _, p := range paths {
			if alias := f.imports[p]; alias != "" {
				fmt.Fprintf(&out, "\t%s %q\n", alias, p)
			} else {
				fmt.Fprintf(&out, "\t%q\n", p)
			}
		}
		out.WriteString(")\n\n")
	}
	out.Write(f.body.Bytes())
	return out.Bytes()
}
