package golang

import (
	"fmt"

	"golang.org/x/tools/imports"
)

// formatSource runs goimports-style formatting over generated source,
// pruning any import the body ended up not using and fixing layout.
func formatSource(filename string, src []byte) ([]byte, error) {
	out, err := imports.Process(filename, src, nil)
	if err != nil {
		return nil, fmt.Errorf("generated source does not parse: %w", err)
	}
	return out, nil
}
