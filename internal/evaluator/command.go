// Package evaluator builds and runs the mdbook-slide-evaluator command line.
package evaluator

import (
	"fmt"
	"path/filepath"
)

// BuildCommand assembles the argv for one evaluator invocation.
//
// The evaluator parses its command line positionally, so the ordering is a
// compatibility contract: flags first, extra options verbatim in their
// original order, and the book directory as the trailing positional
// argument. The export path and the book directory are made absolute
// because the evaluator may run with a different working directory.
func BuildCommand(name, webdriverURL, exportPath string, extraOptions []string, bookDir string) ([]string, error) {
	absExport, err := filepath.Abs(exportPath)
	if err != nil {
		return nil, fmt.Errorf("resolve export path: %w", err)
	}
	absBook, err := filepath.Abs(bookDir)
	if err != nil {
		return nil, fmt.Errorf("resolve book directory: %w", err)
	}

	argv := []string{name, "--webdriver", webdriverURL, "--export", absExport}
	argv = append(argv, extraOptions...)
	argv = append(argv, absBook)
	return argv, nil
}
