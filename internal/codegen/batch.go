package codegen

import (
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"slvcodec/internal/hdlpkg"
)

// GenerateAll runs Generate once per package in packages, concurrently: §5
// notes the resolved model is immutable and therefore "freely shareable
// between threads if a caller chooses to parallelize generation across
// packages." Each package gets its own uuid.New() run id. A failing package
// does not stop the others: every goroutine runs to completion, and the
// first error any of them returned is returned to the caller.
func (g *Generator) GenerateAll(packages map[string]*hdlpkg.Package) (map[string]string, error) {
	var eg errgroup.Group
	results := make(map[string]string, len(packages))
	resultsCh := make(chan struct {
		name, source string
	}, len(packages))

	for name, pkg := range packages {
		name, pkg := name, pkg
		eg.Go(func() error {
			source, err := g.Generate(pkg, uuid.New())
			if err != nil {
				return err
			}
			resultsCh <- struct{ name, source string }{name, source}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	close(resultsCh)
	for r := range resultsCh {
		results[r.name] = r.source
	}
	return results, nil
}
