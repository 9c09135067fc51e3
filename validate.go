package di

import (
	"sort"
	"strings"

	"github.com/pixie-sh/errors-go"
)

// validateGraph walks the dependency graph depth-first from every registered
// key, proving it acyclic and fully present before any instance is created.
// It performs no instantiation.
//
// Two sets drive the traversal: resolved keys are proven good and
// short-circuit, resolving keys sit on the current path and flag a cycle when
// revisited. Top-level keys are visited in lexical order so the reported
// failure is stable; the validity verdict itself never depends on order.
func validateGraph(regs map[string]*Registration, index map[string]ServiceKey) error {
	w := &graphWalker{
		regs:      regs,
		index:     index,
		resolved:  make(map[string]struct{}, len(regs)),
		resolving: make(map[string]struct{}),
	}

	roots := make([]string, 0, len(regs))
	for normalized := range regs {
		roots = append(roots, normalized)
	}

	sort.Strings(roots)

	for _, normalized := range roots {
		if err := w.visit(normalized, nil); err != nil {
			return err
		}
	}

	return nil
}

type graphWalker struct {
	regs      map[string]*Registration
	index     map[string]ServiceKey
	resolved  map[string]struct{}
	resolving map[string]struct{}
	path      []string
}

func (w *graphWalker) visit(normalized string, parent *Registration) error {
	if _, done := w.resolved[normalized]; done {
		return nil
	}

	if _, onPath := w.resolving[normalized]; onPath {
		return errors.New("cyclic dependency detected at key '%s' (%s)", normalized, w.chain(normalized), CyclicDependencyErrorCode)
	}

	reg, ok := w.regs[normalized]
	if !ok {
		if parent != nil {
			return errors.New("missing dependency '%s' required by '%s'", normalized, parent.key.Normalize(), MissingDependencyErrorCode)
		}

		return errors.New("missing dependency '%s'", normalized, MissingDependencyErrorCode)
	}

	w.resolving[normalized] = struct{}{}
	w.path = append(w.path, normalized)

	for _, e := range dependencyEdges(reg, w.index) {
		if err := w.visit(e.key.Normalize(), reg); err != nil {
			return err
		}
	}

	w.path = w.path[:len(w.path)-1]
	delete(w.resolving, normalized)
	w.resolved[normalized] = struct{}{}
	return nil
}

func (w *graphWalker) chain(closing string) string {
	return strings.Join(append(append([]string{}, w.path...), closing), " -> ")
}
