package di

// Introspector supplies ordered parameter descriptors for registrations that
// do not carry them explicitly. It stands in for whatever metadata mechanism
// the host environment has: struct tags, a JSON manifest (see Manifest), or
// hand-written descriptor tables.
type Introspector interface {
	// Parameters returns the ordered declared parameters for the given
	// registration key, and whether the introspector knows the key at all.
	Parameters(key ServiceKey) ([]Param, bool)
}

// edge is one dependency of a registration: the parameter it feeds and the
// key it resolves through.
type edge struct {
	name string
	key  ServiceKey
}

// dependencyEdges computes the ordered dependency edges of a registration,
// merging explicit arguments with the declared parameter descriptors.
//
// Per declared parameter, in priority order:
//  1. an explicit Dependency marker wins;
//  2. an explicit literal value means the parameter is a constant, not an
//     edge; it is excluded here and supplied to the factory at resolution;
//  3. a declared type is looked up in the type-name index, falling back to
//     the declared type itself as the key;
//  4. with no declared type, the parameter name itself is the key.
//
// Unresolved keys are not an error here; they surface as missing
// dependencies during validation or resolution.
func dependencyEdges(reg *Registration, index map[string]ServiceKey) []edge {
	edges := make([]edge, 0, len(reg.params))

	for _, param := range reg.params {
		if value, ok := reg.explicit[param.Name]; ok {
			if dep, marker := isDependency(value); marker {
				edges = append(edges, edge{name: param.Name, key: dep.Key()})
			}

			continue
		}

		if !param.Type.IsZero() {
			edges = append(edges, edge{name: param.Name, key: lookupDeclaredType(param.Type, index)})
			continue
		}

		edges = append(edges, edge{name: param.Name, key: StringKey(param.Name)})
	}

	return edges
}

// lookupDeclaredType maps a declared parameter type to a registered key via
// the type-name index, falling back to the declared type itself so that
// externally provided keys not registered through auto-wiring stay reachable.
func lookupDeclaredType(declared ServiceKey, index map[string]ServiceKey) ServiceKey {
	if mapped, ok := index[declared.typeName()]; ok {
		return mapped
	}

	return declared
}
