package di

// Dependency marks a named argument as "resolve this through the container"
// rather than "pass this literal value". It is an immutable value object;
// only the wrapped key matters, identity of the marker itself never does.
type Dependency struct {
	key ServiceKey
}

// Dep wraps a key into a Dependency marker. The key accepts the same
// heterogeneous identifiers as AsKey.
func Dep(key any) Dependency {
	return Dependency{key: AsKey(key)}
}

// Key returns the wrapped ServiceKey.
func (d Dependency) Key() ServiceKey {
	return d.key
}

func isDependency(v any) (Dependency, bool) {
	dep, ok := v.(Dependency)
	return dep, ok
}
