package di

// Lifetime controls how many instances of a registration a container creates.
type Lifetime int

const (
	// Singleton caches the instance on first resolution and reuses it for
	// every subsequent resolution through the same container.
	Singleton Lifetime = iota

	// Transient constructs a fresh instance on every resolution.
	Transient
)

// String returns the human-readable name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// Args carries the named arguments handed to a factory: explicit constants
// merged with recursively resolved dependencies.
type Args map[string]any

// Factory produces an instance from its named arguments.
type Factory func(args Args) (any, error)

// Param describes one declared parameter of a factory or blueprint: its name
// and, optionally, its declared type expressed as a key. Parameter descriptors
// are attached at registration time, either explicitly via WithParams, derived
// from a blueprint, or supplied by an Introspector.
type Param struct {
	Name string
	Type ServiceKey
}

// Registration is the stored description of how to produce a value for a key.
// It is created once at registration time and never mutated afterwards; the
// registry holding it owns it exclusively.
type Registration struct {
	key      ServiceKey
	factory  Factory
	lifetime Lifetime
	explicit map[string]any
	params   []Param
}

// Key returns the original (non-normalized) key of the registration.
func (r *Registration) Key() ServiceKey {
	return r.key
}

// Lifetime returns the registration's lifetime policy.
func (r *Registration) Lifetime() Lifetime {
	return r.lifetime
}

// clone takes a structural copy so derived registries never alias the maps
// and slices of a prior registry.
func (r *Registration) clone() *Registration {
	out := &Registration{
		key:      r.key,
		factory:  r.factory,
		lifetime: r.lifetime,
	}

	if r.explicit != nil {
		out.explicit = make(map[string]any, len(r.explicit))
		for name, value := range r.explicit {
			out.explicit[name] = value
		}
	}

	if r.params != nil {
		out.params = make([]Param, len(r.params))
		copy(out.params, r.params)
	}

	return out
}

// constants returns the explicit arguments that are literal values rather
// than dependency markers.
func (r *Registration) constants() Args {
	args := make(Args, len(r.explicit))
	for name, value := range r.explicit {
		if _, marker := isDependency(value); !marker {
			args[name] = value
		}
	}

	return args
}

// RegisterOption customizes a single registration.
type RegisterOption func(*registerOpts)

type registerOpts struct {
	args         map[string]any
	params       []Param
	introspector Introspector
}

// WithArgs supplies the full explicit argument mapping for the registration:
// literal constants and Dependency markers, keyed by parameter name.
func WithArgs(args Args) RegisterOption {
	return func(opts *registerOpts) {
		if opts.args == nil {
			opts.args = make(map[string]any, len(args))
		}

		for name, value := range args {
			opts.args[name] = value
		}
	}
}

// WithArg supplies one explicit argument: a literal constant or a Dependency
// marker for the named parameter.
func WithArg(name string, value any) RegisterOption {
	return func(opts *registerOpts) {
		if opts.args == nil {
			opts.args = make(map[string]any, 1)
		}

		opts.args[name] = value
	}
}

// WithParams attaches the ordered parameter descriptors of the factory. It
// takes precedence over any Introspector configured on the builder.
func WithParams(params ...Param) RegisterOption {
	return func(opts *registerOpts) {
		opts.params = params
	}
}

// WithIntrospector overrides, for this registration only, the introspection
// provider consulted for parameter descriptors.
func WithIntrospector(in Introspector) RegisterOption {
	return func(opts *registerOpts) {
		opts.introspector = in
	}
}
