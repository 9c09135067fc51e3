package di

import (
	"github.com/pixie-sh/errors-go"
	"github.com/pixie-sh/logger-go/logger"
)

// Builder accumulates registrations and produces validated containers. It is
// mutable during the registration phase only and is not safe for concurrent
// use; containers built from it are.
//
// Build takes a structural snapshot, so a builder can keep registering (and
// build again) without previously built containers observing the mutations.
type Builder struct {
	regs         map[string]*Registration
	index        map[string]ServiceKey
	introspector Introspector
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDefaultIntrospector sets the introspection provider consulted for
// parameter descriptors whenever a registration does not carry its own.
func WithDefaultIntrospector(in Introspector) BuilderOption {
	return func(b *Builder) {
		b.introspector = in
	}
}

// NewBuilder creates an empty Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		regs:  make(map[string]*Registration),
		index: make(map[string]ServiceKey),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

// Register adds a plain-factory registration under the given key. The key
// accepts the identifier shapes of AsKey. Explicit arguments are validated
// against the factory's declared parameters immediately; dependency edges are
// only checked at Build.
func (b *Builder) Register(key any, factory Factory, lifetime Lifetime, opts ...RegisterOption) error {
	k := AsKey(key)
	if k.IsZero() {
		return errors.New("registration key cannot be nil", InvalidRegistrationErrorCode)
	}

	if factory == nil {
		return errors.New("factory for key '%s' cannot be nil", k.Normalize(), InvalidRegistrationErrorCode)
	}

	collected := b.collectOpts(opts)
	params := collected.params
	if params == nil {
		params = b.introspect(k, collected)
	}

	if err := validateExplicitArgs(k, collected.args, params); err != nil {
		return err
	}

	return b.add(&Registration{
		key:      k,
		factory:  factory,
		lifetime: lifetime,
		explicit: collected.args,
		params:   params,
	})
}

// RegisterBlueprint adds a constructible-blueprint registration: the
// blueprint's auto-factory builds the instance and its derived parameter
// descriptors drive auto-wiring.
func (b *Builder) RegisterBlueprint(key any, bp *Blueprint, lifetime Lifetime, opts ...RegisterOption) error {
	k := AsKey(key)
	if k.IsZero() {
		return errors.New("registration key cannot be nil", InvalidRegistrationErrorCode)
	}

	if bp == nil {
		return errors.New("blueprint for key '%s' cannot be nil", k.Normalize(), InvalidRegistrationErrorCode)
	}

	collected := b.collectOpts(opts)

	return b.add(&Registration{
		key:      k,
		factory:  bp.factory(),
		lifetime: lifetime,
		explicit: collected.args,
		params:   bp.Params(),
	})
}

// Singleton registers a plain factory with the Singleton lifetime.
func (b *Builder) Singleton(key any, factory Factory, opts ...RegisterOption) error {
	return b.Register(key, factory, Singleton, opts...)
}

// Transient registers a plain factory with the Transient lifetime.
func (b *Builder) Transient(key any, factory Factory, opts ...RegisterOption) error {
	return b.Register(key, factory, Transient, opts...)
}

// Build snapshots the registry, injects the container self-registration,
// validates the full dependency graph and returns the container. The snapshot
// is structural: later Builder mutations never reach the returned container.
func (b *Builder) Build() (*Container, error) {
	regs := cloneRegistrations(b.regs)
	index := cloneIndex(b.index)

	c := newContainer(regs, index)
	registerSelf(c, c)

	if err := validateGraph(regs, index); err != nil {
		return nil, err
	}

	logger.Clone().With("registrations", len(regs)).Debug("di container built and validated")
	return c, nil
}

// RegisterType registers the blueprint of struct type T under its own type
// identity.
func RegisterType[T any](b *Builder, lifetime Lifetime, opts ...RegisterOption) error {
	return b.RegisterBlueprint(TypeOf[T](), BlueprintOf[T](), lifetime, opts...)
}

// SingletonType registers the blueprint of T as a singleton under its type
// identity.
func SingletonType[T any](b *Builder, opts ...RegisterOption) error {
	return RegisterType[T](b, Singleton, opts...)
}

// TransientType registers the blueprint of T as a transient under its type
// identity.
func TransientType[T any](b *Builder, opts ...RegisterOption) error {
	return RegisterType[T](b, Transient, opts...)
}

func (b *Builder) collectOpts(opts []RegisterOption) *registerOpts {
	collected := &registerOpts{}
	for _, opt := range opts {
		if opt != nil {
			opt(collected)
		}
	}

	return collected
}

func (b *Builder) introspect(key ServiceKey, collected *registerOpts) []Param {
	in := collected.introspector
	if in == nil {
		in = b.introspector
	}

	if in == nil {
		return nil
	}

	params, ok := in.Parameters(key)
	if !ok {
		return nil
	}

	return params
}

func (b *Builder) add(reg *Registration) error {
	normalized := reg.key.Normalize()
	if _, exists := b.regs[normalized]; exists {
		return errors.New("key '%s' already registered", normalized, DuplicateRegistrationErrorCode)
	}

	b.regs[normalized] = reg
	indexTypeKey(b.index, reg.key)
	return nil
}

// indexTypeKey records type-keyed registrations into the type-name index
// under both the bare declared name and the package-qualified rendering, so
// declared parameter types and manifest type names both find them.
func indexTypeKey(index map[string]ServiceKey, key ServiceKey) {
	if key.kind != kindType || key.typ == nil {
		return
	}

	if name := key.typ.Name(); name != "" {
		index[name] = key
	}

	index[key.typ.String()] = key
}

// validateExplicitArgs enforces the plain-factory registration rules: every
// explicit argument must name a declared parameter, and supplying more than
// one argument with no Dependency marker among them is rejected as a likely
// authoring mistake (normal usage injects at least one collaborator when
// passing several named values). The guard knowingly rejects legitimate
// multi-constant registrations; register those through separate keyed
// factories instead.
func validateExplicitArgs(key ServiceKey, explicit map[string]any, params []Param) error {
	if len(explicit) == 0 {
		return nil
	}

	declared := make(map[string]struct{}, len(params))
	for _, param := range params {
		declared[param.Name] = struct{}{}
	}

	markers := 0
	for name, value := range explicit {
		if _, ok := declared[name]; !ok {
			return errors.New("explicit argument '%s' for key '%s' does not match any declared parameter", name, key.Normalize(), UnknownArgumentErrorCode)
		}

		if _, marker := isDependency(value); marker {
			markers++
		}
	}

	if len(explicit) > 1 && markers == 0 {
		return errors.New("key '%s' supplies %d constant arguments with no dependency marker", key.Normalize(), len(explicit), AmbiguousConstantsErrorCode)
	}

	return nil
}

func cloneRegistrations(regs map[string]*Registration) map[string]*Registration {
	out := make(map[string]*Registration, len(regs))
	for normalized, reg := range regs {
		out[normalized] = reg.clone()
	}

	return out
}

func cloneIndex(index map[string]ServiceKey) map[string]ServiceKey {
	out := make(map[string]ServiceKey, len(index))
	for name, key := range index {
		out[name] = key
	}

	return out
}
