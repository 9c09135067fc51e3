package di

import "github.com/pixie-sh/errors-go"

// TestContainer is a container derived from another one with selected
// registrations replaced, for isolated testing. Derivation copies the
// registry structurally and starts from an empty resolution cache, so
// overriding a singleton never disturbs instances already cached by the base
// container, and vice versa.
//
// Overrides are replacement, not addition: the target key must exist in the
// base registry. Replaced edges are not re-validated eagerly; a replacement
// factory pointing at unregistered keys surfaces as an unknown dependency at
// resolution time.
type TestContainer struct {
	*Container
}

func deriveTestContainer(base *Container) *TestContainer {
	tc := &TestContainer{
		Container: newContainer(cloneRegistrations(base.regs), cloneIndex(base.index)),
	}

	registerSelf(tc.Container, tc)
	return tc
}

// OverrideWith derives a further TestContainer with the registration for key
// replaced by the given factory. Explicit arguments are validated against the
// new factory's declared parameters under the same rules as registration.
// Neither this container nor any earlier one in the chain is mutated.
func (t *TestContainer) OverrideWith(key any, factory Factory, lifetime Lifetime, opts ...RegisterOption) (*TestContainer, error) {
	return t.override(key, factory, lifetime, opts)
}

// OverrideSingletonWith is OverrideWith with the Singleton lifetime.
func (t *TestContainer) OverrideSingletonWith(key any, factory Factory, opts ...RegisterOption) (*TestContainer, error) {
	return t.override(key, factory, Singleton, opts)
}

// OverrideTransientWith is OverrideWith with the Transient lifetime.
func (t *TestContainer) OverrideTransientWith(key any, factory Factory, opts ...RegisterOption) (*TestContainer, error) {
	return t.override(key, factory, Transient, opts)
}

func (t *TestContainer) override(key any, factory Factory, lifetime Lifetime, opts []RegisterOption) (*TestContainer, error) {
	reg, err := t.overrideRegistration(key, factory, lifetime, opts)
	if err != nil {
		return nil, err
	}

	derived := deriveTestContainer(t.Container)
	derived.regs[reg.key.Normalize()] = reg
	indexTypeKey(derived.index, reg.key)
	return derived, nil
}

func (t *TestContainer) overrideRegistration(key any, factory Factory, lifetime Lifetime, opts []RegisterOption) (*Registration, error) {
	k := AsKey(key)
	normalized := k.Normalize()

	if _, exists := t.regs[normalized]; !exists {
		return nil, errors.New("cannot override key '%s': never registered", normalized, UnknownOverrideTargetErrorCode)
	}

	collected := &registerOpts{}
	for _, opt := range opts {
		if opt != nil {
			opt(collected)
		}
	}

	if collected.params == nil && collected.introspector != nil {
		if params, ok := collected.introspector.Parameters(k); ok {
			collected.params = params
		}
	}

	if err := validateExplicitArgs(k, collected.args, collected.params); err != nil {
		return nil, err
	}

	return &Registration{
		key:      k,
		factory:  factory,
		lifetime: lifetime,
		explicit: collected.args,
		params:   collected.params,
	}, nil
}
