package di

import (
	"reflect"
	"sync"

	"github.com/pixie-sh/errors-go"
	"github.com/pixie-sh/logger-go/logger"
)

// SelfKey is the key under which every container resolves itself, injected as
// a singleton registration at build and override-derivation time.
var SelfKey = TypeOf[Container]()

// Container is a validated, resolvable snapshot of a registry. Its
// registrations are immutable; only the singleton cache mutates, guarded by
// a single mutex so concurrent first-time resolution of a singleton still
// constructs it at most once.
//
// Factories run with the container lock held and must not call back into the
// container; their collaborators arrive pre-resolved in the argument mapping.
type Container struct {
	mu    sync.Mutex
	regs  map[string]*Registration
	index map[string]ServiceKey
	cache map[string]any
}

func newContainer(regs map[string]*Registration, index map[string]ServiceKey) *Container {
	return &Container{
		regs:  regs,
		index: index,
		cache: make(map[string]any),
	}
}

// registerSelf installs the self-referential singleton so resolving SelfKey
// yields the container itself. self is what the self-registration resolves
// to; for a TestContainer derivation it points at the derived container.
func registerSelf(c *Container, self any) {
	normalized := SelfKey.Normalize()
	c.regs[normalized] = &Registration{
		key:      SelfKey,
		lifetime: Singleton,
		factory: func(Args) (any, error) {
			return self, nil
		},
	}

	indexTypeKey(c.index, SelfKey)
}

// Resolve produces the instance for the given key: the cached instance for
// already-resolved singletons, a freshly constructed one otherwise. All
// transitive dependencies are resolved depth-first before the factory runs.
func (c *Container) Resolve(key any) (any, error) {
	k := AsKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.resolveLocked(k.Normalize())
}

// resolveLocked is the recursive resolution engine. Cycles are excluded at
// build time, so no re-entrancy check happens here; a cyclic registry built
// out-of-band recurses until the stack gives out, which is acceptable for a
// state that validation makes unreachable.
func (c *Container) resolveLocked(normalized string) (any, error) {
	if instance, cached := c.cache[normalized]; cached {
		return instance, nil
	}

	reg, ok := c.regs[normalized]
	if !ok {
		return nil, errors.New("no registration for key '%s'", normalized, UnknownDependencyErrorCode)
	}

	args := reg.constants()
	for _, e := range dependencyEdges(reg, c.index) {
		resolved, err := c.resolveLocked(e.key.Normalize())
		if err != nil {
			return nil, err
		}

		args[e.name] = resolved
	}

	instance, err := reg.factory(args)
	if err != nil {
		return nil, errors.Wrap(err, "factory for key '%s' failed", normalized, ErrorCreatingDependencyErrorCode)
	}

	if reg.lifetime == Singleton {
		c.cache[normalized] = instance
	}

	logger.Clone().With("key", normalized).With("lifetime", reg.lifetime.String()).Debug("di resolved instance")
	return instance, nil
}

// RegisteredKeys returns the distinct original (non-normalized) keys of every
// registration, including the container self-registration.
func (c *Container) RegisteredKeys() []ServiceKey {
	keys := make([]ServiceKey, 0, len(c.regs))
	for _, reg := range c.regs {
		keys = append(keys, reg.key)
	}

	return keys
}

// Graph returns the dependency edge set of the registry: normalized key to
// the normalized keys it depends on, in declared parameter order.
func (c *Container) Graph() map[string][]string {
	graph := make(map[string][]string, len(c.regs))
	for normalized, reg := range c.regs {
		edges := dependencyEdges(reg, c.index)
		deps := make([]string, len(edges))
		for i, e := range edges {
			deps[i] = e.key.Normalize()
		}

		graph[normalized] = deps
	}

	return graph
}

// DeriveTestContainer derives a TestContainer from this container; see
// TestContainer for the override semantics.
func (c *Container) DeriveTestContainer() *TestContainer {
	return deriveTestContainer(c)
}

// Resolver is the resolution surface shared by Container and TestContainer.
type Resolver interface {
	Resolve(key any) (any, error)
}

// Resolve is the typed resolution helper:
//
//	db, err := di.Resolve[*Database](c, di.TypeOf[Database]())
//
// The assertion tolerates pointer/value mismatches between the stored
// instance and T.
func Resolve[T any](c Resolver, key any) (T, error) {
	var zero T

	instance, err := c.Resolve(key)
	if err != nil {
		return zero, err
	}

	typed, ok := SafeTypeAssert[T](instance)
	if !ok {
		return zero, errors.New("instance for key '%s' is not of expected type '%s'", AsKey(key).Normalize(), reflect.TypeOf((*T)(nil)).Elem().String(), DependencyTypeMismatchErrorCode)
	}

	return typed, nil
}

// MustResolve is Resolve, panicking on failure.
func MustResolve[T any](c Resolver, key any) T {
	typed, err := Resolve[T](c, key)
	errors.Must(err)
	return typed
}

// SafeTypeAssert attempts to assert an unknown instance to T, additionally
// bridging pointer/non-pointer mismatches in either direction.
func SafeTypeAssert[T any](unknownInstance any) (T, bool) {
	typedInstance, ok := unknownInstance.(T)
	if ok {
		return typedInstance, true
	}

	targetType := reflect.TypeOf((*T)(nil)).Elem()
	sourceType := reflect.TypeOf(unknownInstance)
	if sourceType == nil {
		return typedInstance, false
	}

	if sourceType.Kind() == reflect.Ptr && targetType.Kind() != reflect.Ptr {
		if sourceType.Elem() == targetType {
			elemValue := reflect.ValueOf(unknownInstance).Elem().Interface()
			typedInstance, ok = elemValue.(T)
			return typedInstance, ok
		}
	}

	if targetType.Kind() == reflect.Ptr && sourceType.Kind() != reflect.Ptr {
		if targetType.Elem() == sourceType {
			ptrValue := reflect.New(sourceType)
			ptrValue.Elem().Set(reflect.ValueOf(unknownInstance))
			typedInstance, ok = ptrValue.Interface().(T)
			return typedInstance, ok
		}
	}

	return typedInstance, false
}
