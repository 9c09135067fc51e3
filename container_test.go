package di

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pixie-sh/errors-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	X int    `di:"x"`
	Y string `di:"y"`
}

type gadget struct{ n int }

type trinket struct{ n int }

func TestResolveExplicitMarkers(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Singleton("number", constant(1)))
	require.NoError(t, b.Singleton("y", constant("abacaba")))
	require.NoError(t, SingletonType[widget](b,
		WithArg("x", Dep("number")),
		WithArg("y", Dep("y"))))

	c, err := b.Build()
	require.NoError(t, err)

	w, err := Resolve[*widget](c, TypeOf[widget]())
	require.NoError(t, err)
	assert.Equal(t, 1, w.X)
	assert.Equal(t, "abacaba", w.Y)
}

func TestLifetimes(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Transient(TypeOf[gadget](), func(Args) (any, error) { return &gadget{}, nil }))
	require.NoError(t, b.Singleton(TypeOf[trinket](), func(Args) (any, error) { return &trinket{}, nil }))

	c, err := b.Build()
	require.NoError(t, err)

	t.Run("transient resolves to distinct instances", func(t *testing.T) {
		first := MustResolve[*gadget](c, TypeOf[gadget]())
		second := MustResolve[*gadget](c, TypeOf[gadget]())
		assert.NotSame(t, first, second)
	})

	t.Run("singleton resolves to the same instance", func(t *testing.T) {
		first := MustResolve[*trinket](c, TypeOf[trinket]())
		second := MustResolve[*trinket](c, TypeOf[trinket]())
		assert.Same(t, first, second)
	})
}

func TestResolveUnknownKey(t *testing.T) {
	b := NewBuilder()
	c, err := b.Build()
	require.NoError(t, err)

	_, err = c.Resolve("ghost")
	require.Error(t, err)
	_, ok := errors.Has(err, UnknownDependencyErrorCode)
	assert.True(t, ok)
}

func TestContainerResolvesItself(t *testing.T) {
	b := NewBuilder()
	c, err := b.Build()
	require.NoError(t, err)

	self, err := c.Resolve(SelfKey)
	require.NoError(t, err)
	assert.Same(t, c, self)

	again, err := c.Resolve(SelfKey)
	require.NoError(t, err)
	assert.Same(t, self, again)
}

func TestContainerInjectsItselfIntoFactories(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Singleton("holder", func(args Args) (any, error) {
		return args["container"], nil
	}, WithParams(Param{Name: "container", Type: SelfKey})))

	c, err := b.Build()
	require.NoError(t, err)

	held, err := c.Resolve("holder")
	require.NoError(t, err)
	assert.Same(t, c, held)
}

// One factory, two keys, independently configured constants. The ambiguity
// guard forbids two bare constants on one registration, so each logger takes
// its name as the single constant and pulls the level through a marker.
func TestSharedFactoryWithDistinctConstants(t *testing.T) {
	type testLogger struct {
		name  string
		level string
	}

	newLogger := func(args Args) (any, error) {
		return &testLogger{
			name:  args["name"].(string),
			level: args["level"].(string),
		}, nil
	}

	loggerParams := WithParams(Param{Name: "name"}, Param{Name: "level"})

	b := NewBuilder()
	require.NoError(t, b.Singleton("logLevel", constant("debug")))
	require.NoError(t, b.Singleton("appLogger", newLogger, loggerParams,
		WithArgs(Args{"name": "app", "level": Dep("logLevel")})))
	require.NoError(t, b.Singleton("dbLogger", newLogger, loggerParams,
		WithArgs(Args{"name": "db", "level": Dep("logLevel")})))

	c, err := b.Build()
	require.NoError(t, err)

	appLogger := MustResolve[*testLogger](c, "appLogger")
	dbLogger := MustResolve[*testLogger](c, "dbLogger")

	assert.NotSame(t, appLogger, dbLogger)
	assert.Equal(t, "app", appLogger.name)
	assert.Equal(t, "db", dbLogger.name)
	assert.Equal(t, "debug", appLogger.level)
	assert.Equal(t, "debug", dbLogger.level)
}

func TestResolveFactoryErrorPropagates(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Singleton("flaky", func(Args) (any, error) {
		return nil, errors.New("boom")
	}))

	c, err := b.Build()
	require.NoError(t, err)

	_, err = c.Resolve("flaky")
	require.Error(t, err)
	_, ok := errors.Has(err, ErrorCreatingDependencyErrorCode)
	assert.True(t, ok)
}

func TestResolveTypeMismatch(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Singleton("config", constant("a string")))

	c, err := b.Build()
	require.NoError(t, err)

	_, err = Resolve[int](c, "config")
	require.Error(t, err)
	_, ok := errors.Has(err, DependencyTypeMismatchErrorCode)
	assert.True(t, ok)
}

func TestConcurrentSingletonResolutionConstructsOnce(t *testing.T) {
	var constructions atomic.Int32

	b := NewBuilder()
	require.NoError(t, b.Singleton("shared", func(Args) (any, error) {
		constructions.Add(1)
		return &trinket{}, nil
	}))

	c, err := b.Build()
	require.NoError(t, err)

	const goroutines = 64
	instances := make([]*trinket, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			instances[slot] = MustResolve[*trinket](c, "shared")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), constructions.Load())
	for _, instance := range instances {
		assert.Same(t, instances[0], instance)
	}
}

func TestSafeTypeAssert(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		v, ok := SafeTypeAssert[int](3)
		assert.True(t, ok)
		assert.Equal(t, 3, v)
	})

	t.Run("pointer to value", func(t *testing.T) {
		v, ok := SafeTypeAssert[trinket](&trinket{n: 2})
		assert.True(t, ok)
		assert.Equal(t, 2, v.n)
	})

	t.Run("value to pointer", func(t *testing.T) {
		v, ok := SafeTypeAssert[*trinket](trinket{n: 5})
		assert.True(t, ok)
		assert.Equal(t, 5, v.n)
	})

	t.Run("mismatch", func(t *testing.T) {
		_, ok := SafeTypeAssert[*gadget](&trinket{})
		assert.False(t, ok)
	})

	t.Run("nil source", func(t *testing.T) {
		_, ok := SafeTypeAssert[*trinket](nil)
		assert.False(t, ok)
	})
}
