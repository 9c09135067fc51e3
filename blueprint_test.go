package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedBlueprint struct {
	Conn    string `di:"dsn"`
	Level   string `json:"log_level"`
	Retries int
	Skipped string `di:"-"`
	hidden  bool
}

func TestBlueprintOfDerivesParams(t *testing.T) {
	bp := BlueprintOf[taggedBlueprint]()
	params := bp.Params()

	require.Len(t, params, 3)
	assert.Equal(t, "dsn", params[0].Name)
	assert.Equal(t, "log_level", params[1].Name)
	assert.Equal(t, "retries", params[2].Name)
	assert.Equal(t, "string", params[0].Type.Normalize())
	assert.Equal(t, "int", params[2].Type.Normalize())
}

func TestBlueprintOfPanicsOnNonStruct(t *testing.T) {
	assert.Panics(t, func() {
		BlueprintOf[int]()
	})
}

func TestBlueprintFactoryConstructsInstance(t *testing.T) {
	bp := BlueprintOf[taggedBlueprint]()

	instance, err := bp.factory()(Args{
		"dsn":       "postgres://localhost",
		"log_level": "debug",
		"retries":   3,
	})
	require.NoError(t, err)

	built, ok := instance.(*taggedBlueprint)
	require.True(t, ok)
	assert.Equal(t, "postgres://localhost", built.Conn)
	assert.Equal(t, "debug", built.Level)
	assert.Equal(t, 3, built.Retries)
	assert.False(t, built.hidden)
}

func TestBlueprintFactoryKeepsPointerIdentity(t *testing.T) {
	type collaborator struct{ n int }
	type holder struct {
		Dep *collaborator `di:"dep"`
	}

	shared := &collaborator{n: 42}
	instance, err := BlueprintOf[holder]().factory()(Args{"dep": shared})
	require.NoError(t, err)

	built := instance.(*holder)
	assert.Same(t, shared, built.Dep)
}

func TestBlueprintFactoryConvertsCompatibleValues(t *testing.T) {
	type sized struct {
		Count int64 `di:"count"`
	}

	instance, err := BlueprintOf[sized]().factory()(Args{"count": 7})
	require.NoError(t, err)
	assert.Equal(t, int64(7), instance.(*sized).Count)
}

func TestBlueprintFactoryRejectsIncompatibleValues(t *testing.T) {
	type sized struct {
		Count int `di:"count"`
	}

	_, err := BlueprintOf[sized]().factory()(Args{"count": struct{ X string }{"nope"}})
	assert.Error(t, err)
}
