package di

import "github.com/pixie-sh/errors-go"

var (
	DIErrorCodeBase = 74000

	DuplicateRegistrationErrorCode   = errors.NewErrorCode("DuplicateRegistrationErrorCode", DIErrorCodeBase+401)
	UnknownArgumentErrorCode         = errors.NewErrorCode("UnknownArgumentErrorCode", DIErrorCodeBase+402)
	AmbiguousConstantsErrorCode      = errors.NewErrorCode("AmbiguousConstantsErrorCode", DIErrorCodeBase+403)
	MissingDependencyErrorCode       = errors.NewErrorCode("MissingDependencyErrorCode", DIErrorCodeBase+404)
	CyclicDependencyErrorCode        = errors.NewErrorCode("CyclicDependencyErrorCode", DIErrorCodeBase+405)
	UnknownOverrideTargetErrorCode   = errors.NewErrorCode("UnknownOverrideTargetErrorCode", DIErrorCodeBase+406)
	UnknownDependencyErrorCode       = errors.NewErrorCode("UnknownDependencyErrorCode", DIErrorCodeBase+407)
	InvalidRegistrationErrorCode     = errors.NewErrorCode("InvalidRegistrationErrorCode", DIErrorCodeBase+408)
	InvalidManifestErrorCode         = errors.NewErrorCode("InvalidManifestErrorCode", DIErrorCodeBase+409)
	InvalidBlueprintErrorCode        = errors.NewErrorCode("InvalidBlueprintErrorCode", DIErrorCodeBase+410)
	ErrorCreatingDependencyErrorCode = errors.NewErrorCode("ErrorCreatingDependencyErrorCode", DIErrorCodeBase+411)
	DependencyTypeMismatchErrorCode  = errors.NewErrorCode("DependencyTypeMismatchErrorCode", DIErrorCodeBase+412)
)
