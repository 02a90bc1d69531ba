package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns either wraps one of these or
// is an internal failure.
var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication failed")
	ErrForbidden      = errors.New("permission denied")
)

var (
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrRecipeNotFound     = fmt.Errorf("%w: recipe not found", ErrNotFound)
	ErrIngredientNotFound = fmt.Errorf("%w: ingredient not found", ErrNotFound)
	ErrTagNotFound        = fmt.Errorf("%w: tag not found", ErrNotFound)

	ErrInvalidAmount       = fmt.Errorf("%w: amount must be ≥ 1", ErrValidation)
	ErrDuplicateIngredient = fmt.Errorf("%w: ingredient already added", ErrValidation)
	ErrImageRequired       = fmt.Errorf("%w: image is required", ErrValidation)
	ErrInvalidImage        = fmt.Errorf("%w: invalid image", ErrValidation)
	ErrWrongPassword       = fmt.Errorf("%w: current password is incorrect", ErrValidation)

	ErrUserExists       = fmt.Errorf("%w: a user with this email or username already exists", ErrConflict)
	ErrAlreadyFollowing = fmt.Errorf("%w: already following", ErrConflict)
	ErrSelfFollow       = fmt.Errorf("%w: cannot follow yourself", ErrConflict)
	ErrAlreadyAdded     = fmt.Errorf("%w: already added", ErrConflict)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	ErrInvalidToken       = fmt.Errorf("%w: invalid or expired token", ErrAuthentication)

	ErrNotAuthor = fmt.Errorf("%w: only the author can change this recipe", ErrForbidden)
)

// ErrInternalServer hides storage failures from clients
var ErrInternalServer = errors.New("internal server error")
