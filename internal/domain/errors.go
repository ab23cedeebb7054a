package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the election lifecycle wraps exactly
// one of them, so callers can classify with errors.Is.
var (
	ErrValidation   = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrNotOwner     = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid election state")
)

var (
	ErrElectionNotFound = fmt.Errorf("election %w", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	ErrOptionNotFound   = fmt.Errorf("option %w", ErrNotFound)

	ErrNotElectionOwner = fmt.Errorf("%w: election belongs to another admin", ErrNotOwner)

	ErrElectionNotDraft    = fmt.Errorf("%w: only a draft election can be launched", ErrInvalidState)
	ErrElectionNotLaunched = fmt.Errorf("%w: only a launched election can be ended", ErrInvalidState)
	ErrBallotLocked        = fmt.Errorf("%w: questions and options can only change while the election is a draft", ErrInvalidState)

	ErrElectionNameRequired = fmt.Errorf("%w: election name is required", ErrValidation)
	ErrElectionNameTooLong  = fmt.Errorf("%w: election name is too long", ErrValidation)
	ErrQuestionTitleInvalid = fmt.Errorf("%w: question title must be 1 to %d characters", ErrValidation, MaxQuestionTitleLength)
	ErrDescriptionTooLong   = fmt.Errorf("%w: description is too long", ErrValidation)
	ErrOptionValueInvalid   = fmt.Errorf("%w: option must be 1 to %d characters", ErrValidation, MaxOptionValueLength)
)
