package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-pagebuilder/internal/builderr"
)

// stage names the point in a command run where an error surfaced.
type stage int

const (
	stageValidate stage = iota
	stageRun
)

var interruptCodes = map[error]string{
	context.Canceled:         "COMMAND_CANCELED",
	context.DeadlineExceeded: "COMMAND_TIMEOUT",
}

// classify tags err with a go-errors category and text code. Errors already
// carrying a category, such as the builderr taxonomy, pass through untouched.
func classify(at stage, err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	if at == stageValidate {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "command message rejected").
			WithTextCode("COMMAND_INVALID")
	}
	for cause, code := range interruptCodes {
		if errors.Is(err, cause) {
			return goerrors.Wrap(err, goerrors.CategoryCommand, "command interrupted").WithTextCode(code)
		}
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command failed").WithTextCode("COMMAND_FAILED")
}

func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// userFacing reports whether err stems from site content or configuration
// rather than from the runtime, so reporters can log it at warn level.
func userFacing(err error) bool {
	return goerrors.IsCategory(err, builderr.CategoryConfiguration) ||
		goerrors.IsCategory(err, builderr.CategoryMissingTemplate) ||
		goerrors.IsCategory(err, goerrors.CategoryValidation)
}
