// Package builderr holds the error taxonomy raised while assembling documents.
package builderr

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// CategoryConfiguration marks errors caused by site or page configuration
	// that no retry can fix, such as a resource without a derivable URL.
	CategoryConfiguration = goerrors.Category("pagebuilder.configuration")
	// CategoryMissingTemplate marks errors raised when a partial template
	// cannot be located or read.
	CategoryMissingTemplate = goerrors.Category("pagebuilder.missing_template")
)

const (
	CodeResourceURLUnresolved    = "RESOURCE_URL_UNRESOLVED"
	CodePartialFieldsInvalid     = "PARTIAL_FIELDS_INVALID"
	CodePartialTemplateMissing   = "PARTIAL_TEMPLATE_MISSING"
	CodeInlineTemplateUnreadable = "INLINE_TEMPLATE_UNREADABLE"
)

var (
	// ErrResourceURLUnresolved is wrapped when a resource produces no URL.
	ErrResourceURLUnresolved = errors.New("pagebuilder: resource url could not be resolved")
	// ErrPartialFieldsInvalid is wrapped when descriptor fields fail schema validation.
	ErrPartialFieldsInvalid = errors.New("pagebuilder: partial fields invalid")
	// ErrTemplateMissing is wrapped when a named partial template does not exist.
	ErrTemplateMissing = errors.New("pagebuilder: partial template missing")
	// ErrInlineTemplateUnreadable is wrapped when an inline template file cannot be read.
	ErrInlineTemplateUnreadable = errors.New("pagebuilder: inline template unreadable")
)

// UnresolvedResource reports a resource that yielded no URL.
func UnresolvedResource(resource string) error {
	return goerrors.Wrap(
		fmt.Errorf("%w: %s", ErrResourceURLUnresolved, resource),
		CategoryConfiguration,
		fmt.Sprintf("resource %q has no url", resource),
	).WithTextCode(CodeResourceURLUnresolved)
}

// InvalidPartialFields reports fields that failed the partial's schema.
func InvalidPartialFields(partial string, cause error) error {
	return goerrors.Wrap(
		fmt.Errorf("%w: %s: %w", ErrPartialFieldsInvalid, partial, cause),
		CategoryConfiguration,
		fmt.Sprintf("partial %q fields failed validation", partial),
	).WithTextCode(CodePartialFieldsInvalid)
}

// MissingTemplate reports a named partial whose template is not available.
func MissingTemplate(partial, path string, cause error) error {
	inner := fmt.Errorf("%w: %s (%s)", ErrTemplateMissing, partial, path)
	if cause != nil {
		inner = fmt.Errorf("%w: %w", inner, cause)
	}
	return goerrors.Wrap(
		inner,
		CategoryMissingTemplate,
		fmt.Sprintf("template %q for partial %q not found", path, partial),
	).WithTextCode(CodePartialTemplateMissing)
}

// UnreadableInlineTemplate reports an inline template file that could not be read.
func UnreadableInlineTemplate(partial, path string, cause error) error {
	return goerrors.Wrap(
		fmt.Errorf("%w: %s (%s): %w", ErrInlineTemplateUnreadable, partial, path, cause),
		CategoryMissingTemplate,
		fmt.Sprintf("inline template %q for partial %q unreadable", path, partial),
	).WithTextCode(CodeInlineTemplateUnreadable)
}

// IsConfiguration reports whether err belongs to the configuration category.
func IsConfiguration(err error) bool {
	return err != nil && goerrors.IsCategory(err, CategoryConfiguration)
}

// IsMissingTemplate reports whether err belongs to the missing template category.
func IsMissingTemplate(err error) bool {
	return err != nil && goerrors.IsCategory(err, CategoryMissingTemplate)
}

// TextCode returns the go-errors text code attached to err, if any.
func TextCode(err error) string {
	var typed *goerrors.Error
	if errors.As(err, &typed) && typed != nil {
		return typed.TextCode
	}
	return ""
}
