package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFetch         = errors.New("fetch error")
	ErrExtraction    = errors.New("extraction error")
	ErrConversion    = errors.New("conversion error")
	ErrRender        = errors.New("render error")
	ErrVerification  = errors.New("verification error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrExternalTool  = errors.New("external tool error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// VerificationError names the checklist entry that is absent from a composite
// document.
type VerificationError struct {
	Missing  string
	Document string
}

func (e *VerificationError) Error() string {
	if e.Document == "" {
		return fmt.Sprintf("%s: expected string %q not found", ErrVerification, e.Missing)
	}
	return fmt.Sprintf("%s: expected string %q not found in %s", ErrVerification, e.Missing, e.Document)
}

// Is reports ErrVerification so callers can classify with errors.Is.
func (e *VerificationError) Is(target error) bool {
	return target == ErrVerification
}

// Kind returns a short label for the first marker found in err's chain.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFetch):
		return "fetch"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrConversion):
		return "conversion"
	case errors.Is(err, ErrRender):
		return "render"
	case errors.Is(err, ErrVerification):
		return "verification"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "internal"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
