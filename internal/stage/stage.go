package stage

import (
	"fmt"
	"strings"

	"quire/internal/services"
)

// Name identifies one pipeline step.
type Name string

const (
	Download   Name = "download"
	Extract    Name = "extract"
	FixMarkup  Name = "fixmarkup"
	Convert    Name = "convert"
	FixTypeset Name = "fixtypeset"
	Aggregate  Name = "aggregate"
	Render     Name = "render"
	Verify     Name = "verify"
)

var ordered = []Name{Download, Extract, FixMarkup, Convert, FixTypeset, Aggregate, Render, Verify}

// Ordered lists every stage in execution order.
func Ordered() []Name {
	return append([]Name(nil), ordered...)
}

// Parse resolves a stage name, case-insensitively.
func Parse(value string) (Name, error) {
	v := Name(strings.ToLower(strings.TrimSpace(value)))
	for _, n := range ordered {
		if n == v {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", value)
}

// Index is the stage position in execution order, or -1.
func (n Name) Index() int {
	for i, candidate := range ordered {
		if candidate == n {
			return i
		}
	}
	return -1
}

// PerChapter reports whether the stage runs once per chapter.
func (n Name) PerChapter() bool {
	i := n.Index()
	return i >= 0 && i < Aggregate.Index()
}

// Marker returns the error marker used to classify failures of this stage.
func (n Name) Marker() error {
	switch n {
	case Download:
		return services.ErrFetch
	case Extract, FixMarkup:
		return services.ErrExtraction
	case Convert, FixTypeset:
		return services.ErrConversion
	case Aggregate, Render:
		return services.ErrRender
	case Verify:
		return services.ErrVerification
	default:
		return services.ErrExternalTool
	}
}

// Fail wraps err with the stage marker and a subject naming the stage and,
// for per-chapter stages, the chapter.
func Fail(n Name, chapter int, operation string, err error) error {
	subject := string(n)
	if chapter > 0 {
		subject = fmt.Sprintf("%s chapter %d", n, chapter)
	}
	return services.Wrap(n.Marker(), subject, operation, "", err)
}
