package config

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/lifesprint/sensai/internal/entity"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError is one field-level schema violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Join collapses validation errors into a single error value.
func Join(errs []ValidationError) error {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}

// Validate checks settings against the embedded CUE schema.
// Returns all violations found, not just the first.
func Validate(s entity.Settings) []ValidationError {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return []ValidationError{{Message: fmt.Sprintf("schema compile failed: %v", err)}}
	}
	definition := schema.LookupPath(cue.ParsePath("#Settings"))
	if err := definition.Err(); err != nil {
		return []ValidationError{{Message: fmt.Sprintf("schema missing #Settings: %v", err)}}
	}

	// Encode uses the struct's json tags, matching the schema field names.
	value := ctx.Encode(s)
	if err := value.Err(); err != nil {
		return []ValidationError{{Message: fmt.Sprintf("encode settings: %v", err)}}
	}

	unified := definition.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var out []ValidationError
		for _, e := range cueerrors.Errors(err) {
			field := strings.Join(e.Path(), ".")
			field = strings.TrimPrefix(field, "#Settings.")
			out = append(out, ValidationError{Field: field, Message: e.Error()})
		}
		return out
	}
	return nil
}
