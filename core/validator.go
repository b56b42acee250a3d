package core

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ValidateAuthFields checks raw auth fields against an integration's declared
// schema. It is a pure function of its inputs: nothing is persisted and the
// raw map is never mutated. The returned map holds normalized values keyed by
// the schema field names.
func ValidateAuthFields(definition IntegrationDefinition, raw map[string]any) (map[string]any, error) {
	schema := make(map[string]AuthField, len(definition.AuthFields))
	for _, field := range definition.AuthFields {
		schema[strings.TrimSpace(field.Name)] = field
	}

	var fieldErrors []goerrors.FieldError
	validated := make(map[string]any, len(raw))

	for _, field := range definition.AuthFields {
		name := strings.TrimSpace(field.Name)
		value, present := raw[name]
		if !present {
			if field.Required {
				fieldErrors = append(fieldErrors, goerrors.FieldError{
					Field:   name,
					Message: "required field is missing",
				})
			}
			continue
		}
		normalized, err := normalizeAuthFieldValue(field, value)
		if err != nil {
			fieldErrors = append(fieldErrors, goerrors.FieldError{
				Field:   name,
				Message: err.Error(),
			})
			continue
		}
		validated[name] = normalized
	}

	unknown := make([]string, 0)
	for key := range raw {
		if _, declared := schema[strings.TrimSpace(key)]; !declared {
			unknown = append(unknown, strings.TrimSpace(key))
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   key,
			Message: "field is not declared by the integration schema",
		})
	}

	if len(fieldErrors) > 0 {
		return nil, goerrors.NewValidation(
			fmt.Sprintf("core: auth fields rejected for %s/%s", definition.IntegrationType, definition.ShortName),
			fieldErrors...,
		).
			WithCode(http.StatusBadRequest).
			WithTextCode(ConnectionsErrorInvalidFields)
	}
	return validated, nil
}

func normalizeAuthFieldValue(field AuthField, value any) (any, error) {
	switch field.Type {
	case AuthFieldTypeString:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		trimmed := strings.TrimSpace(str)
		if field.Required && trimmed == "" {
			return nil, fmt.Errorf("required field is empty")
		}
		return trimmed, nil
	case AuthFieldTypeInt:
		switch typed := value.(type) {
		case int:
			return typed, nil
		case int64:
			return int(typed), nil
		case float64:
			// JSON decoding hands integers over as float64.
			if typed != math.Trunc(typed) {
				return nil, fmt.Errorf("expected integer, got fractional number")
			}
			return int(typed), nil
		default:
			return nil, fmt.Errorf("expected integer, got %T", value)
		}
	case AuthFieldTypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", value)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown field type %q", field.Type)
	}
}
