package core

import "strings"

const RedactedValue = "[REDACTED]"

// RedactAuthFields masks the values of fields marked Secret in the
// integration definition. Fields absent from the schema are masked too; only
// declared non-secret fields pass through in clear.
func RedactAuthFields(definition IntegrationDefinition, fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	secretByName := make(map[string]bool, len(definition.AuthFields))
	known := make(map[string]bool, len(definition.AuthFields))
	for _, field := range definition.AuthFields {
		name := strings.TrimSpace(field.Name)
		known[name] = true
		secretByName[name] = field.Secret
	}
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if !known[key] || secretByName[key] {
			out[key] = RedactedValue
			continue
		}
		out[key] = value
	}
	return out
}

// RedactSensitiveMap masks values under credential-looking keys in free-form
// metadata, recursing into nested maps and slices.
func RedactSensitiveMap(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return map[string]any{}
	}
	return redactSensitiveMap(metadata)
}

func redactSensitiveMap(source map[string]any) map[string]any {
	target := make(map[string]any, len(source))
	for key, value := range source {
		if shouldRedactKey(key) {
			target[key] = RedactedValue
			continue
		}
		target[key] = redactSensitiveValue(value)
	}
	return target
}

func redactSensitiveValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return redactSensitiveMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = redactSensitiveValue(typed[i])
		}
		return out
	default:
		return value
	}
}

func shouldRedactKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || isTraceabilityKey(key) {
		return false
	}
	sensitiveTokens := []string{
		"password",
		"secret",
		"token",
		"authorization",
		"api_key",
		"apikey",
		"access_key",
		"refresh",
		"credential",
		"signature",
	}
	for _, token := range sensitiveTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}

func isTraceabilityKey(key string) bool {
	switch key {
	case "integration_type",
		"short_name",
		"connection_id",
		"credential_id",
		"event_type",
		"user_id",
		"org_id",
		"trace_id",
		"request_id":
		return true
	default:
		return false
	}
}
