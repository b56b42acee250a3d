package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type AuthFieldType string

const (
	AuthFieldTypeString AuthFieldType = "string"
	AuthFieldTypeInt    AuthFieldType = "int"
	AuthFieldTypeBool   AuthFieldType = "bool"
)

type AuthField struct {
	Name     string
	Type     AuthFieldType
	Required bool
	// Secret fields are masked in logs and activity metadata.
	Secret bool
}

type IntegrationDefinition struct {
	IntegrationType IntegrationType
	ShortName       string
	DisplayName     string
	AuthFields      []AuthField
}

func (d IntegrationDefinition) Validate() error {
	if err := d.IntegrationType.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(d.ShortName) == "" {
		return fmt.Errorf("core: integration short name is required")
	}
	seen := make(map[string]struct{}, len(d.AuthFields))
	for _, field := range d.AuthFields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("core: integration %q has an auth field without a name", d.ShortName)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("core: integration %q declares auth field %q twice", d.ShortName, name)
		}
		seen[name] = struct{}{}
		switch field.Type {
		case AuthFieldTypeString, AuthFieldTypeInt, AuthFieldTypeBool:
		default:
			return fmt.Errorf("core: integration %q auth field %q has unknown type %q", d.ShortName, name, field.Type)
		}
	}
	return nil
}

type directoryKey struct {
	integrationType IntegrationType
	shortName       string
}

// IntegrationDirectory is the catalog of supported integrations keyed by
// (integration_type, short_name).
type IntegrationDirectory struct {
	mu          sync.RWMutex
	definitions map[directoryKey]IntegrationDefinition
}

func NewIntegrationDirectory() *IntegrationDirectory {
	return &IntegrationDirectory{definitions: make(map[directoryKey]IntegrationDefinition)}
}

func (d *IntegrationDirectory) Register(definition IntegrationDefinition) error {
	if d == nil {
		return fmt.Errorf("core: integration directory is nil")
	}
	if err := definition.Validate(); err != nil {
		return err
	}
	key := directoryKey{
		integrationType: definition.IntegrationType,
		shortName:       strings.TrimSpace(definition.ShortName),
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.definitions[key]; exists {
		return fmt.Errorf("core: integration already registered: %s/%s", key.integrationType, key.shortName)
	}
	d.definitions[key] = definition
	return nil
}

func (d *IntegrationDirectory) Get(integrationType IntegrationType, shortName string) (IntegrationDefinition, bool) {
	if d == nil {
		return IntegrationDefinition{}, false
	}
	key := directoryKey{
		integrationType: integrationType,
		shortName:       strings.TrimSpace(shortName),
	}
	d.mu.RLock()
	definition, ok := d.definitions[key]
	d.mu.RUnlock()
	return definition, ok
}

func (d *IntegrationDirectory) List() []IntegrationDefinition {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	definitions := make([]IntegrationDefinition, 0, len(d.definitions))
	for _, definition := range d.definitions {
		definitions = append(definitions, definition)
	}
	d.mu.RUnlock()
	sort.Slice(definitions, func(i, j int) bool {
		if definitions[i].IntegrationType == definitions[j].IntegrationType {
			return definitions[i].ShortName < definitions[j].ShortName
		}
		return definitions[i].IntegrationType < definitions[j].IntegrationType
	})
	return definitions
}

var _ Directory = (*IntegrationDirectory)(nil)
