package core

import (
	"strings"
	"testing"
)

func TestIntegrationDirectory_RegisterAndGet(t *testing.T) {
	directory := NewIntegrationDirectory()
	definition := IntegrationDefinition{
		IntegrationType: IntegrationTypeSource,
		ShortName:       "slack",
		DisplayName:     "Slack",
		AuthFields: []AuthField{
			{Name: "token", Type: AuthFieldTypeString, Required: true, Secret: true},
		},
	}
	if err := directory.Register(definition); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, ok := directory.Get(IntegrationTypeSource, "slack")
	if !ok {
		t.Fatalf("expected slack to be registered")
	}
	if got.DisplayName != "Slack" {
		t.Fatalf("expected display name Slack, got %q", got.DisplayName)
	}

	if _, ok := directory.Get(IntegrationTypeDestination, "slack"); ok {
		t.Fatalf("expected lookup to be keyed by type and short name")
	}
}

func TestIntegrationDirectory_RejectsDuplicates(t *testing.T) {
	directory := NewIntegrationDirectory()
	definition := IntegrationDefinition{
		IntegrationType: IntegrationTypeSource,
		ShortName:       "github",
	}
	if err := directory.Register(definition); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := directory.Register(definition)
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("expected duplicate registration error, got: %v", err)
	}
}

func TestIntegrationDefinitionValidate(t *testing.T) {
	err := IntegrationDefinition{IntegrationType: "bogus", ShortName: "x"}.Validate()
	if err == nil {
		t.Fatalf("expected invalid integration type to be rejected")
	}

	err = IntegrationDefinition{
		IntegrationType: IntegrationTypeSource,
		ShortName:       "dup",
		AuthFields: []AuthField{
			{Name: "token", Type: AuthFieldTypeString},
			{Name: "token", Type: AuthFieldTypeString},
		},
	}.Validate()
	if err == nil || !strings.Contains(err.Error(), "twice") {
		t.Fatalf("expected duplicate field error, got: %v", err)
	}

	err = IntegrationDefinition{
		IntegrationType: IntegrationTypeSource,
		ShortName:       "badtype",
		AuthFields:      []AuthField{{Name: "count", Type: "decimal"}},
	}.Validate()
	if err == nil || !strings.Contains(err.Error(), "unknown type") {
		t.Fatalf("expected unknown field type error, got: %v", err)
	}
}

func TestIntegrationDirectory_ListIsSorted(t *testing.T) {
	directory := NewIntegrationDirectory()
	for _, definition := range []IntegrationDefinition{
		{IntegrationType: IntegrationTypeSource, ShortName: "slack"},
		{IntegrationType: IntegrationTypeDestination, ShortName: "qdrant"},
		{IntegrationType: IntegrationTypeSource, ShortName: "github"},
	} {
		if err := directory.Register(definition); err != nil {
			t.Fatalf("register %s: %v", definition.ShortName, err)
		}
	}

	listed := directory.List()
	if len(listed) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(listed))
	}
	if listed[0].ShortName != "qdrant" || listed[1].ShortName != "github" || listed[2].ShortName != "slack" {
		t.Fatalf("expected type then short name ordering, got %v", listed)
	}
}
