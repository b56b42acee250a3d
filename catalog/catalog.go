package catalog

import (
	"fmt"

	"github.com/goliatone/go-connections/core"
)

const (
	ShortNameSlack    = "slack"
	ShortNameGitHub   = "github"
	ShortNameNotion   = "notion"
	ShortNamePostgres = "postgres"
	ShortNameQdrant   = "qdrant"
	ShortNameOpenAI   = "openai"
)

// Slack is a direct-token source: the only auth material is the bot token.
func Slack() core.IntegrationDefinition {
	return core.IntegrationDefinition{
		IntegrationType: core.IntegrationTypeSource,
		ShortName:       ShortNameSlack,
		DisplayName:     "Slack",
		AuthFields: []core.AuthField{
			{Name: "token", Type: core.AuthFieldTypeString, Required: true, Secret: true},
		},
	}
}

func GitHub() core.IntegrationDefinition {
	return core.IntegrationDefinition{
		IntegrationType: core.IntegrationTypeSource,
		ShortName:       ShortNameGitHub,
		DisplayName:     "GitHub",
		AuthFields: []core.AuthField{
			{Name: "personal_access_token", Type: core.AuthFieldTypeString, Required: true, Secret: true},
			{Name: "repo_name", Type: core.AuthFieldTypeString, Required: false},
		},
	}
}

func Notion() core.IntegrationDefinition {
	return core.IntegrationDefinition{
		IntegrationType: core.IntegrationTypeSource,
		ShortName:       ShortNameNotion,
		DisplayName:     "Notion",
		AuthFields: []core.AuthField{
			{Name: "access_token", Type: core.AuthFieldTypeString, Required: true, Secret: true},
		},
	}
}

func Postgres() core.IntegrationDefinition {
	return core.IntegrationDefinition{
		IntegrationType: core.IntegrationTypeDestination,
		ShortName:       ShortNamePostgres,
		DisplayName:     "PostgreSQL",
		AuthFields: []core.AuthField{
			{Name: "host", Type: core.AuthFieldTypeString, Required: true},
			{Name: "port", Type: core.AuthFieldTypeInt, Required: true},
			{Name: "database", Type: core.AuthFieldTypeString, Required: true},
			{Name: "user", Type: core.AuthFieldTypeString, Required: true},
			{Name: "password", Type: core.AuthFieldTypeString, Required: true, Secret: true},
			{Name: "ssl_mode", Type: core.AuthFieldTypeString, Required: false},
		},
	}
}

func Qdrant() core.IntegrationDefinition {
	return core.IntegrationDefinition{
		IntegrationType: core.IntegrationTypeDestination,
		ShortName:       ShortNameQdrant,
		DisplayName:     "Qdrant",
		AuthFields: []core.AuthField{
			{Name: "url", Type: core.AuthFieldTypeString, Required: true},
			{Name: "api_key", Type: core.AuthFieldTypeString, Required: false, Secret: true},
			{Name: "use_tls", Type: core.AuthFieldTypeBool, Required: false},
		},
	}
}

func OpenAI() core.IntegrationDefinition {
	return core.IntegrationDefinition{
		IntegrationType: core.IntegrationTypeEmbeddingModel,
		ShortName:       ShortNameOpenAI,
		DisplayName:     "OpenAI",
		AuthFields: []core.AuthField{
			{Name: "api_key", Type: core.AuthFieldTypeString, Required: true, Secret: true},
			{Name: "model", Type: core.AuthFieldTypeString, Required: false},
		},
	}
}

// Definitions returns every built-in integration definition.
func Definitions() []core.IntegrationDefinition {
	return []core.IntegrationDefinition{
		Slack(),
		GitHub(),
		Notion(),
		Postgres(),
		Qdrant(),
		OpenAI(),
	}
}

// RegisterBuiltins loads the full built-in catalog into the directory.
func RegisterBuiltins(directory *core.IntegrationDirectory) error {
	if directory == nil {
		return fmt.Errorf("catalog: integration directory is required")
	}
	for _, definition := range Definitions() {
		if err := directory.Register(definition); err != nil {
			return fmt.Errorf("catalog: register %s/%s: %w", definition.IntegrationType, definition.ShortName, err)
		}
	}
	return nil
}

// NewDirectory builds a directory preloaded with the built-in catalog.
func NewDirectory() (*core.IntegrationDirectory, error) {
	directory := core.NewIntegrationDirectory()
	if err := RegisterBuiltins(directory); err != nil {
		return nil, err
	}
	return directory, nil
}
