package core

import (
	"context"
	"testing"
)

func TestGoOptionsResolver_Precedence(t *testing.T) {
	defaults := DefaultConfig()
	loaded := Config{ServiceName: "connections-from-config"}
	runtime := Config{ServiceName: "connections-runtime"}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.ServiceName != "connections-runtime" {
		t.Fatalf("expected runtime value to win, got %q", resolved.ServiceName)
	}

	resolved, err = GoOptionsResolver{}.Resolve(defaults, loaded, Config{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.ServiceName != "connections-from-config" {
		t.Fatalf("expected config value to win over defaults, got %q", resolved.ServiceName)
	}
}

func TestGoOptionsResolver_ConfiguredFalseBeatsDefaultTrue(t *testing.T) {
	defaults := DefaultConfig()
	runtime := Config{DirectToken: DirectTokenConfig{ValidateByDefault: boolRef(false)}}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, Config{}, runtime)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.DirectToken.ValidationEnabled() {
		t.Fatalf("expected runtime opt-out to survive the defaults layer")
	}

	resolved, err = GoOptionsResolver{}.Resolve(defaults, Config{}, Config{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !resolved.DirectToken.ValidationEnabled() {
		t.Fatalf("expected unset layers to keep validation on")
	}
}

func TestCfgxConfigProvider_LoadsRawValues(t *testing.T) {
	provider := NewCfgxConfigProvider(staticRawConfigLoader{Values: map[string]any{
		"service_name": "connections-test",
	}})

	cfg, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServiceName != "connections-test" {
		t.Fatalf("expected loaded service name, got %q", cfg.ServiceName)
	}
	if !cfg.DirectToken.ValidationEnabled() {
		t.Fatalf("expected defaults to fill unset fields")
	}
}

func TestNewService_RequiresSecretProvider(t *testing.T) {
	_, err := NewService(Config{})
	if err == nil {
		t.Fatalf("expected missing secret provider to fail")
	}
}

func TestWithTokenVerifier_IgnoresBlankShortName(t *testing.T) {
	builder := defaultServiceBuilder(Config{})
	WithTokenVerifier(&stubTokenVerifier{shortName: "  "})(&builder)
	if len(builder.tokenVerifiers) != 0 {
		t.Fatalf("expected blank verifier to be ignored")
	}
	WithTokenVerifier(&stubTokenVerifier{shortName: "slack"})(&builder)
	if _, ok := builder.tokenVerifiers["slack"]; !ok {
		t.Fatalf("expected slack verifier registered")
	}
}
