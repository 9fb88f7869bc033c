package config

import (
	"errors"
	"testing"
)

func TestSettings_Normalize(t *testing.T) {
	s := Settings{AppID: "1234"}.Normalize()

	if s.APIVersion != DefaultAPIVersion {
		t.Errorf("APIVersion = %q, want %q", s.APIVersion, DefaultAPIVersion)
	}
	if s.GraphDomain != DefaultGraphDomain {
		t.Errorf("GraphDomain = %q, want %q", s.GraphDomain, DefaultGraphDomain)
	}

	// Explicit values survive normalization
	s = Settings{AppID: "1234", APIVersion: "v21.0", GraphDomain: "graph.example.com"}.Normalize()
	if s.APIVersion != "v21.0" {
		t.Errorf("APIVersion = %q, want v21.0", s.APIVersion)
	}
	if s.GraphDomain != "graph.example.com" {
		t.Errorf("GraphDomain = %q, want graph.example.com", s.GraphDomain)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  error
	}{
		{"valid", Settings{AppID: "1234"}, nil},
		{"missing app id", Settings{}, ErrMissingAppID},
		{"whitespace app id", Settings{AppID: "   "}, ErrMissingAppID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_ValidateMalformedVersion(t *testing.T) {
	err := Settings{AppID: "1234", APIVersion: "23.0"}.Validate()
	if err == nil {
		t.Error("Validate() should reject version without v prefix")
	}
}

func TestStatic(t *testing.T) {
	p := Static(Settings{AppID: "abc"})
	if got := p().AppID; got != "abc" {
		t.Errorf("Static provider AppID = %q, want abc", got)
	}
}
