package config

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultAPIVersion is the Graph API version used when none is configured.
const DefaultAPIVersion = "v23.0"

// DefaultGraphDomain is the host serving Graph API requests.
const DefaultGraphDomain = "graph.facebook.com"

// Sentinel errors for settings validation.
var (
	ErrMissingAppID = errors.New("config: application ID is required")
)

// Settings captures the client-wide configuration for the Graph layer.
//
// Contract:
// - Ownership: Settings is a value; copy freely, never mutate a shared copy.
// - Defaults: zero-value fields are filled in by Normalize.
type Settings struct {
	// AppID is the application identifier registered with the Graph backend.
	AppID string

	// ClientToken is the shared secret appended to bridge request URLs.
	ClientToken string

	// APIVersion is the Graph API version prefix (e.g. "v23.0").
	// Default: DefaultAPIVersion.
	APIVersion string

	// GraphDomain is the Graph API host. Default: DefaultGraphDomain.
	GraphDomain string

	// URLSchemeSuffix distinguishes multiple clients sharing one AppID.
	// Appended to bridge request URLs only when non-empty.
	URLSchemeSuffix string

	// BridgeScheme is the custom URL scheme of the receiving application
	// for inter-process bridge requests.
	BridgeScheme string

	// DisableErrorRecovery globally disables automatic error recovery.
	// When true, every request is constructed with recovery disabled
	// regardless of caller-supplied flags.
	DisableErrorRecovery bool

	// LimitEventAndDataUsage restricts event and data collection.
	LimitEventAndDataUsage bool
}

// Provider supplies the current settings. It allows components constructed
// before the host finishes configuration to observe later values.
type Provider func() Settings

// Static returns a Provider that always yields s.
func Static(s Settings) Provider {
	return func() Settings { return s }
}

// Normalize returns a copy of s with defaults applied.
func (s Settings) Normalize() Settings {
	if s.APIVersion == "" {
		s.APIVersion = DefaultAPIVersion
	}
	if s.GraphDomain == "" {
		s.GraphDomain = DefaultGraphDomain
	}
	return s
}

// Validate checks that the settings are usable for Graph and bridge calls.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.AppID) == "" {
		return ErrMissingAppID
	}
	if s.APIVersion != "" && !strings.HasPrefix(s.APIVersion, "v") {
		return fmt.Errorf("config: malformed API version %q", s.APIVersion)
	}
	return nil
}
