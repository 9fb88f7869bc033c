// Package config holds client-wide settings for the Graph API layer.
//
// Settings replaces ambient process-wide state: it is constructed once by
// the host application and threaded explicitly through the constructors of
// every component that needs it.
package config
