// Package constants holds shared domain-level constant values.
package constants

// Supported pub/sub providers.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)
