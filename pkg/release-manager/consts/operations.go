// Package consts provides operation name constants for the release manager.
package consts

// Operation names, used in logs and panic errors.
const (
	// Publish operations.
	Publish      = "Publish"
	Order        = "Order"
	ListPackages = "ListPackages"

	// Deployment operations.
	Deploy         = "Deploy"
	ListStrategies = "ListStrategies"

	// Extension operations.
	ListExtensions  = "ListExtensions"
	ReloadExtension = "ReloadExtension"
	UnloadExtension = "UnloadExtension"
	WatchExtensions = "WatchExtensions"

	// Lifecycle operations.
	Shutdown = "Shutdown"
)
