// Package constants holds configuration values shared across layers.
package constants

// Environments.
const (
	EnvDevelop    = "develop"
	EnvStaging    = "staging"
	EnvProduction = "production"
)

// Pub/Sub providers.
const (
	PubSubProviderGoogle = "google"
	PubSubProviderLocal  = "local"
	PubSubProviderNoop   = "noop"
)

// Store providers.
const (
	StoreProviderFirestore = "firestore"
	StoreProviderMemory    = "memory"
)

// Auth providers.
const (
	AuthProviderLocal    = "local"
	AuthProviderFirebase = "firebase"
)

// Firestore collections.
const (
	CollectionShipments     = "shipments"
	CollectionBatches       = "batches"
	CollectionUsers         = "users"
	CollectionNotifications = "notifications"
)

// History notes written by the workflow.
const (
	NoteBatchStarted     = "batch delivery started"
	NoteShipmentCreated  = "shipment created"
	NoteShipmentCanceled = "shipment canceled"
	NoteBatchCanceled    = "batch canceled"
	NoteAssignedToBatch  = "assigned to batch %s"
	NoteReassigned       = "reassigned from driver %s to batch %s"
)
