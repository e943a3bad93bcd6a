package entity

// ShipmentStats is a reduction over a set of shipments. It is always recomputed
// from the source documents and never stored.
type ShipmentStats struct {
	Total        int                    `json:"total"`
	ByStatus     map[ShipmentStatus]int `json:"byStatus"`
	Delivered    int                    `json:"delivered"`
	Returned     int                    `json:"returned"`
	InTransit    int                    `json:"inTransit"`
	DeliveryRate float64                `json:"deliveryRate"` // Percentage, 0 when Total is 0.
	Revenue      float64                `json:"revenue"`      // Collected COD amount of delivered shipments.
	PendingCOD   float64                `json:"pendingCod"`   // COD amount still to collect.
}

// BatchSummary is a batch with its read-time projections.
type BatchSummary struct {
	*Batch
	TotalShipments      int     `json:"totalShipments"`
	DeliveredShipments  int     `json:"deliveredShipments"`
	ReturnedShipments   int     `json:"returnedShipments"`
	TotalAmount         float64 `json:"totalAmount"`
	CollectedAmount     float64 `json:"collectedAmount"`
	DeliveryRate        float64 `json:"deliveryRate"`
	EstimatedDistanceKm float64 `json:"estimatedDistanceKm"`
}

// BatchStatistics aggregates a driver's batches.
type BatchStatistics struct {
	Total    int                 `json:"total"`
	ByStatus map[BatchStatus]int `json:"byStatus"`
	Batches  []BatchSummary      `json:"batches"`
}

// DriverStats is the driver dashboard.
type DriverStats struct {
	ShipmentStats
	TotalBatches     int `json:"totalBatches"`
	ActiveBatches    int `json:"activeBatches"`
	CompletedBatches int `json:"completedBatches"`
}

// CityOption is a distinct (city, delegation) pair offered as a filter choice.
type CityOption struct {
	City       string `json:"city"`
	Delegation string `json:"delegation,omitempty"`
	Label      string `json:"label"`
}
