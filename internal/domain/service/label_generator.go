package service

// LabelPayload is the content encoded into a shipment label.
type LabelPayload struct {
	ShipmentID string `json:"shipment_id"`
	Barcode    string `json:"barcode"`
	ClientID   string `json:"client_id"`
}

// LabelGenerator defines the interface for printable shipment labels
type LabelGenerator interface {
	// GenerateShipmentLabel renders the payload as a PNG QR code
	GenerateShipmentLabel(payload LabelPayload) ([]byte, error)

	// ParseShipmentLabel decodes the text scanned from a label
	ParseShipmentLabel(data string) (LabelPayload, error)
}
