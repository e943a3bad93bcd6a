// Package qrcode renders shipment labels as QR codes.
package qrcode

import (
	"encoding/json"
	"strings"

	"megafast/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

// labelType tags the payload so other QR codes are rejected on scan.
const labelType = "shipment"

type labelGenerator struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// labelData represents the QR code data structure
type labelData struct {
	service.LabelPayload
	Type string `json:"type"`
}

// NewLabelGenerator creates a new shipment label generator
func NewLabelGenerator(size int, errorCorrectionLevel string) service.LabelGenerator {
	var level qrcode.RecoveryLevel
	switch strings.ToUpper(errorCorrectionLevel) {
	case "L":
		level = qrcode.Low
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}
	if size <= 0 {
		size = 256
	}

	return &labelGenerator{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GenerateShipmentLabel encodes the payload as JSON inside a PNG QR code
func (g *labelGenerator) GenerateShipmentLabel(payload service.LabelPayload) ([]byte, error) {
	if payload.ShipmentID == "" || payload.Barcode == "" {
		return nil, errors.New("label needs a shipment ID and a barcode")
	}

	jsonData, err := json.Marshal(labelData{LabelPayload: payload, Type: labelType})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal label data")
	}

	qrCode, err := qrcode.New(string(jsonData), g.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(g.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// ParseShipmentLabel decodes the text read from a scanned label
func (g *labelGenerator) ParseShipmentLabel(data string) (service.LabelPayload, error) {
	var label labelData
	if err := json.Unmarshal([]byte(data), &label); err != nil {
		return service.LabelPayload{}, errors.Wrap(err, "failed to unmarshal label data")
	}
	if label.Type != labelType {
		return service.LabelPayload{}, errors.Errorf("invalid label type: %s", label.Type)
	}
	if label.ShipmentID == "" || label.Barcode == "" {
		return service.LabelPayload{}, errors.New("label has no shipment ID or barcode")
	}

	return label.LabelPayload, nil
}
