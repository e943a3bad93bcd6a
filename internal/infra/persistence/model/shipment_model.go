// Package model holds the Firestore document layouts.
package model

import (
	"time"

	"google.golang.org/genproto/googleapis/type/latlng"
)

// ShipmentModel is the document stored in the `shipments` collection.
type ShipmentModel struct {
	Barcode            string         `firestore:"barcode"`
	Status             string         `firestore:"status"`
	ClientID           string         `firestore:"clientId"`
	ClientName         string         `firestore:"clientName"`
	AssignedTo         string         `firestore:"assignedTo"`
	BatchID            string         `firestore:"batchId"`
	PaymentMode        string         `firestore:"paymentMode"`
	Amount             float64        `firestore:"amount"`
	PickupAddress      string         `firestore:"pickupAddress"`
	PickupCity         string         `firestore:"pickupCity"`
	PickupDelegation   string         `firestore:"pickupDelegation"`
	PickupLocation     *latlng.LatLng `firestore:"pickupLocation"`
	DeliveryAddress    string         `firestore:"deliveryAddress"`
	DeliveryCity       string         `firestore:"deliveryCity"`
	DeliveryDelegation string         `firestore:"deliveryDelegation"`
	DeliveryLocation   *latlng.LatLng `firestore:"deliveryLocation"`
	RecipientName      string         `firestore:"recipientName"`
	RecipientPhone     string         `firestore:"recipientPhone"`
	Notes              string         `firestore:"notes"`
	History            []HistoryModel `firestore:"history"`
	CreatedAt          time.Time      `firestore:"createdAt"`
	LastUpdated        time.Time      `firestore:"lastUpdated"`
	LastUpdatedBy      string         `firestore:"lastUpdatedBy"`
}

// HistoryModel is one element of a shipment's `history` array.
type HistoryModel struct {
	At     time.Time `firestore:"at"`
	Status string    `firestore:"status"`
	By     string    `firestore:"by"`
	Note   string    `firestore:"note,omitempty"`
}
