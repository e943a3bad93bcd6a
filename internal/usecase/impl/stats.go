package impl

import (
	"math"
	"sort"
	"strings"

	"megafast/internal/domain/entity"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// deliveryRate returns delivered/total as a percentage, 0 for an empty set.
func deliveryRate(delivered, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(delivered) / float64(total) * 100
}

// computeShipmentStats reduces a shipment set from scratch.
func computeShipmentStats(shipments []*entity.Shipment) entity.ShipmentStats {
	stats := entity.ShipmentStats{
		Total:    len(shipments),
		ByStatus: make(map[entity.ShipmentStatus]int, len(entity.AllShipmentStatuses())),
	}
	for _, status := range entity.AllShipmentStatuses() {
		stats.ByStatus[status] = 0
	}

	for _, s := range shipments {
		stats.ByStatus[s.Status]++
		cod := s.PaymentMode == entity.PaymentModeCOD

		switch s.Status {
		case entity.ShipmentStatusDelivered:
			stats.Delivered++
			if cod {
				stats.Revenue += s.Amount
			}
		case entity.ShipmentStatusReturned:
			stats.Returned++
		case entity.ShipmentStatusInTransit:
			stats.InTransit++
			if cod {
				stats.PendingCOD += s.Amount
			}
		case entity.ShipmentStatusCreated, entity.ShipmentStatusAssigned:
			if cod {
				stats.PendingCOD += s.Amount
			}
		}
	}
	stats.DeliveryRate = deliveryRate(stats.Delivered, stats.Total)

	return stats
}

// summarizeBatch computes the read-time projections of a batch over its members.
func summarizeBatch(batch *entity.Batch, members []*entity.Shipment) entity.BatchSummary {
	summary := entity.BatchSummary{
		Batch:          batch,
		TotalShipments: len(members),
	}

	for _, s := range members {
		if s.PaymentMode == entity.PaymentModeCOD {
			summary.TotalAmount += s.Amount
		}

		switch s.Status {
		case entity.ShipmentStatusDelivered:
			summary.DeliveredShipments++
			if s.PaymentMode == entity.PaymentModeCOD {
				summary.CollectedAmount += s.Amount
			}
		case entity.ShipmentStatusReturned:
			summary.ReturnedShipments++
		}
	}
	summary.DeliveryRate = deliveryRate(summary.DeliveredShipments, summary.TotalShipments)
	summary.EstimatedDistanceKm = estimateRouteKm(members)

	return summary
}

// estimateRouteKm is the great-circle length of the path visiting the
// delivery points in member order. Members without coordinates are skipped.
func estimateRouteKm(members []*entity.Shipment) float64 {
	path := make(orb.LineString, 0, len(members))
	for _, s := range members {
		if s.DeliveryLocation == nil {
			continue
		}
		path = append(path, orb.Point{s.DeliveryLocation.Lng, s.DeliveryLocation.Lat})
	}
	if len(path) < 2 {
		return 0
	}

	return math.Round(geo.Length(path)/10) / 100
}

// groupByBatch indexes shipments by batch ID, dropping unbatched ones.
func groupByBatch(shipments []*entity.Shipment) map[string][]*entity.Shipment {
	groups := make(map[string][]*entity.Shipment)
	for _, s := range shipments {
		if s.BatchID == "" {
			continue
		}
		groups[s.BatchID] = append(groups[s.BatchID], s)
	}

	return groups
}

// extractCities lists the distinct (city, delegation) pairs found in the
// pickup and delivery addresses of shipments, sorted by label.
func extractCities(shipments []*entity.Shipment) []entity.CityOption {
	seen := make(map[string]struct{})
	options := make([]entity.CityOption, 0)

	add := func(city, delegation string) {
		city = strings.TrimSpace(city)
		delegation = strings.TrimSpace(delegation)
		if city == "" {
			return
		}
		key := city + "|" + delegation
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}

		label := city
		if delegation != "" {
			label = city + " - " + delegation
		}
		options = append(options, entity.CityOption{City: city, Delegation: delegation, Label: label})
	}

	for _, s := range shipments {
		add(s.DeliveryCity, s.DeliveryDelegation)
		add(s.PickupCity, s.PickupDelegation)
	}

	sort.Slice(options, func(i, j int) bool {
		return options[i].Label < options[j].Label
	})

	return options
}
