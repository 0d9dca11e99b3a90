package woocommerce

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/boutique-backend/pkg/enums"
)

// ShippingZone is a WooCommerce shipping zone.
type ShippingZone struct {
	ID   *int64 `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type zoneMethodPayload struct {
	InstanceID        *int64 `json:"instance_id" validate:"required"`
	Title             string `json:"title" validate:"required"`
	Order             int    `json:"order"`
	Enabled           *bool  `json:"enabled" validate:"required"`
	MethodID          string `json:"method_id" validate:"required"`
	MethodDescription string `json:"method_description"`
	Settings          struct {
		Cost *struct {
			Value string `json:"value"`
		} `json:"cost"`
	} `json:"settings"`
}

// ShippingMethod is a selectable method with its kind resolved.
type ShippingMethod struct {
	ID          string                   `json:"id"`
	ZoneID      int64                    `json:"zone_id"`
	ZoneName    string                   `json:"zone_name"`
	InstanceID  int64                    `json:"instance_id"`
	MethodID    string                   `json:"method_id"`
	Title       string                   `json:"title"`
	Cost        decimal.Decimal          `json:"cost"`
	Description string                   `json:"description"`
	Kind        enums.ShippingMethodKind `json:"kind"`
}

// MethodKey identifies a method across zones.
func MethodKey(zoneID, instanceID int64) string {
	return fmt.Sprintf("%d:%d", zoneID, instanceID)
}

func (c *Client) ListShippingZones(ctx context.Context) ([]ShippingZone, error) {
	var zones []ShippingZone
	if err := c.do(ctx, http.MethodGet, "/shipping/zones", nil, &zones, "shipping zones"); err != nil {
		return nil, err
	}
	for i := range zones {
		if err := validateDecoded("shipping zones", zones[i]); err != nil {
			return nil, err
		}
	}
	return zones, nil
}

// ListZoneMethods returns the enabled, non-free methods of a zone in WooCommerce order.
func (c *Client) ListZoneMethods(ctx context.Context, zone ShippingZone) ([]ShippingMethod, error) {
	var payload []zoneMethodPayload
	path := fmt.Sprintf("/shipping/zones/%d/methods", *zone.ID)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload, "shipping zone methods"); err != nil {
		return nil, err
	}

	sort.SliceStable(payload, func(i, j int) bool { return payload[i].Order < payload[j].Order })

	methods := make([]ShippingMethod, 0, len(payload))
	for _, raw := range payload {
		if err := validateDecoded("shipping zone methods", raw); err != nil {
			return nil, err
		}
		if !*raw.Enabled {
			continue
		}
		kind := c.Classify(raw.MethodID, raw.Title, raw.MethodDescription)
		if kind == enums.ShippingMethodKindFree {
			continue
		}
		cost, err := parseCost(raw)
		if err != nil {
			return nil, decodeError("shipping zone methods", err)
		}
		methods = append(methods, ShippingMethod{
			ID:          MethodKey(*zone.ID, *raw.InstanceID),
			ZoneID:      *zone.ID,
			ZoneName:    zone.Name,
			InstanceID:  *raw.InstanceID,
			MethodID:    raw.MethodID,
			Title:       raw.Title,
			Cost:        cost,
			Description: raw.MethodDescription,
			Kind:        kind,
		})
	}
	return methods, nil
}

// ListShippingMethods walks every zone.
func (c *Client) ListShippingMethods(ctx context.Context) ([]ShippingMethod, error) {
	zones, err := c.ListShippingZones(ctx)
	if err != nil {
		return nil, err
	}
	var methods []ShippingMethod
	for _, zone := range zones {
		zoneMethods, err := c.ListZoneMethods(ctx, zone)
		if err != nil {
			return nil, err
		}
		methods = append(methods, zoneMethods...)
	}
	return methods, nil
}

// Classify resolves a method kind from the configured relay ids, falling back
// to the legacy relais/locker wording when the id is unknown.
func (c *Client) Classify(methodID, title, description string) enums.ShippingMethodKind {
	id := strings.ToLower(strings.TrimSpace(methodID))
	if id == "free_shipping" {
		return enums.ShippingMethodKindFree
	}
	if _, ok := c.relayMethodIDs[id]; ok {
		return enums.ShippingMethodKindRelay
	}
	text := strings.ToLower(title + " " + description)
	if strings.Contains(text, "relais") || strings.Contains(text, "locker") {
		return enums.ShippingMethodKindRelay
	}
	return enums.ShippingMethodKindHome
}

func parseCost(raw zoneMethodPayload) (decimal.Decimal, error) {
	if raw.Settings.Cost == nil {
		return decimal.Zero, nil
	}
	value := strings.TrimSpace(strings.ReplaceAll(raw.Settings.Cost.Value, ",", "."))
	if value == "" {
		return decimal.Zero, nil
	}
	cost, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("method %s cost %q: %w", raw.MethodID, raw.Settings.Cost.Value, err)
	}
	return cost, nil
}
