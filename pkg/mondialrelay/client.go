package mondialrelay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
	"github.com/angelmondragon/boutique-backend/pkg/types"
)

const (
	pickupPointsPath           = "/pickup-points"
	errorBodyReadLimit   int64 = 2048
	defaultClientTimeout       = 10 * time.Second

	DefaultCountry      = "FR"
	DefaultDeliveryMode = "24R"
	DefaultNumResults   = 10
	MaxNumResults       = 30
)

var (
	errBaseURLRequired = errors.New("mondial relay base url is required")

	decodeValidator = validator.New()
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	client := &Client{
		httpClient: &http.Client{Timeout: defaultClientTimeout},
		baseURL:    base,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// SearchRequest narrows pickup points around a postcode.
type SearchRequest struct {
	Postcode     string
	Country      string
	DeliveryMode string
	NumResults   int
	RadiusKM     int
}

func (r SearchRequest) withDefaults() SearchRequest {
	r.Postcode = strings.TrimSpace(r.Postcode)
	r.Country = strings.ToUpper(strings.TrimSpace(r.Country))
	if r.Country == "" {
		r.Country = DefaultCountry
	}
	if strings.TrimSpace(r.DeliveryMode) == "" {
		r.DeliveryMode = DefaultDeliveryMode
	}
	if r.NumResults <= 0 {
		r.NumResults = DefaultNumResults
	}
	if r.NumResults > MaxNumResults {
		r.NumResults = MaxNumResults
	}
	return r
}

// PickupPoint is a relay location with its coordinates and distance.
type PickupPoint struct {
	types.RelayPoint
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Distance  int     `json:"distance_m"`
}

type pickupPointPayload struct {
	ID         string  `json:"id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Address    string  `json:"address"`
	PostalCode string  `json:"postalCode"`
	City       string  `json:"city"`
	Country    string  `json:"country"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Distance   int     `json:"distance"`
}

type pickupPointsResponse struct {
	Points []pickupPointPayload `json:"points"`
}

// Finder is the pickup point lookup used by the relay points controller.
type Finder interface {
	PickupPoints(ctx context.Context, req SearchRequest) ([]PickupPoint, error)
}

func (c *Client) PickupPoints(ctx context.Context, req SearchRequest) ([]PickupPoint, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mondial relay client not configured")
	}
	req = req.withDefaults()
	if req.Postcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "postcode is required")
	}

	query := url.Values{}
	query.Set("postcode", req.Postcode)
	query.Set("country", req.Country)
	query.Set("deliveryMode", req.DeliveryMode)
	query.Set("numResults", strconv.Itoa(req.NumResults))
	if req.RadiusKM > 0 {
		query.Set("radius", strconv.Itoa(req.RadiusKM))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pickupPointsPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build pickup points request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute pickup points request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			"pickup points request failed").
			WithDetails(pkgerrors.Details{"upstream": "mondial_relay", "status": resp.StatusCode})
	}

	var decoded pickupPointsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode pickup points response")
	}

	points := make([]PickupPoint, 0, len(decoded.Points))
	for _, p := range decoded.Points {
		if err := decodeValidator.Struct(p); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode pickup points response").
				WithDetail("reason", "invalid_payload")
		}
		country := p.Country
		if country == "" {
			country = req.Country
		}
		points = append(points, PickupPoint{
			RelayPoint: types.RelayPoint{
				ID:         p.ID,
				Name:       p.Name,
				Address:    p.Address,
				PostalCode: p.PostalCode,
				City:       p.City,
				Country:    country,
			},
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Distance:  p.Distance,
		})
	}
	return points, nil
}
