// Package ree fetches day-ahead hourly prices from the Red Eléctrica market data API.
package ree

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"resty.dev/v3"

	"elecprice/internal/fetcher"
	"elecprice/internal/price"
	"elecprice/internal/ratelimit"
)

const (
	// DefaultBaseURL is the real-time market prices endpoint.
	DefaultBaseURL = "https://apidatos.ree.es/en/datos/mercados/precios-mercados-tiempo-real"

	dateLayout = "2006-01-02"
)

var kWhPerMWh = decimal.NewFromInt(1000)

// marketResponse mirrors the part of the payload we read. Every field is a
// pointer so that a missing key can be told apart from a zero value.
type marketResponse struct {
	Included *[]struct {
		Attributes *struct {
			Values *[]struct {
				Value    *json.RawMessage `json:"value"`
				Datetime *string          `json:"datetime"`
			} `json:"values"`
		} `json:"attributes"`
	} `json:"included"`
}

// Client fetches hourly prices for one day. Prices are published in €/MWh
// and returned in €/kWh.
type Client struct {
	client *resty.Client
}

// NewClient creates a client for the given endpoint.
func NewClient(baseURL string, opts fetcher.ClientOptions) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts.Accept = "application/json"
	return &Client{client: fetcher.NewHTTPClient(baseURL, opts)}
}

// Fetch retrieves the prices for day's local calendar day.
func (c *Client) Fetch(ctx context.Context, day time.Time) (price.Series, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIREE); err != nil {
		return price.Series{}, fetcher.ClassifyTransportError(err)
	}

	date := day.Format(dateLayout)
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"start_date": date + "T00:00",
			"end_date":   date + "T23:59",
			"time_trunc": "hour",
		}).
		Get("")
	if err != nil {
		return price.Series{}, fetcher.ClassifyTransportError(err)
	}
	if !resp.IsSuccess() {
		return price.Series{}, fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	return decode(resp.Bytes(), day.Location())
}

// Name identifies the source in logs and attempt trails.
func (c *Client) Name() string {
	return "ree"
}

func decode(body []byte, loc *time.Location) (price.Series, error) {
	var payload marketResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return price.Series{}, fetcher.NewMalformedError("decode response", err)
	}

	if payload.Included == nil || len(*payload.Included) == 0 {
		return price.Series{}, fetcher.NewMalformedError("included missing", nil)
	}
	first := (*payload.Included)[0]
	if first.Attributes == nil {
		return price.Series{}, fetcher.NewMalformedError("attributes missing", nil)
	}
	if first.Attributes.Values == nil {
		return price.Series{}, fetcher.NewMalformedError("values missing", nil)
	}

	values := *first.Attributes.Values
	if len(values) == 0 {
		return price.Series{}, fetcher.NewNoDataError("values empty")
	}

	records := make([]price.Record, 0, len(values))
	for i, v := range values {
		if v.Value == nil || v.Datetime == nil {
			return price.Series{}, fetcher.NewMalformedError(fmt.Sprintf("value %d incomplete", i), nil)
		}
		perMWh, err := parseNumber(*v.Value)
		if err != nil {
			return price.Series{}, fetcher.NewMalformedError(fmt.Sprintf("value %d", i), err)
		}
		at, err := time.Parse(time.RFC3339, *v.Datetime)
		if err != nil {
			return price.Series{}, fetcher.NewMalformedError(fmt.Sprintf("value %d datetime", i), err)
		}
		records = append(records, price.Record{
			Hour:  at.In(loc),
			Price: perMWh.Div(kWhPerMWh),
		})
	}

	return price.NewSeries(records...), nil
}

// parseNumber accepts only a bare JSON number. Quoted numbers, booleans and
// objects are rejected.
func parseNumber(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return decimal.Decimal{}, fmt.Errorf("not a number: %s", raw)
	}
	return decimal.NewFromString(string(raw))
}

var _ fetcher.Fetcher = (*Client)(nil)
