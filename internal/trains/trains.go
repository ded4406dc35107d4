// Package trains looks up delayed departures between two stations via a
// huxley-style JSON gateway in front of the National Rail OpenLDBWS board.
//
// This is a thin collaborator: errors never leave the package as errors. A
// failed or malformed lookup degrades to an empty delay list so the delay
// indicator keeps ticking on stale-but-safe input.
package trains

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// DelayRecord describes one delayed or cancelled service.
type DelayRecord struct {
	STD          string `json:"std"`
	ETD          string `json:"etd"`
	Destination  string `json:"destination"`
	IsCancelled  bool   `json:"isCancelled"`
	CancelReason string `json:"cancelReason"`
	DelayReason  string `json:"delayReason"`
}

type delaysResponse struct {
	Delays             bool   `json:"delays"`
	TotalTrainsDelayed int    `json:"totalTrainsDelayed"`
	TotalDelayMinutes  int    `json:"totalDelayMinutes"`
	LocationName       string `json:"locationName"`
	DelayedTrains      []struct {
		STD          string `json:"std"`
		ETD          string `json:"etd"`
		IsCancelled  bool   `json:"isCancelled"`
		CancelReason string `json:"cancelReason"`
		DelayReason  string `json:"delayReason"`
		Destination  []struct {
			LocationName string `json:"locationName"`
		} `json:"destination"`
	} `json:"delayedTrains"`
}

// Client queries the delays endpoint.
type Client struct {
	baseURL string
	token   string
	rows    int
	http    *http.Client
}

// DefaultRows is how many departures the board is asked for.
const DefaultRows = 10

// NewClient creates a client for a huxley-style gateway at baseURL, e.g.
// "https://huxley2.azurewebsites.net". token is the National Rail access
// token (may be empty for open gateways).
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		rows:    DefaultRows,
		http:    &http.Client{Timeout: timeout},
	}
}

// Delays returns the delayed services from one CRS station towards another.
// Any transport, status or decode failure is logged and reported as no
// delays.
func (c *Client) Delays(ctx context.Context, from, to string) []DelayRecord {
	u := fmt.Sprintf("%s/delays/%s/to/%s/%d", c.baseURL, url.PathEscape(from), url.PathEscape(to), c.rows)
	if c.token != "" {
		u += "?accessToken=" + url.QueryEscape(c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		log.Printf("TRAINS: building request for %s->%s: %v", from, to, err)
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("TRAINS: delay lookup %s->%s failed: %v", from, to, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("TRAINS: delay lookup %s->%s: unexpected status %d", from, to, resp.StatusCode)
		return nil
	}

	var board delaysResponse
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		log.Printf("TRAINS: decoding delay board %s->%s: %v", from, to, err)
		return nil
	}

	records := make([]DelayRecord, 0, len(board.DelayedTrains))
	for _, svc := range board.DelayedTrains {
		rec := DelayRecord{
			STD:          svc.STD,
			ETD:          svc.ETD,
			IsCancelled:  svc.IsCancelled,
			CancelReason: svc.CancelReason,
			DelayReason:  svc.DelayReason,
		}
		if len(svc.Destination) > 0 {
			rec.Destination = svc.Destination[0].LocationName
		}
		records = append(records, rec)
	}
	return records
}
