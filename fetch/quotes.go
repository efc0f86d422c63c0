package fetch

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultQuoteURL is the stooq lightweight quote endpoint. It returns one
// CSV row per symbol with no authentication, which is all a daily agent
// needs.
const DefaultQuoteURL = "https://stooq.com/q/l/"

// Symbols for the two market inputs.
const (
	SymbolGold = "xauusd"
	SymbolDXY  = "dx.f"
)

// Quotes fetches spot levels from a CSV quote endpoint.
type Quotes struct {
	baseURL    string
	httpClient *http.Client
}

func NewQuotes(baseURL string, timeout time.Duration) *Quotes {
	if baseURL == "" {
		baseURL = DefaultQuoteURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Quotes{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Last returns the last traded price and quote time for a symbol. The
// endpoint's CSV columns are: symbol, date, time, open, high, low, close,
// volume.
func (q *Quotes) Last(ctx context.Context, symbol string) (float64, time.Time, error) {
	u := fmt.Sprintf("%s?s=%s&f=sd2t2ohlcv&h&e=csv", q.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, time.Time{}, err
	}

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, time.Time{}, fmt.Errorf("quote %s: status %d", symbol, resp.StatusCode)
	}

	r := csv.NewReader(resp.Body)
	rows, err := r.ReadAll()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("quote %s: parse: %w", symbol, err)
	}
	if len(rows) < 2 || len(rows[1]) < 7 {
		return 0, time.Time{}, fmt.Errorf("quote %s: unexpected response shape", symbol)
	}

	row := rows[1]
	price, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("quote %s: close %q: %w", symbol, row[6], err)
	}

	when, err := time.Parse("2006-01-02 15:04:05", row[1]+" "+row[2])
	if err != nil {
		when = time.Time{}
	}
	return price, when, nil
}
