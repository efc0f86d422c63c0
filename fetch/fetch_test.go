package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/goldmacro/score"
)

func fredHandler(t *testing.T, values map[string]string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		series := r.URL.Query().Get("series_id")
		body, ok := values[series]
		if !ok {
			http.Error(w, "unknown series", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

func TestFREDLatest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(fredHandler(t, map[string]string{
		"DFF": `{"observations":[{"date":"2026-08-28","value":"4.33"}]}`,
	}))
	defer srv.Close()

	f := NewFRED(srv.URL, "test-key", time.Second)
	v, when, err := f.Latest(context.Background(), SeriesFedFunds)
	require.NoError(t, err)
	assert.Equal(t, 4.33, v)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), when)
}

func TestFREDLatestErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(fredHandler(t, map[string]string{
		"DFF":  `{"observations":[]}`,
		"GS10": `{"observations":[{"date":"2026-08-01","value":"."}]}`,
	}))
	defer srv.Close()

	f := NewFRED(srv.URL, "test-key", time.Second)

	_, _, err := f.Latest(context.Background(), SeriesFedFunds)
	assert.Error(t, err) // empty observation list

	// FRED encodes missing data points as ".".
	_, _, err = f.Latest(context.Background(), SeriesTreasury)
	assert.Error(t, err)

	_, _, err = f.Latest(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestFREDCPIYoY(t *testing.T) {
	t.Parallel()

	// 13 monthly index values newest first: 309.0 now vs. 300.0 a year ago
	// is 3% YoY.
	obs := `{"observations":[{"date":"2026-07-01","value":"309.0"}`
	for i := 1; i < 12; i++ {
		obs += fmt.Sprintf(`,{"date":"2026-%02d-01","value":"305.0"}`, 12-i)
	}
	obs += `,{"date":"2025-07-01","value":"300.0"}]}`

	srv := httptest.NewServer(fredHandler(t, map[string]string{"CPIAUCSL": obs}))
	defer srv.Close()

	f := NewFRED(srv.URL, "test-key", time.Second)
	v, when, err := f.CPIYoY(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 3.0, v, 1e-9)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), when)
}

func TestFREDCPIYoYTooFewObservations(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(fredHandler(t, map[string]string{
		"CPIAUCSL": `{"observations":[{"date":"2026-07-01","value":"309.0"}]}`,
	}))
	defer srv.Close()

	f := NewFRED(srv.URL, "test-key", time.Second)
	_, _, err := f.CPIYoY(context.Background())
	assert.Error(t, err)
}

func TestQuotesLast(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "xauusd", r.URL.Query().Get("s"))
		fmt.Fprint(w, "Symbol,Date,Time,Open,High,Low,Close,Volume\n")
		fmt.Fprint(w, "XAUUSD,2026-08-28,21:59:59,1948.1,1952.3,1944.0,1950.25,0\n")
	}))
	defer srv.Close()

	q := NewQuotes(srv.URL, time.Second)
	price, when, err := q.Last(context.Background(), SymbolGold)
	require.NoError(t, err)
	assert.Equal(t, 1950.25, price)
	assert.Equal(t, time.Date(2026, 8, 28, 21, 59, 59, 0, time.UTC), when)
}

func TestQuotesLastBadShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Symbol,Date,Time,Open,High,Low,Close,Volume\n")
	}))
	defer srv.Close()

	q := NewQuotes(srv.URL, time.Second)
	_, _, err := q.Last(context.Background(), SymbolGold)
	assert.Error(t, err)

	// Stooq answers N/D for unknown symbols.
	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Symbol,Date,Time,Open,High,Low,Close,Volume\n")
		fmt.Fprint(w, "NOPE,N/D,N/D,N/D,N/D,N/D,N/D,N/D\n")
	}))
	defer srv2.Close()

	q = NewQuotes(srv2.URL, time.Second)
	_, _, err = q.Last(context.Background(), "nope")
	assert.Error(t, err)
}

func TestCombinedFetchAllOmitsFailures(t *testing.T) {
	t.Parallel()

	// FRED serves only the funds rate; treasury and CPI fail.
	fredSrv := httptest.NewServer(fredHandler(t, map[string]string{
		"DFF": `{"observations":[{"date":"2026-08-28","value":"4.33"}]}`,
	}))
	defer fredSrv.Close()

	quoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sym := r.URL.Query().Get("s")
		close := map[string]string{"xauusd": "1950.25", "dx.f": "104.20"}[sym]
		fmt.Fprint(w, "Symbol,Date,Time,Open,High,Low,Close,Volume\n")
		fmt.Fprintf(w, "%s,2026-08-28,21:59:59,0,0,0,%s,0\n", sym, close)
	}))
	defer quoteSrv.Close()

	c := NewCombined(
		NewFRED(fredSrv.URL, "test-key", time.Second),
		NewQuotes(quoteSrv.URL, time.Second),
		0, zerolog.Nop())

	readings, err := c.FetchAll(context.Background())
	require.NoError(t, err)

	names := make(map[string]float64, len(readings))
	for _, r := range readings {
		names[r.Name] = r.Value
	}
	assert.Len(t, readings, 3)
	assert.Equal(t, 4.33, names[score.IndicatorFedRate])
	assert.Equal(t, 1950.25, names[score.IndicatorGoldPrice])
	assert.Equal(t, 104.20, names[score.IndicatorDXY])
	assert.NotContains(t, names, score.IndicatorCPI)
	assert.NotContains(t, names, score.IndicatorTreasury)
}

func TestCombinedFetchAllMarksStale(t *testing.T) {
	t.Parallel()

	fredSrv := httptest.NewServer(fredHandler(t, map[string]string{
		"DFF": `{"observations":[{"date":"2020-01-01","value":"1.55"}]}`,
	}))
	defer fredSrv.Close()

	quoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer quoteSrv.Close()

	c := NewCombined(
		NewFRED(fredSrv.URL, "test-key", time.Second),
		NewQuotes(quoteSrv.URL, time.Second),
		48*time.Hour, zerolog.Nop())

	readings, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.True(t, readings[0].Stale)
}
