package eastmoney

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akone/pkg/core"
)

func TestFetch_UnsupportedMethod(t *testing.T) {
	p := NewProvider()
	_, err := p.Fetch(context.Background(), "get_financials", core.Params{"symbol": "600000"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMethodNotSupported)
}

func TestFetchHistData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1.600000", r.URL.Query().Get("secid"))
		assert.Equal(t, "101", r.URL.Query().Get("klt"))
		w.Write([]byte(`{"data":{"code":"600000","name":"浦发银行","klines":[
			"2024-01-02,10.50,10.57,10.65,10.30,123456,130000000.0",
			"2024-01-03,10.57,10.40,10.60,10.35,98765,101000000.0"
		]}}`))
	}))
	defer server.Close()

	p := NewProvider()
	p.histURL = server.URL

	table, err := p.Fetch(context.Background(), core.MethodHistData, core.Params{
		"symbol":     "600000",
		"start_date": "2024-01-01",
		"end_date":   "2024-12-31",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 10.57, table.Float(0, "close"))
}

func TestFetchHistData_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewProvider()
	p.histURL = server.URL

	_, err := p.Fetch(context.Background(), core.MethodHistData, core.Params{"symbol": "600000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestFetchHistData_MissingDataSection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null}`))
	}))
	defer server.Close()

	p := NewProvider()
	p.histURL = server.URL

	_, err := p.Fetch(context.Background(), core.MethodHistData, core.Params{"symbol": "600000"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUpstreamFormat)
}

func TestFetchRealtimeData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("fltt"))
		w.Write([]byte(`{"data":{"f43":10.57,"f44":10.65,"f45":10.30,"f46":10.50,"f47":123456,"f48":130000000.0,"f57":"600000","f58":"浦发银行","f60":10.40,"f170":1.63}}`))
	}))
	defer server.Close()

	p := NewProvider()
	p.quoteURL = server.URL

	table, err := p.Fetch(context.Background(), core.MethodRealtimeData, core.Params{"symbol": "600000"})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "600000", table.String(0, "symbol"))
	assert.Equal(t, 10.57, table.Float(0, "price"))
	assert.NotEmpty(t, table.String(0, "timestamp"))
}

func TestFetch_InvalidSymbol(t *testing.T) {
	p := NewProvider()
	_, err := p.Fetch(context.Background(), core.MethodHistData, core.Params{})
	assert.ErrorIs(t, err, core.ErrEmptySymbol)

	_, err = p.Fetch(context.Background(), core.MethodHistData, core.Params{"symbol": "xyz"})
	assert.ErrorIs(t, err, core.ErrInvalidSymbol)
}
