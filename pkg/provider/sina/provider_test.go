package sina

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
	_, err := p.Fetch(context.Background(), core.MethodHistData, core.Params{"symbol": "600000"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMethodNotSupported)
}

func TestFetchRealtimeData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 新浪接口要求 Referer，缺失时返回 456
		assert.NotEmpty(t, r.Header.Get("Referer"))
		w.Write([]byte(toGBK(t, sampleQuote)))
	}))
	defer server.Close()

	p := NewProvider()
	p.baseURL = server.URL + "/list="

	table, err := p.Fetch(context.Background(), core.MethodRealtimeData, core.Params{"symbol": "600000"})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "浦发银行", table.String(0, "name"))
	assert.Equal(t, 10.57, table.Float(0, "price"))
}

func TestFetchRealtimeData_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(456)
	}))
	defer server.Close()

	p := NewProvider()
	p.baseURL = server.URL + "/list="

	_, err := p.Fetch(context.Background(), core.MethodRealtimeData, core.Params{"symbol": "600000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "456")
}
