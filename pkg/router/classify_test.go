package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		message string
		want    ErrorClass
	}{
		{"empty result", ClassDataQuality},
		{"missing required columns: close, volume", ClassDataQuality},
		{"insufficient rows: got 2, need 5", ClassDataQuality},
		{"Get \"https://example.com\": context deadline exceeded", ClassConnectivity},
		{"dial tcp 1.2.3.4:443: connection refused", ClassConnectivity},
		{"read tcp: connection reset by peer", ClassConnectivity},
		{"lookup hq.sinajs.cn: no such host", ClassConnectivity},
		{"request timeout", ClassConnectivity},
		{"something odd happened", ClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyMessage(tt.message))
		})
	}
}

func TestClassifyDetails(t *testing.T) {
	details := []ErrorDetail{
		{Source: "a", Message: "empty result"},
		{Source: "b", Message: "request timeout"},
		{Source: "c", Message: "connection refused"},
		{Source: "d", Message: "weird"},
	}

	counts := ClassifyDetails(details)
	assert.Equal(t, 1, counts[ClassDataQuality])
	assert.Equal(t, 2, counts[ClassConnectivity])
	assert.Equal(t, 1, counts[ClassUnknown])
}
