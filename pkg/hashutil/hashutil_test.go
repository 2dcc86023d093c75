package hashutil_test

import (
	"encoding/hex"
	"testing"

	"github.com/rohmanhakim/shell-cache/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"
)

func TestHashBytes_SHA256(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "simple string",
			data:     []byte("hello world"),
			expected: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
		{
			name:     "request identity",
			data:     []byte("GET:https://example.com/api/orders"),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := hashutil.HashBytes(tt.data, hashutil.HashAlgoSHA256)
			require.NoError(t, err)
			assert.Len(t, result, 64)
			if tt.expected != "" {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestHashBytes_BLAKE3(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty data", data: []byte{}},
		{name: "simple string", data: []byte("hello world")},
		{name: "request identity", data: []byte("GET:https://example.com/api/orders?page=2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := hashutil.HashBytes(tt.data, hashutil.HashAlgoBLAKE3)
			require.NoError(t, err)

			// Compute expected value using blake3 directly
			expectedHash := blake3.Sum256(tt.data)
			assert.Equal(t, hex.EncodeToString(expectedHash[:]), result)
		})
	}
}

func TestHashBytes_UnsupportedAlgo(t *testing.T) {
	_, err := hashutil.HashBytes([]byte("data"), hashutil.HashAlgo("md5"))
	assert.Error(t, err)
}

func TestHashBytes_Deterministic(t *testing.T) {
	for _, algo := range []hashutil.HashAlgo{hashutil.HashAlgoSHA256, hashutil.HashAlgoBLAKE3} {
		first, err := hashutil.HashBytes([]byte("GET:https://example.com/"), algo)
		require.NoError(t, err)
		second, err := hashutil.HashBytes([]byte("GET:https://example.com/"), algo)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}
