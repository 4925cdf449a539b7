package adapter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/niksmo/storefront/internal/adapter"
	"github.com/stretchr/testify/assert"
)

func TestMakeTLSConfig(t *testing.T) {
	t.Run("MissingCA", func(t *testing.T) {
		_, err := adapter.MakeTLSConfig("missing-ca.pem", "cert.pem", "key.pem")
		assert.ErrorContains(t, err, "CA certificate file")
	})

	t.Run("MalformedCA", func(t *testing.T) {
		ca := filepath.Join(t.TempDir(), "ca.pem")
		assert.NoError(t, os.WriteFile(ca, []byte("not a pem"), 0o600))

		_, err := adapter.MakeTLSConfig(ca, "cert.pem", "key.pem")
		assert.ErrorContains(t, err, "failed to parse CA certificate")
	})
}
