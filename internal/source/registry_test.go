package source

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	r := &Registry{factories: make(map[string]Factory)}
	require.NoError(t, r.Register("Acme", NewPlaceholder))
	assert.Contains(t, r.factories, "acme", "keys should be lowercased")

	err := r.Register("ACME", NewPlaceholder)
	assert.ErrorContains(t, err, "already registered")
}

func TestRegistry_MustRegister(t *testing.T) {
	r := &Registry{factories: make(map[string]Factory)}
	r.MustRegister("acme", NewPlaceholder)
	assert.Panics(t, func() {
		r.MustRegister("acme", NewPlaceholder)
	})
}

func TestKeyFor(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"api keys on the source name", Config{Name: "LegalTracker", Type: TypeAPI}, "legaltracker"},
		{"database keys on the type", Config{Name: "sap_erp", Type: TypeDatabase}, "database"},
		{"file keys on the type", Config{Name: "csv_export", Type: TypeFile}, "file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keyFor(tt.cfg))
		})
	}
}

func TestRegistry_New(t *testing.T) {
	r := NewRegistry()

	t.Run("constructs a file source", func(t *testing.T) {
		s, err := r.New(Config{
			Name:       "csv_export",
			Type:       TypeFile,
			Connection: map[string]string{"file_path": filepath.Join(t.TempDir(), "spend.csv")},
		}, Options{})
		require.NoError(t, err)
		assert.IsType(t, &File{}, s)
		assert.Equal(t, "csv_export", s.Name())
	})
	t.Run("constructs a placeholder for known integrations", func(t *testing.T) {
		for _, name := range PlaceholderNames {
			s, err := r.New(Config{Name: name, Type: TypeAPI, Connection: map[string]string{}}, Options{})
			require.NoError(t, err, name)
			assert.IsType(t, &Placeholder{}, s)
		}
	})
	t.Run("unknown api source", func(t *testing.T) {
		_, err := r.New(Config{Name: "carrier_pigeon", Type: TypeAPI}, Options{})
		assert.ErrorContains(t, err, "no adapter registered")
	})
	t.Run("factory errors propagate", func(t *testing.T) {
		_, err := r.New(Config{Name: "legaltracker", Type: TypeAPI, Connection: map[string]string{}}, Options{})
		assert.ErrorContains(t, err, "api_key is required")
	})
}
