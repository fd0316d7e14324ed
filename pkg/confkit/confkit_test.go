package confkit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	t.Setenv("SWAPSTATS_CONF_DIR", "overrides")
	tests := []struct {
		name string
		base string
		file string
		want string
	}{
		{"absolute", "/srv/etc", "/opt/market.yaml", "/opt/market.yaml"},
		{"relative", "/srv/etc", "market.yaml", "/srv/etc/market.yaml"},
		{"env expanded", "/srv/etc", "${SWAPSTATS_CONF_DIR}/market.yaml", "/srv/etc/overrides/market.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.base, tt.file))
		})
	}
}

func TestSectionHydrate(t *testing.T) {
	t.Run("empty file is a no-op", func(t *testing.T) {
		var s Section[string]
		err := s.Hydrate("/srv/etc", func(string) (*string, error) {
			t.Fatal("loader must not run")
			return nil, nil
		})
		require.NoError(t, err)
		assert.Nil(t, s.Value)
	})

	t.Run("loads resolved path", func(t *testing.T) {
		s := Section[string]{File: "market.yaml"}
		value := "loaded"
		var got string
		err := s.Hydrate("/srv/etc", func(p string) (*string, error) {
			got = p
			return &value, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "/srv/etc/market.yaml", got)
		assert.Equal(t, "/srv/etc/market.yaml", s.File)
		assert.Equal(t, "loaded", *s.Value)
	})

	t.Run("loader error leaves section untouched", func(t *testing.T) {
		s := Section[string]{File: "market.yaml"}
		err := s.Hydrate("/srv/etc", func(string) (*string, error) {
			return nil, errors.New("boom")
		})
		assert.EqualError(t, err, "boom")
		assert.Equal(t, "market.yaml", s.File)
		assert.Nil(t, s.Value)
	})
}

func TestProjectRoot(t *testing.T) {
	root, err := ProjectRoot()
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(root, "go.mod"))
	assert.NoError(t, statErr)
	assert.Equal(t, filepath.Join(root, "etc", "swapstats.yaml"), MustProjectPath("etc/swapstats.yaml"))
}

func TestWalkUpStops(t *testing.T) {
	visited := 0
	dir, ok := walkUp(func(string) bool {
		visited++
		return visited == 2
	})
	require.True(t, ok)
	assert.Equal(t, "pkg", filepath.Base(dir))
}
