package firebase

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialOptions(t *testing.T) {
	opts, err := Credentials{JSON: `{"type":"service_account"}`, Path: "/ignored.json"}.options()
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	opts, err = Credentials{}.options()
	require.NoError(t, err)
	assert.Empty(t, opts)

	_, err = Credentials{Path: filepath.Join(t.TempDir(), "missing.json")}.options()
	assert.Error(t, err)
}
