package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3_KeyPrefixing(t *testing.T) {
	store, err := NewS3(S3Config{Bucket: "snapshots", Prefix: "sectorbot/"})
	require.NoError(t, err)
	assert.Equal(t, "sectorbot/positions.json", store.key("positions.json"))

	bare, err := NewS3(S3Config{Bucket: "snapshots"})
	require.NoError(t, err)
	assert.Equal(t, "positions.json", bare.key("positions.json"))
}
