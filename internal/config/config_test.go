package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("RequiresEndpoint", func(t *testing.T) {
		// Setenv registers restoration; the variable must be absent, not
		// empty, for the required check to trip.
		t.Setenv("GRAPHQL_ENDPOINT", "")
		require.NoError(t, os.Unsetenv("GRAPHQL_ENDPOINT"))
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("GRAPHQL_ENDPOINT", "https://api.test/graphql")
		c, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "ap-southeast-2", c.AWSRegion)
		assert.Equal(t, "dev", c.EnvSuffix)
		assert.Equal(t, "kingsroom-media", c.AttachmentBucket)
		assert.Equal(t, "social-media/post-attachments", c.AttachmentPrefix)
		assert.Equal(t, "127.0.0.1:8099", c.AdminAddr)
		assert.Equal(t, "info", c.LogLevel)
		assert.False(t, c.DryRun)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("GRAPHQL_ENDPOINT", "https://api.test/graphql")
		t.Setenv("GRAPHQL_API_KEY", "k-123")
		t.Setenv("ENV_SUFFIX", "prod")
		t.Setenv("DRY_RUN", "true")
		c, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "k-123", c.GraphQLAPIKey)
		assert.Equal(t, "prod", c.EnvSuffix)
		assert.True(t, c.DryRun)
	})
}
