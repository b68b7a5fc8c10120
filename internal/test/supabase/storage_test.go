package supabase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trl-backend/internal/supabase"
)

func TestStorageClient_GetPublicURL(t *testing.T) {
	client, err := supabase.NewStorageClient("https://example.supabase.co", "service-key", "evidencias")
	require.NoError(t, err)

	url := client.GetPublicURL("projects/7/abc-evidence.pdf")
	assert.Equal(t, "https://example.supabase.co/storage/v1/object/public/evidencias/projects/7/abc-evidence.pdf", url)
}

func TestStorageClient_TrimsTrailingSlash(t *testing.T) {
	client, err := supabase.NewStorageClient("https://example.supabase.co/", "service-key", "evidencias")
	require.NoError(t, err)

	url := client.GetPublicURL("projects/7/abc-evidence.pdf")
	assert.Equal(t, "https://example.supabase.co/storage/v1/object/public/evidencias/projects/7/abc-evidence.pdf", url)
}
