package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatusAggregatesCollectionsAndVectors(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddOrUpdateDocument("notes", "a.md", "alpha")
	require.NoError(t, err)
	_, err = s.AddOrUpdateDocument("notes", "b.md", "beta")
	require.NoError(t, err)
	_, err = s.AddOrUpdateDocument("work", "c.md", "gamma")
	require.NoError(t, err)

	require.NoError(t, s.EnsureVectorTable("local_default", 2))
	require.NoError(t, s.AddVector("local_default", "hashA", 0, []float32{1, 0}))
	require.NoError(t, s.SetSetting("embedding_provider", "local"))
	require.NoError(t, s.SetSetting("embedding_model", "default"))

	status, err := s.GetStatus()
	require.NoError(t, err)

	assert.Equal(t, 3, status.TotalDocuments)
	assert.Len(t, status.Collections, 2)
	require.Len(t, status.VectorsByNS, 1)
	assert.Equal(t, "local_default", status.VectorsByNS[0].Namespace)
	assert.Equal(t, 1, status.VectorsByNS[0].VectorCount)
	assert.Equal(t, "local", status.ActiveProvider)
	assert.Equal(t, "default", status.ActiveModel)
}

func TestGetStatusRoundTripAfterProviderSwitch(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.EnsureVectorTable("local_default", 2))
	require.NoError(t, s.AddVector("local_default", "hashA", 0, []float32{1, 0}))

	status1, err := s.GetStatus()
	require.NoError(t, err)
	require.Len(t, status1.VectorsByNS, 1)

	require.NoError(t, s.SetSetting("embedding_provider", "openai"))
	require.NoError(t, s.EnsureVectorTable("openai_text_embedding_3_large", 1536))
	require.NoError(t, s.AddVector("openai_text_embedding_3_large", "hashB", 0, make([]float32, 1536)))

	status2, err := s.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "openai", status2.ActiveProvider)
	require.Len(t, status2.VectorsByNS, 2)
}
