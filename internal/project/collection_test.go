package project_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiverlab/codegraph/internal/project"
)

func TestCollectionName(t *testing.T) {
	tests := []struct {
		name      string
		projectID string
		suffix    project.Suffix
		want      string
		wantErr   error
	}{
		{"code", "simple-ctl", project.SuffixCode, "simple_ctl_code", nil},
		{"memory pending", "my-cool-project", project.SuffixMemoryPending, "my_cool_project_memory_pending", nil},
		{"graph", "UPPERCASE", project.SuffixGraph, "uppercase_graph", nil},
		{"empty project", "", project.SuffixCode, "", project.ErrEmptyProjectID},
		{"empty suffix", "simple-ctl", "", "", project.ErrEmptyCollection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := project.CollectionName(tt.projectID, tt.suffix)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllCollectionNames(t *testing.T) {
	names, err := project.AllCollectionNames("acme-widgets")
	require.NoError(t, err)
	assert.Len(t, names, len(project.AllSuffixes()))

	for _, suffix := range project.AllSuffixes() {
		expected, err := project.CollectionName("acme-widgets", suffix)
		require.NoError(t, err)
		assert.Contains(t, names, expected)
	}

	_, err = project.AllCollectionNames("")
	require.ErrorIs(t, err, project.ErrEmptyProjectID)
}

func TestChunkSuffixesExcludeNonChunkCollections(t *testing.T) {
	chunkSuffixes := project.ChunkSuffixes()
	assert.NotContains(t, chunkSuffixes, project.SuffixCodebase)
	assert.NotContains(t, chunkSuffixes, project.SuffixMemory)
	assert.NotContains(t, chunkSuffixes, project.SuffixSymbols)
	assert.NotContains(t, chunkSuffixes, project.SuffixGraph)
	assert.Contains(t, chunkSuffixes, project.SuffixCode)
	assert.Contains(t, chunkSuffixes, project.SuffixDocs)
	assert.Contains(t, chunkSuffixes, project.SuffixConfig)
	assert.Contains(t, chunkSuffixes, project.SuffixContracts)
}

func TestChunkCollectionName(t *testing.T) {
	got, err := project.ChunkCollectionName("simple-ctl", "code")
	require.NoError(t, err)
	assert.Equal(t, "simple_ctl_code", got)
}

func TestMustCollectionNamePanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() {
		project.MustCollectionName("", project.SuffixCode)
	})
}
