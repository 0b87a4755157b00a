package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrisk/internal/models"
)

func TestResolveDocumentID(t *testing.T) {
	tests := []struct {
		name       string
		objectPath string
		metadata   map[string]string
		wantID     string
		wantSource string
		wantErr    bool
	}{
		{
			name:       "metadata wins regardless of path content",
			objectPath: "private/u1/1700000000000_lease.pdf",
			metadata:   map[string]string{"documentId": "doc-42"},
			wantID:     "doc-42",
			wantSource: models.SourceMetadata,
		},
		{
			name:       "metadata key matched case-insensitively",
			objectPath: "private/u1/lease.pdf",
			metadata:   map[string]string{"documentid": "doc-43"},
			wantID:     "doc-43",
			wantSource: models.SourceMetadata,
		},
		{
			name:       "empty metadata value falls through",
			objectPath: "private/u1/1700000000000_lease.pdf",
			metadata:   map[string]string{"documentId": ""},
			wantID:     "1700000000000",
			wantSource: models.SourceTimestamp,
		},
		{
			name:       "timestamp segment from the primary upload path",
			objectPath: "private/u1/1700000000000_lease.pdf",
			wantID:     "1700000000000",
			wantSource: models.SourceTimestamp,
		},
		{
			name:       "unrelated metadata is ignored",
			objectPath: "private/u1/1700000000000_lease.pdf",
			metadata:   map[string]string{"uploader": "u1"},
			wantID:     "1700000000000",
			wantSource: models.SourceTimestamp,
		},
		{
			name:       "user id fallback when no timestamp",
			objectPath: "private/u1/lease.pdf",
			wantID:     "u1",
			wantSource: models.SourceUserPath,
		},
		{
			name:       "no derivable identity",
			objectPath: "uploads/lease.pdf",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ResolveDocumentID(tt.objectPath, tt.metadata)
			if tt.wantErr {
				require.Error(t, err)
				var identityErr *IdentityResolutionError
				assert.ErrorAs(t, err, &identityErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, res.ID)
			assert.Equal(t, tt.wantSource, res.Source)
		})
	}
}

func TestResolutionDegraded(t *testing.T) {
	assert.False(t, Resolution{Source: models.SourceMetadata}.Degraded())
	assert.False(t, Resolution{Source: models.SourceTimestamp}.Degraded())
	assert.True(t, Resolution{Source: models.SourceUserPath}.Degraded())
}
