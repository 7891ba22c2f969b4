package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
)

func TestBuildDatasetExport(t *testing.T) {
	ds := domain.Dataset{ID: "ds-1", Name: "Docs"}
	docs := []domain.DocumentExport{
		{Document: domain.Document{ID: "doc-1", Name: "readme"}},
	}

	export, err := BuildDatasetExport(ds, docs)
	require.NoError(t, err)
	assert.Equal(t, "ds-1", export.Dataset.ID)
	assert.Len(t, export.Documents, 1)
}

func TestBuildDatasetExportRequiresID(t *testing.T) {
	_, err := BuildDatasetExport(domain.Dataset{Name: "no id"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCombineSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments []domain.Segment
		want     string
		wantErr  bool
	}{
		{
			name: "joins in order with blank line",
			segments: []domain.Segment{
				{Content: "first chunk"},
				{Content: "second chunk"},
				{Content: "third chunk"},
			},
			want: "first chunk\n\nsecond chunk\n\nthird chunk",
		},
		{
			name: "empty segments are dropped, order kept",
			segments: []domain.Segment{
				{Content: "alpha"},
				{Content: ""},
				{Content: "omega"},
			},
			want: "alpha\n\nomega",
		},
		{
			name:     "no segments at all",
			segments: nil,
			wantErr:  true,
		},
		{
			name: "all segments empty",
			segments: []domain.Segment{
				{Content: ""},
				{Content: ""},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := domain.DocumentExport{
				Document: domain.Document{Name: "doc"},
				Segments: tt.segments,
			}
			got, err := CombineSegments(doc)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrEmptyContent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedactSecrets(t *testing.T) {
	dsl := `app:
  name: support-bot
workflow:
  environment_variables:
    - name: OPENAI_KEY
      value: sk-verysecret
      value_type: secret
    - name: REGION
      value: eu-west-1
      value_type: string
`

	redacted, err := RedactSecrets(dsl)
	require.NoError(t, err)

	assert.NotContains(t, redacted, "sk-verysecret")
	assert.Contains(t, redacted, "OPENAI_KEY")
	assert.Contains(t, redacted, "eu-west-1")
	assert.Contains(t, redacted, "support-bot")
}

func TestRedactSecretsNested(t *testing.T) {
	dsl := `nodes:
  - data:
      credentials:
        - name: TOKEN
          value: tok-123
          value_type: secret
`

	redacted, err := RedactSecrets(dsl)
	require.NoError(t, err)
	assert.NotContains(t, redacted, "tok-123")
	assert.Contains(t, redacted, "TOKEN")
}

func TestRedactSecretsInvalidYAML(t *testing.T) {
	_, err := RedactSecrets(":\n  - ]bad")
	assert.Error(t, err)
}
