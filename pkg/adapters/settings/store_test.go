package settings_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/todoroll/pkg/adapters/settings"
	"github.com/aretw0/todoroll/pkg/core"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string // empty means no file
		want    core.Settings
		wantErr error
	}{
		{
			name: "missing file yields defaults",
			want: core.DefaultSettings(),
		},
		{
			name:    "partial file merges over defaults",
			content: `{"generationMode": "daily"}`,
			want:    core.Settings{GenerationMode: core.ModeDaily, NDays: 7, AnchorISODate: core.FallbackAnchor},
		},
		{
			name: "comments and trailing commas",
			content: `{
  // roll every three days
  "generationMode": "everyNDays",
  "nDays": 3,
  "anchorISODate": "2025-01-01",
}`,
			want: core.Settings{GenerationMode: core.ModeEveryNDays, NDays: 3, AnchorISODate: "2025-01-01"},
		},
		{
			name:    "mode is case insensitive",
			content: `{"generationMode": "ONCLICK"}`,
			want:    core.Settings{GenerationMode: core.ModeOnClick, NDays: 7, AnchorISODate: core.FallbackAnchor},
		},
		{
			name:    "nDays below one is normalized",
			content: `{"generationMode": "everyNDays", "nDays": 0}`,
			want:    core.Settings{GenerationMode: core.ModeEveryNDays, NDays: 1, AnchorISODate: core.FallbackAnchor},
		},
		{
			name:    "malformed anchor is kept for the calculator",
			content: `{"anchorISODate": "not-a-date"}`,
			want:    core.Settings{GenerationMode: core.ModeWeekly, NDays: 7, AnchorISODate: "not-a-date"},
		},
		{
			name:    "unknown mode",
			content: `{"generationMode": "wekly"}`,
			wantErr: core.ErrInvalidSettings,
		},
		{
			name:    "broken json",
			content: `{"generationMode": `,
			wantErr: core.ErrInvalidSettings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), settings.FileName)
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			}

			got, err := settings.NewStore(path).Load(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnknownModeSuggestion(t *testing.T) {
	path := filepath.Join(t.TempDir(), settings.FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"generationMode": "wekly"}`), 0644))

	_, err := settings.NewStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "weekly"`)
}

func TestSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".todoroll", settings.FileName)
	store := settings.NewStore(path)

	in := core.Settings{GenerationMode: core.ModeEveryNDays, NDays: 0, AnchorISODate: "2025-03-01"}
	require.NoError(t, store.Save(ctx, in))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in.Normalize(), got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"generationMode": "everyNDays"`)
}

func TestSaveRejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), settings.FileName)
	err := settings.NewStore(path).Save(context.Background(), core.Settings{GenerationMode: "hourly", NDays: 1})
	assert.ErrorIs(t, err, core.ErrInvalidSettings)
	assert.NoFileExists(t, path)
}
