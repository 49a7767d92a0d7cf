package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"herdcore/internal/blob"
	"herdcore/internal/breeding"
	"herdcore/pkg/domain"
)

func TestArchiveRunRoundTrip(t *testing.T) {
	store := blob.NewMemory()
	generated := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	archiver := NewArchiver(store, nil).WithClock(func() time.Time { return generated })
	archiver.newID = func() string { return "run-123" }
	ctx := context.Background()

	results := []domain.ScoreResult{
		{AnimalID: "f-1", Score: 97.0},
		{AnimalID: "f-2", Score: 61.5},
	}
	info, err := archiver.ArchiveRun(ctx, breeding.RankRequest{PropertyID: "prop-1", Sex: domain.SexFemale}, results)
	require.NoError(t, err)
	require.Equal(t, "recommendations/prop-1/run-123.json", info.Key)
	require.Equal(t, "application/json", info.ContentType)
	require.Equal(t, "2", info.Metadata["result_count"])
	require.Equal(t, "prop-1", info.Metadata["property_id"])

	doc, err := archiver.LoadRun(ctx, info.Key)
	require.NoError(t, err)
	require.Equal(t, "run-123", doc.RunID)
	require.Equal(t, "prop-1", doc.PropertyID)
	require.True(t, doc.GeneratedAt.Equal(generated))
	require.Len(t, doc.Results, 2)
	require.Equal(t, "f-1", doc.Results[0].AnimalID)
}

func TestListRunsScopedToProperty(t *testing.T) {
	store := blob.NewMemory()
	archiver := NewArchiver(store, nil)
	ctx := context.Background()

	_, err := archiver.ArchiveRun(ctx, breeding.RankRequest{PropertyID: "prop-1"}, nil)
	require.NoError(t, err)
	_, err = archiver.ArchiveRun(ctx, breeding.RankRequest{PropertyID: "prop-1"}, nil)
	require.NoError(t, err)
	_, err = archiver.ArchiveRun(ctx, breeding.RankRequest{PropertyID: "prop-2"}, nil)
	require.NoError(t, err)

	runs, err := archiver.ListRuns(ctx, "prop-1")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		require.Contains(t, run.Key, "recommendations/prop-1/")
	}
}

func TestLoadRunMissingKey(t *testing.T) {
	archiver := NewArchiver(blob.NewMemory(), nil)
	_, err := archiver.LoadRun(context.Background(), "recommendations/prop-1/absent.json")
	require.Error(t, err)
}
