package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"vidmash/pkg/clip"

	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestVideoRoundTrip(t *testing.T) {
	db := testDB(t)

	sceneID := int64(7)
	video := Video{
		ID:           "v1",
		Title:        "test video",
		FilePath:     "/videos/v1.mp4",
		Duration:     120.5,
		Codec:        "h264",
		Width:        1920,
		Height:       1080,
		FPS:          29.97,
		Container:    "mp4",
		Source:       clip.SourceStash,
		StashSceneID: &sceneID,
		Interactive:  true,
	}
	require.NoError(t, db.InsertVideo(video))

	got, err := db.Video("v1")
	require.NoError(t, err)
	require.Equal(t, video, got)
	require.True(t, got.IsRemote())

	_, err = db.Video("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVideosDistinct(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.InsertVideo(Video{ID: "v1", Source: clip.SourceFolder}))

	videos, err := db.Videos([]string{"v1", "v1"})
	require.NoError(t, err)
	require.Len(t, videos, 1)
}

func TestMarkerRoundTrip(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.InsertVideo(Video{ID: "v1", Source: clip.SourceFolder}))

	id, err := db.InsertMarker(Marker{
		VideoID:          "v1",
		Title:            "intro",
		StartTime:        1,
		EndTime:          15,
		IndexWithinVideo: 0,
	})
	require.NoError(t, err)

	marker, err := db.Marker(id)
	require.NoError(t, err)
	require.Equal(t, "intro", marker.Title)
	require.Equal(t, 15.0, marker.EndTime)

	markers, err := db.MarkersByVideo("v1")
	require.NoError(t, err)
	require.Len(t, markers, 1)

	_, err = db.Marker(9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSongRoundTrip(t *testing.T) {
	db := testDB(t)

	song := Song{
		FilePath: "/music/track.mp3",
		Duration: 180,
		Beats: &clip.Beats{
			Length:  180,
			Offsets: []float64{0, 0.5, 1},
		},
	}
	id, err := db.InsertSong(song)
	require.NoError(t, err)

	got, err := db.Song(id)
	require.NoError(t, err)
	require.Equal(t, song.FilePath, got.FilePath)
	require.Equal(t, song.Beats, got.Beats)

	songs, err := db.Songs([]int64{id, id})
	require.NoError(t, err)
	require.Len(t, songs, 2)

	_, err = db.Song(9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProgressLifecycle(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.InsertProgress("c1", 100, "Starting..."))

	progress, err := db.Progress("c1")
	require.NoError(t, err)
	require.Equal(t, 100.0, progress.ItemsTotal)
	require.Equal(t, 0.0, progress.ItemsFinished)
	require.False(t, progress.Done)

	require.NoError(t, db.UpdateProgress("c1", 10, 60, "Encoding videos"))
	require.NoError(t, db.UpdateProgress("c1", 15, 45, "Encoding videos"))

	progress, err = db.Progress("c1")
	require.NoError(t, err)
	require.Equal(t, 25.0, progress.ItemsFinished)
	require.NotNil(t, progress.ETASeconds)
	require.Equal(t, 45.0, *progress.ETASeconds)
	require.Equal(t, "Encoding videos", progress.Message)

	require.NoError(t, db.FinishProgress("c1"))
	progress, err = db.Progress("c1")
	require.NoError(t, err)
	require.True(t, progress.Done)
	require.Equal(t, progress.ItemsTotal, progress.ItemsFinished)

	_, err = db.Progress("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProgressFailure(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.InsertProgress("c1", 100, "Starting..."))
	require.NoError(t, db.FailProgress("c1", "encoder exited with status 1"))

	progress, err := db.Progress("c1")
	require.NoError(t, err)
	require.False(t, progress.Done)
	require.Equal(t, "encoder exited with status 1", progress.ErrorMessage)
}

func TestCleanupProgress(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.InsertProgress("old", 1, ""))
	require.NoError(t, db.FinishProgress("old"))
	require.NoError(t, db.InsertProgress("recent", 1, ""))
	require.NoError(t, db.FinishProgress("recent"))
	require.NoError(t, db.InsertProgress("running", 1, ""))

	// Back-date the first row past the retention window.
	_, err := db.db.Exec("UPDATE progress SET timestamp = ? WHERE id = 'old'",
		time.Now().UTC().Add(-8*24*time.Hour))
	require.NoError(t, err)

	require.NoError(t, db.CleanupProgress(7*24*time.Hour))

	_, err = db.Progress("old")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = db.Progress("recent")
	require.NoError(t, err)
	_, err = db.Progress("running")
	require.NoError(t, err)
}
