package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"vidmash/pkg/catalog"
	"vidmash/pkg/clip"
	"vidmash/pkg/ffmpeg"
	"vidmash/pkg/ffmpeg/ffmock"
	"vidmash/pkg/generate"
	"vidmash/pkg/log"

	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	logger := log.NewMockLogger()
	require.NoError(t, logger.Start(ctx))
	return logger
}

func testCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	db, err := catalog.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.InsertVideo(catalog.Video{
		ID:       "v1",
		Title:    "video one",
		FilePath: "/videos/v1.mp4",
		Duration: 60,
		Source:   clip.SourceFolder,
	}))
	return db
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	j, err := json.Marshal(body)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(j))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestCreateClips(t *testing.T) {
	db := testCatalog(t)
	m1, err := db.InsertMarker(catalog.Marker{
		VideoID: "v1", Title: "intro", StartTime: 1, EndTime: 15})
	require.NoError(t, err)
	m2, err := db.InsertMarker(catalog.Marker{
		VideoID: "v1", Title: "outro", StartTime: 20, EndTime: 40, IndexWithinVideo: 1})
	require.NoError(t, err)

	handler := CreateClips(db, generate.StreamResolver{})
	w := postJSON(t, handler, "/api/clips", CreateClipsBody{
		Markers: []SelectedMarker{
			{ID: m1, SelectedRange: [2]float64{1, 15}, Loops: 1},
			{ID: m2, SelectedRange: [2]float64{20, 40}, Loops: 1},
		},
		Seed:   "fixed",
		Picker: clip.PickerOptions{Type: clip.PickNoSplit},
		Order:  clip.OrderOptions{Type: clip.OrderSceneOrder},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ClipsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Clips, 2)
	require.Equal(t, [2]float64{1, 15}, resp.Clips[0].Range)
	require.Equal(t, "intro", resp.Clips[0].MarkerTitle)
	require.Equal(t, "/videos/v1.mp4", resp.Streams["v1"])
	require.Len(t, resp.Videos, 1)
}

func TestCreateClipsUnknownMarker(t *testing.T) {
	db := testCatalog(t)
	handler := CreateClips(db, generate.StreamResolver{})
	w := postJSON(t, handler, "/api/clips", CreateClipsBody{
		Markers: []SelectedMarker{{ID: 999, Loops: 1}},
		Picker:  clip.PickerOptions{Type: clip.PickNoSplit},
		Order:   clip.OrderOptions{Type: clip.OrderNoOp},
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCompilation(t *testing.T) {
	db := testCatalog(t)
	tempDir := t.TempDir()

	generator := generate.NewGenerator(
		filepath.Join(tempDir, "videos"),
		filepath.Join(tempDir, "music"),
		filepath.Join(tempDir, "compilations"),
		ffmpeg.New("/usr/bin/ffmpeg"),
		db,
		db,
		generate.StreamResolver{},
		testLogger(t),
	)
	generator.NewProcess = ffmock.NewProcessNil

	handler := CreateCompilation(context.Background(), generator, testLogger(t))
	w := postJSON(t, handler, "/api/create", generate.Request{
		ID: "comp1",
		Clips: []clip.Clip{
			{VideoID: "v1", MarkerTitle: "intro", Range: [2]float64{0, 5}},
		},
		OutputWidth:  1280,
		OutputHeight: 720,
		OutputFPS:    30,
		Codec:        ffmpeg.CodecH264,
		Quality:      ffmpeg.QualityMedium,
		Effort:       ffmpeg.EffortMedium,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp CreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "comp1.mp4", resp.FinalFileName)

	require.Eventually(t, func() bool {
		progress, err := db.Progress("comp1")
		return err == nil && progress.Done
	}, 5*time.Second, 10*time.Millisecond)
}

func TestProgressInfo(t *testing.T) {
	db := testCatalog(t)
	require.NoError(t, db.InsertProgress("c1", 100, "Starting..."))

	handler := Progress(db)
	r := httptest.NewRequest(http.MethodGet, "/api/progress/c1/info", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var progress catalog.Progress
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progress))
	require.Equal(t, "c1", progress.ID)
	require.Equal(t, 100.0, progress.ItemsTotal)

	r = httptest.NewRequest(http.MethodGet, "/api/progress/missing/info", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProgressID(t *testing.T) {
	id, verb := progressID("/api/progress/abc/info")
	require.Equal(t, "abc", id)
	require.Equal(t, "info", verb)

	id, _ = progressID("/api/progress/abc")
	require.Empty(t, id)
}

func TestFunscriptBeat(t *testing.T) {
	db := testCatalog(t)
	songID, err := db.InsertSong(catalog.Song{
		FilePath: "/music/track.mp3",
		Duration: 3,
		Beats: &clip.Beats{
			Length:  3,
			Offsets: []float64{0, 1, 2, 3},
		},
	})
	require.NoError(t, err)

	handler := FunscriptBeat(db)
	w := postJSON(t, handler, "/api/funscript/beat", map[string]interface{}{
		"songIds":    []int64{songID},
		"strokeType": map[string]interface{}{"type": "everyNth", "n": 1},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var script struct {
		Actions []struct {
			Pos int    `json:"pos"`
			At  uint32 `json:"at"`
		} `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &script))
	require.Len(t, script.Actions, 4)
}
