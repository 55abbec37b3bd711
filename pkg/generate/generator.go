// Copyright 2022-2024 The Vidmash Authors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package generate turns an arranged clip sequence into the final
// compilation file by driving the external encoder.
package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"vidmash/pkg/catalog"
	"vidmash/pkg/clip"
	"vidmash/pkg/ffmpeg"
	"vidmash/pkg/log"
)

// PaddingType selects the fill for letter/pillar boxing.
type PaddingType string

// Padding types.
const (
	PaddingBlack PaddingType = "black"
)

// Request fully describes one compilation.
type Request struct {
	ID            string                `json:"id"`
	FileName      string                `json:"fileName"`
	Clips         []clip.Clip           `json:"clips"`
	OutputWidth   int                   `json:"outputWidth"`
	OutputHeight  int                   `json:"outputHeight"`
	OutputFPS     int                   `json:"outputFps"`
	SongIDs       []int64               `json:"songIds"`
	MusicVolume   float64               `json:"musicVolume"`
	Codec         ffmpeg.VideoCodec     `json:"videoCodec"`
	Quality       ffmpeg.VideoQuality   `json:"videoQuality"`
	Effort        ffmpeg.EncodingEffort `json:"encodingEffort"`
	ForceReEncode bool                  `json:"forceReEncode"`
	Padding       PaddingType           `json:"padding,omitempty"`
}

// TotalDuration returns the summed clip durations.
func (r Request) TotalDuration() float64 {
	var total float64
	for _, c := range r.Clips {
		total += c.Duration()
	}
	return total
}

// VideoIDs returns the distinct video ids, sorted.
func (r Request) VideoIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, c := range r.Clips {
		if _, ok := seen[c.VideoID]; !ok {
			seen[c.VideoID] = struct{}{}
			ids = append(ids, c.VideoID)
		}
	}
	sort.Strings(ids)
	return ids
}

// Catalog is the slice of the metadata store the generator needs.
type Catalog interface {
	Videos(ids []string) (map[string]catalog.Video, error)
	Songs(ids []int64) ([]catalog.Song, error)
}

// ProgressPublisher persists progress snapshots keyed by compilation id.
type ProgressPublisher interface {
	InsertProgress(id string, itemsTotal float64, message string) error
	UpdateProgress(id string, increment, etaSeconds float64, message string) error
	FinishProgress(id string) error
	FailProgress(id string, errorMessage string) error
}

// Generator encodes one file per clip, then concatenates them into
// the final compilation, optionally mixing a music track. Clip files
// are cached under content-addressable names, so re-running a
// compilation skips already-materialized clips.
type Generator struct {
	TempVideoDir   string
	MusicDir       string
	CompilationDir string

	FFmpeg     *ffmpeg.FFMPEG
	NewProcess ffmpeg.NewProcessFunc

	Catalog  Catalog
	Progress ProgressPublisher
	Streams  StreamResolver

	Log *log.Logger

	// now is used for ETA computation, overridable in tests.
	now func() time.Time
}

// NewGenerator returns a generator.
func NewGenerator(
	tempVideoDir string,
	musicDir string,
	compilationDir string,
	ffm *ffmpeg.FFMPEG,
	cat Catalog,
	progress ProgressPublisher,
	streams StreamResolver,
	logger *log.Logger,
) *Generator {
	return &Generator{
		TempVideoDir:   tempVideoDir,
		MusicDir:       musicDir,
		CompilationDir: compilationDir,
		FFmpeg:         ffm,
		NewProcess:     ffmpeg.NewProcess,
		Catalog:        cat,
		Progress:       progress,
		Streams:        streams,
		Log:            logger,
		now:            time.Now,
	}
}

func (g *Generator) logf(level log.Level, id, format string, a ...interface{}) {
	g.Log.Level(level).Src("generate").Compilation(id).Msgf(format, a...)
}

// ClipFileName is the cache filename contract. Identical inputs yield
// an identical name, which makes re-runs resumable.
func ClipFileName(videoID string, start, end float64, codec ffmpeg.VideoCodec, width, height int) string {
	return fmt.Sprintf("%s_%s-%s-%s-%dx%d.mp4",
		videoID,
		ffmpeg.FormatFloat(start),
		ffmpeg.FormatFloat(end),
		codec,
		width, height)
}

// formatDuration renders seconds as [H:]MM:SS.
func formatDuration(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func (g *Generator) runFFmpeg(ctx context.Context, id, dir string, args []string) error {
	cmd := g.FFmpeg.Command(dir, args...)
	process := g.NewProcess(cmd)
	process.SetLogFunc(func(msg string) {
		g.logf(log.LevelDebug, id, "running command: %v", msg)
	})
	return process.Start(ctx)
}

// GatherClips materializes one file per clip and returns the paths in
// clip order.
func (g *Generator) GatherClips(ctx context.Context, req *Request) ([]string, error) {
	totalDuration := req.TotalDuration()
	err := g.Progress.InsertProgress(req.ID, totalDuration, "Starting...")
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(g.TempVideoDir, 0o700); err != nil && !os.IsExist(err) {
		return nil, fmt.Errorf("could not create temp video directory: %w", err)
	}

	videos, err := g.Catalog.Videos(req.VideoIDs())
	if err != nil {
		return nil, err
	}
	streamURLs, err := g.Streams.URLs(videos)
	if err != nil {
		return nil, err
	}

	videoList := make([]catalog.Video, 0, len(videos))
	for _, v := range videos {
		videoList = append(videoList, v)
	}
	reEncode := NeedsReEncode(videoList, *req)
	g.logf(log.LevelInfo, req.ID, "re-encoding clips: %v", reEncode)

	estimator := NewEstimator(g.now())
	var completed float64
	var paths []string
	for i, c := range req.Clips {
		outFile := filepath.Join(g.TempVideoDir, ClipFileName(
			c.VideoID, c.Range[0], c.Range[1],
			req.Codec, req.OutputWidth, req.OutputHeight))

		if _, err := os.Stat(outFile); os.IsNotExist(err) {
			g.logf(log.LevelInfo, req.ID,
				"creating clip %v/%v at %v", i+1, len(req.Clips), filepath.Base(outFile))

			args := ffmpeg.ClipArgs{
				URL:      streamURLs[c.VideoID],
				Start:    c.Range[0],
				Duration: c.Duration(),
				Width:    req.OutputWidth,
				Height:   req.OutputHeight,
				FPS:      req.OutputFPS,
				Codec:    req.Codec,
				Quality:  req.Quality,
				Effort:   req.Effort,
				ReEncode: reEncode,
				PadColor: string(req.Padding),
				OutFile:  outFile,
			}.Args()
			if err := g.runFFmpeg(ctx, req.ID, g.TempVideoDir, args); err != nil {
				return nil, fmt.Errorf("create clip: %w", err)
			}
		} else {
			g.logf(log.LevelInfo, req.ID,
				"clip %v already exists, skipping", filepath.Base(outFile))
		}

		completed += c.Duration()
		now := g.now()
		estimator.Record(completed, now)
		eta := estimator.ETA(totalDuration, now)

		message := fmt.Sprintf("Encoding clip for marker '%s' from %s to %s",
			c.MarkerTitle, formatDuration(c.Range[0]), formatDuration(c.Range[1]))
		err := g.Progress.UpdateProgress(req.ID, c.Duration(), eta, message)
		if err != nil {
			return nil, err
		}

		paths = append(paths, outFile)
	}

	return paths, nil
}

// concatSongs stitches multiple songs into one AAC track inside a
// per-compilation music directory.
func (g *Generator) concatSongs(ctx context.Context, req *Request, songs []catalog.Song) (string, error) {
	musicDir := filepath.Join(g.MusicDir, req.ID)
	if err := os.MkdirAll(musicDir, 0o700); err != nil && !os.IsExist(err) {
		return "", fmt.Errorf("could not create music directory: %w", err)
	}

	lines := make([]string, 0, len(songs))
	for _, song := range songs {
		lines = append(lines, fmt.Sprintf("file '%s'", song.FilePath))
	}
	listPath := filepath.Join(musicDir, "songs.txt")
	err := os.WriteFile(listPath, []byte(strings.Join(lines, "\n")), 0o600)
	if err != nil {
		return "", fmt.Errorf("write songs.txt: %w", err)
	}

	destination := filepath.Join(musicDir, req.ID+".aac")
	args := ffmpeg.ConcatSongsArgs("songs.txt", destination)
	if err := g.runFFmpeg(ctx, req.ID, musicDir, args); err != nil {
		return "", fmt.Errorf("concat songs: %w", err)
	}

	err = g.Progress.UpdateProgress(req.ID, 0, 0, "Stitching together songs")
	if err != nil {
		return "", err
	}
	return destination, nil
}

// CompileClips concatenates the materialized clip files into the
// final compilation, mixing in music when songs were requested.
func (g *Generator) CompileClips(ctx context.Context, req *Request, clipPaths []string) (string, error) {
	g.logf(log.LevelInfo, req.ID,
		"assembling %v clips into video with file name '%v'", len(clipPaths), req.FileName)

	lines := make([]string, 0, len(clipPaths))
	for _, path := range clipPaths {
		lines = append(lines, fmt.Sprintf("file '%s'", filepath.Base(path)))
	}
	listPath := filepath.Join(g.TempVideoDir, "clips.txt")
	err := os.WriteFile(listPath, []byte(strings.Join(lines, "\n")), 0o600)
	if err != nil {
		return "", fmt.Errorf("write clips.txt: %w", err)
	}

	if err := os.MkdirAll(g.CompilationDir, 0o700); err != nil && !os.IsExist(err) {
		return "", fmt.Errorf("could not create compilation directory: %w", err)
	}
	destination := filepath.Join(g.CompilationDir, req.FileName)

	var args []string
	if len(req.SongIDs) == 0 {
		args = ffmpeg.ConcatArgs("clips.txt", destination)
	} else {
		songs, err := g.Catalog.Songs(req.SongIDs)
		if err != nil {
			return "", err
		}

		var audioPath string
		if len(songs) >= 2 {
			audioPath, err = g.concatSongs(ctx, req, songs)
			if err != nil {
				return "", err
			}
		} else {
			audioPath = songs[0].FilePath
		}
		g.logf(log.LevelInfo, req.ID, "using audio from %v", audioPath)

		args = ffmpeg.MusicMixArgs("clips.txt", audioPath, req.MusicVolume, destination)
	}

	if err := g.runFFmpeg(ctx, req.ID, g.TempVideoDir, args); err != nil {
		return "", fmt.Errorf("concat clips: %w", err)
	}

	g.logf(log.LevelInfo, req.ID, "finished assembling video, result at %v", destination)
	err = g.Progress.UpdateProgress(req.ID, 0, 0, "Compiling clips together")
	if err != nil {
		return "", err
	}
	if err := g.Progress.FinishProgress(req.ID); err != nil {
		return "", err
	}
	return destination, nil
}

// Generate runs the full pipeline. Failures are logged, and recorded
// on the progress row unless the context was canceled.
func (g *Generator) Generate(ctx context.Context, req *Request) (string, error) {
	clipPaths, err := g.GatherClips(ctx, req)
	if err == nil {
		var destination string
		destination, err = g.CompileClips(ctx, req, clipPaths)
		if err == nil {
			return destination, nil
		}
	}

	g.logf(log.LevelError, req.ID, "generation failed: %v", err)
	if ctx.Err() == nil {
		if err2 := g.Progress.FailProgress(req.ID, err.Error()); err2 != nil {
			g.logf(log.LevelError, req.ID, "could not record failure: %v", err2)
		}
	}
	return "", err
}
