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

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vidmash/pkg/catalog"
	"vidmash/pkg/clip"
	"vidmash/pkg/funscript"
	"vidmash/pkg/generate"
	"vidmash/pkg/log"
	"vidmash/pkg/storage"
	"vidmash/pkg/system"
	"vidmash/pkg/web/auth"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Static serves the frontend files.
func Static(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")

		h := http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))
		h.ServeHTTP(w, r)
	})
}

// Compilations serves finished compilation files.
func Compilations(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}
		h := http.StripPrefix("/compilations/", http.FileServer(http.Dir(dir)))
		h.ServeHTTP(w, r)
	})
}

// Status returns system status.
func Status(sys *system.System) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(sys.Status()); err != nil {
			http.Error(w, "could not encode json", http.StatusInternalServerError)
		}
	})
}

// General handler returns general configuration in json format.
func General(general *storage.ConfigGeneral) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}

		j, err := json.Marshal(general.Get())
		if err != nil {
			http.Error(w, "failed to marshal general config", http.StatusInternalServerError)
			return
		}
		if _, err := w.Write(j); err != nil {
			http.Error(w, "could not write data", http.StatusInternalServerError)
		}
	})
}

// GeneralSet handler to set general configuration.
func GeneralSet(general *storage.ConfigGeneral) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		var config storage.GeneralConfig
		if err = json.Unmarshal(body, &config); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if config.DiskSpace == "" {
			http.Error(w, "DiskSpace missing", http.StatusBadRequest)
			return
		}

		if err := general.Set(config); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// Users returns a censored user list in json format.
func Users(a *auth.Authenticator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}
		j, err := json.Marshal(a.UsersList())
		if err != nil {
			http.Error(w, "failed to marshal user list", http.StatusInternalServerError)
			return
		}
		if _, err := w.Write(j); err != nil {
			http.Error(w, "could not write data", http.StatusInternalServerError)
		}
	})
}

// UserSet handler to set user details.
func UserSet(a *auth.Authenticator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		var user auth.Account
		if err = json.Unmarshal(body, &user); err != nil {
			http.Error(w, "unmarshal error: "+err.Error(), http.StatusBadRequest)
			return
		}

		if err := a.UserSet(user); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	})
}

// UserDelete handler to delete user.
func UserDelete(a *auth.Authenticator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}

		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id missing", http.StatusBadRequest)
			return
		}

		if err := a.UserDelete(id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// SelectedMarker is the user's chosen subrange of a catalog marker.
type SelectedMarker struct {
	ID            int64      `json:"id"`
	SelectedRange [2]float64 `json:"selectedRange"`
	Loops         int        `json:"loops"`
}

// CreateClipsBody is the request body of the clips endpoint.
type CreateClipsBody struct {
	Markers []SelectedMarker   `json:"markers"`
	Seed    string             `json:"seed"`
	Picker  clip.PickerOptions `json:"clipPicker"`
	Order   clip.OrderOptions  `json:"order"`
}

// ClipsResponse is the response of the clips endpoint.
type ClipsResponse struct {
	Clips       []clip.Clip       `json:"clips"`
	Streams     map[string]string `json:"streams"`
	Videos      []catalog.Video   `json:"videos"`
	BeatOffsets []float64         `json:"beatOffsets,omitempty"`
}

// resolveMarkers expands selected markers into arrangement inputs
// using the catalog rows.
func resolveMarkers(db *catalog.DB, selected []SelectedMarker) ([]clip.Marker, []catalog.Video, error) {
	markers := make([]clip.Marker, 0, len(selected))
	videos := make(map[string]catalog.Video)
	var videoList []catalog.Video

	for _, s := range selected {
		row, err := db.Marker(s.ID)
		if err != nil {
			return nil, nil, err
		}
		video, ok := videos[row.VideoID]
		if !ok {
			video, err = db.Video(row.VideoID)
			if err != nil {
				return nil, nil, err
			}
			videos[row.VideoID] = video
			videoList = append(videoList, video)
		}

		start, end := s.SelectedRange[0], s.SelectedRange[1]
		if start < row.StartTime {
			start = row.StartTime
		}
		if end > row.EndTime || end <= start {
			end = row.EndTime
		}
		loops := s.Loops
		if loops < 1 {
			loops = 1
		}

		markers = append(markers, clip.Marker{
			ID:               row.ID,
			VideoID:          row.VideoID,
			Title:            row.Title,
			StartTime:        start,
			EndTime:          end,
			IndexWithinVideo: row.IndexWithinVideo,
			Loops:            loops,
			Source:           video.Source,
		})
	}
	return markers, videoList, nil
}

// CreateClips arranges the selected markers into a clip sequence.
func CreateClips(db *catalog.DB, streams generate.StreamResolver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}

		var body CreateClipsBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if body.Seed == "" {
			body.Seed = uuid.NewString()
		}

		markers, videos, err := resolveMarkers(db, body.Markers)
		if err != nil {
			httpError(w, err)
			return
		}

		result, err := clip.Arrange(clip.ArrangeOptions{
			Markers: markers,
			Seed:    body.Seed,
			Picker:  body.Picker,
			Order:   body.Order,
		})
		if err != nil {
			httpError(w, err)
			return
		}

		streamURLs := make(map[string]string, len(videos))
		for _, v := range videos {
			u, err := streams.URL(v)
			if err != nil {
				httpError(w, err)
				return
			}
			streamURLs[v.ID] = u
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(ClipsResponse{
			Clips:       result.Clips,
			Streams:     streamURLs,
			Videos:      videos,
			BeatOffsets: result.BeatOffsets,
		})
		if err != nil {
			http.Error(w, "could not encode json", http.StatusInternalServerError)
		}
	})
}

// CreateResponse is the response of the create endpoint.
type CreateResponse struct {
	FinalFileName string `json:"finalFileName"`
}

// CreateCompilation starts the generator as a background task and
// returns the final file name immediately.
func CreateCompilation(ctx context.Context, generator *generate.Generator, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}

		var req generate.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Clips) == 0 {
			http.Error(w, "clips missing", http.StatusBadRequest)
			return
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		if req.FileName == "" {
			req.FileName = req.ID + ".mp4"
		}

		go func() {
			if _, err := generator.Generate(ctx, &req); err != nil {
				logger.Error().Src("web").Compilation(req.ID).
					Msgf("compilation failed: %v", err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(CreateResponse{FinalFileName: req.FileName})
		if err != nil {
			http.Error(w, "could not encode json", http.StatusInternalServerError)
		}
	})
}

// progressID extracts the id from /api/progress/{id}/{verb}.
func progressID(path string) (string, string) {
	trimmed := strings.TrimPrefix(path, "/api/progress/")
	id, verb, found := strings.Cut(trimmed, "/")
	if !found {
		return "", ""
	}
	return id, verb
}

// Progress serves progress info and the SSE stream.
func Progress(db *catalog.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}

		id, verb := progressID(r.URL.Path)
		if id == "" {
			http.Error(w, "id missing", http.StatusBadRequest)
			return
		}

		switch verb {
		case "info":
			progress, err := db.Progress(id)
			if err != nil {
				httpError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(progress); err != nil {
				http.Error(w, "could not encode json", http.StatusInternalServerError)
			}
		case "stream":
			streamProgress(w, r, db, id)
		default:
			http.NotFound(w, r)
		}
	})
}

// streamProgress sends the progress row as server-sent events until
// the compilation is done or the client disconnects.
func streamProgress(w http.ResponseWriter, r *http.Request, db *catalog.DB, id string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			progress, err := db.Progress(id)
			if err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					continue
				}
				return
			}

			j, err := json.Marshal(progress)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", j); err != nil {
				return
			}
			flusher.Flush()

			if progress.Done {
				return
			}
		}
	}
}

// FunscriptCombined builds a haptic script mirroring the clip
// timeline, from the source videos' sidecar scripts.
func FunscriptCombined(db *catalog.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}

		var body struct {
			Clips []clip.Clip `json:"clips"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		script := funscript.CombineForClips(body.Clips, func(videoID string) (funscript.Script, bool) {
			video, err := db.Video(videoID)
			if err != nil {
				return funscript.Script{}, false
			}
			path := strings.TrimSuffix(video.FilePath, ".mp4") + ".funscript"
			s, err := funscript.Load(path)
			if err != nil {
				return funscript.Script{}, false
			}
			return s, true
		})

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(script); err != nil {
			http.Error(w, "could not encode json", http.StatusInternalServerError)
		}
	})
}

// FunscriptBeat builds a haptic script from the songs' beat grids.
func FunscriptBeat(db *catalog.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
			return
		}

		var body struct {
			SongIDs    []int64              `json:"songIds"`
			StrokeType funscript.StrokeType `json:"strokeType"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		songs, err := db.Songs(body.SongIDs)
		if err != nil {
			httpError(w, err)
			return
		}
		var beats []clip.Beats
		for _, song := range songs {
			if song.Beats == nil {
				http.Error(w, "song "+strconv.FormatInt(song.ID, 10)+" has no beats",
					http.StatusBadRequest)
				return
			}
			beats = append(beats, *song.Beats)
		}

		script := funscript.CreateBeat(beats, body.StrokeType)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(script); err != nil {
			http.Error(w, "could not encode json", http.StatusInternalServerError)
		}
	})
}

// Logs opens a websocket with system logs.
func Logs(logger *log.Logger, a *auth.Authenticator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer c.Close()

		feed, cancel := logger.Subscribe()
		defer cancel()

		authHeader := r.Header.Get("Authorization")
		for {
			entry := <-feed

			// Validate auth before each message.
			res := a.ValidateAuth(authHeader)
			if !res.IsValid || !res.User.IsAdmin {
				return
			}

			j, err := json.Marshal(entry)
			if err != nil {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, j); err != nil {
				return
			}
		}
	})
}

func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, clip.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
