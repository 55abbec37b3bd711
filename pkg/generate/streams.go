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

package generate

import (
	"errors"
	"fmt"
	"net/url"

	"vidmash/pkg/catalog"
)

// ErrStreamUnresolved no playable URL could be derived for a video.
var ErrStreamUnresolved = errors.New("stream unresolved")

// StreamResolver maps video ids to playable URLs used as encoder
// input. Local videos resolve to their file path, remote videos to a
// streaming URL carrying the API key. No network calls happen here.
type StreamResolver struct {
	StashAddr   string
	StashAPIKey string
}

// URL resolves one video.
func (r StreamResolver) URL(v catalog.Video) (string, error) {
	if !v.IsRemote() {
		return v.FilePath, nil
	}
	if v.StashSceneID == nil {
		return "", fmt.Errorf("video %v: %w: remote video without scene id",
			v.ID, ErrStreamUnresolved)
	}
	return fmt.Sprintf("%s/scene/%d/stream?apikey=%s",
		r.StashAddr, *v.StashSceneID, url.QueryEscape(r.StashAPIKey)), nil
}

// URLs resolves every distinct video, keyed by video id.
func (r StreamResolver) URLs(videos map[string]catalog.Video) (map[string]string, error) {
	urls := make(map[string]string, len(videos))
	for id, v := range videos {
		u, err := r.URL(v)
		if err != nil {
			return nil, err
		}
		urls[id] = u
	}
	return urls, nil
}
