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

import "vidmash/pkg/catalog"

// fingerprint is the set of stream properties that must be uniform
// for clips to be concatenated without re-encoding.
type fingerprint struct {
	codec  string
	width  int
	height int
	fps    float64
}

func videoFingerprint(v catalog.Video) fingerprint {
	return fingerprint{
		codec:  v.Codec,
		width:  v.Width,
		height: v.Height,
		fps:    v.FPS,
	}
}

// NeedsReEncode decides whether the compilation must re-encode every
// clip. Stream copy is only possible when all source videos share one
// fingerprint that also matches the requested output.
func NeedsReEncode(videos []catalog.Video, req Request) bool {
	if req.ForceReEncode {
		return true
	}
	if len(videos) == 0 {
		return false
	}

	want := fingerprint{
		codec:  string(req.Codec),
		width:  req.OutputWidth,
		height: req.OutputHeight,
		fps:    float64(req.OutputFPS),
	}
	container := videos[0].Container
	for _, v := range videos {
		if videoFingerprint(v) != want || v.Container != container {
			return true
		}
	}
	return false
}
