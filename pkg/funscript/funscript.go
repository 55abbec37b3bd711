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

// Package funscript builds haptic scripts mirroring the clip timeline
// of a compilation, or following the beat grid of its music.
package funscript

import (
	"encoding/json"
	"fmt"
	"os"

	"vidmash/pkg/clip"
)

// Action is one stroke position.
type Action struct {
	Pos int    `json:"pos"`
	At  uint32 `json:"at"` // Position in the video in milliseconds.
}

// Metadata describes the script.
type Metadata struct {
	Creator     string   `json:"creator"`
	Description string   `json:"description"`
	Duration    int      `json:"duration"`
	Notes       string   `json:"notes"`
	Performers  []string `json:"performers"`
	ScriptURL   string   `json:"script_url"`
	Tags        []string `json:"tags"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	VideoURL    string   `json:"video_url"`
}

// Script is a serializable .funscript file.
type Script struct {
	Version  string    `json:"version"`
	Inverted bool      `json:"inverted"`
	Range    int       `json:"range"`
	Actions  []Action  `json:"actions"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

const creator = "vidmash"

func newScript(actions []Action) Script {
	return Script{
		Range:   -1,
		Actions: actions,
		Metadata: &Metadata{
			Creator: creator,
		},
	}
}

// Load reads a .funscript file.
func Load(path string) (Script, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	var script Script
	if err := json.Unmarshal(text, &script); err != nil {
		return Script{}, fmt.Errorf("unmarshal funscript: %w", err)
	}
	return script, nil
}

// Segment is one clip's slice of a source script.
type Segment struct {
	Script    *Script
	ClipStart uint32 // Milliseconds inside the source video.
	ClipEnd   uint32
	Offset    uint32 // Milliseconds inside the output timeline.
}

// Combine concatenates trimmed segments of the source scripts into
// one script following the output timeline.
func Combine(segments []Segment) Script {
	var actions []Action
	for _, segment := range segments {
		for _, a := range segment.Script.Actions {
			if a.At >= segment.ClipStart && a.At <= segment.ClipEnd {
				actions = append(actions, Action{
					At:  (a.At - segment.ClipStart) + segment.Offset,
					Pos: a.Pos,
				})
			}
		}
	}
	return newScript(actions)
}

// ScriptLookup returns the haptic script of a video, if any.
type ScriptLookup func(videoID string) (Script, bool)

// CombineForClips builds the combined script for an arranged clip
// sequence. Clips without a source script contribute silence but
// still advance the output timeline.
func CombineForClips(clips []clip.Clip, lookup ScriptLookup) Script {
	var offset uint32
	var segments []Segment
	scripts := make(map[string]*Script)

	for _, c := range clips {
		start, end := c.RangeMillis()

		script, ok := scripts[c.VideoID]
		if !ok {
			if s, found := lookup(c.VideoID); found {
				script = &s
			}
			scripts[c.VideoID] = script
		}
		if script != nil {
			segments = append(segments, Segment{
				Script:    script,
				ClipStart: start,
				ClipEnd:   end,
				Offset:    offset,
			})
		}

		offset += end - start
	}
	return Combine(segments)
}
