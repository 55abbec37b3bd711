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

package ffmpeg

import (
	"fmt"
	"strconv"
)

// VideoCodec is the output video codec.
type VideoCodec string

// Supported codecs.
const (
	CodecH264 VideoCodec = "h264"
	CodecH265 VideoCodec = "h265"
	CodecAV1  VideoCodec = "av1"
)

// VideoQuality maps to a codec-specific CRF.
type VideoQuality string

// Quality levels.
const (
	QualityLow      VideoQuality = "low"
	QualityMedium   VideoQuality = "medium"
	QualityHigh     VideoQuality = "high"
	QualityLossless VideoQuality = "lossless"
)

// EncodingEffort maps to an encoder preset.
type EncodingEffort string

// Effort levels.
const (
	EffortLow    EncodingEffort = "low"
	EffortMedium EncodingEffort = "medium"
	EffortHigh   EncodingEffort = "high"
)

// EncodingParams returns the encoder, preset and CRF arguments for
// the codec, quality and effort combination.
func EncodingParams(codec VideoCodec, quality VideoQuality, effort EncodingEffort) []string {
	var encoder string
	switch codec {
	case CodecH264:
		encoder = "libx264"
	case CodecH265:
		encoder = "libx265"
	case CodecAV1:
		encoder = "libsvtav1"
	}

	var preset string
	if codec == CodecAV1 {
		switch effort {
		case EffortLow:
			preset = "3"
		case EffortMedium:
			preset = "7"
		case EffortHigh:
			preset = "10"
		}
	} else {
		switch effort {
		case EffortLow:
			preset = "veryfast"
		case EffortMedium:
			preset = "medium"
		case EffortHigh:
			preset = "slow"
		}
	}

	var crf string
	switch codec {
	case CodecH264:
		switch quality {
		case QualityLow:
			crf = "28"
		case QualityMedium:
			crf = "24"
		case QualityHigh:
			crf = "19"
		case QualityLossless:
			crf = "16"
		}
	case CodecH265:
		switch quality {
		case QualityLow:
			crf = "32"
		case QualityMedium:
			crf = "28"
		case QualityHigh:
			crf = "24"
		case QualityLossless:
			crf = "16"
		}
	case CodecAV1:
		switch quality {
		case QualityLow:
			crf = "35"
		case QualityMedium:
			crf = "30"
		case QualityHigh:
			crf = "26"
		case QualityLossless:
			crf = "20"
		}
	}

	return []string{"-c:v", encoder, "-preset", preset, "-crf", crf}
}

// FormatFloat renders a float the shortest way that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ClipArgs describes one clip materialization.
type ClipArgs struct {
	URL      string
	Start    float64
	Duration float64
	Width    int
	Height   int
	FPS      int
	Codec    VideoCodec
	Quality  VideoQuality
	Effort   EncodingEffort
	ReEncode bool
	PadColor string
	OutFile  string
}

// Args builds the full encoder invocation. Without re-encoding, video
// and audio streams are copied as-is.
func (c ClipArgs) Args() []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "warning",
		"-ss", FormatFloat(c.Start),
		"-i", c.URL,
		"-t", FormatFloat(c.Duration),
	}
	if c.ReEncode {
		padColor := c.PadColor
		if padColor == "" {
			padColor = "black"
		}
		filter := fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:-1:-1:color=%s,fps=%d",
			c.Width, c.Height, c.Width, c.Height, padColor, c.FPS)

		args = append(args, EncodingParams(c.Codec, c.Quality, c.Effort)...)
		args = append(args, "-c:a", "aac", "-vf", filter, "-ar", "48000")
	} else {
		args = append(args, "-c:v", "copy", "-c:a", "copy")
	}
	return append(args, c.OutFile)
}

// ConcatArgs concatenates the listed clip files by stream copy.
func ConcatArgs(listFile, destination string) []string {
	return []string{
		"-hide_banner",
		"-y",
		"-loglevel", "warning",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		destination,
	}
}

// MusicMixArgs concatenates the listed clip files and mixes the
// compilation audio with the music track at the given volume.
func MusicMixArgs(listFile, audioPath string, musicVolume float64, destination string) []string {
	filter := fmt.Sprintf(
		"[0:a:0]volume=%s[a1];[1:a:0]volume=%s[a2];[a1][a2]amix=inputs=2[a]",
		FormatFloat(1-musicVolume), FormatFloat(musicVolume))

	return []string{
		"-hide_banner",
		"-y",
		"-loglevel", "warning",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-i", audioPath,
		"-filter_complex", filter,
		"-map", "0:v:0",
		"-map", "[a]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "128k",
		destination,
	}
}

// ConcatSongsArgs re-encodes the listed songs into one AAC track.
func ConcatSongsArgs(listFile, destination string) []string {
	return []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c:a", "aac",
		"-b:a", "128k",
		destination,
	}
}
