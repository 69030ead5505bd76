// Package aiff writes rendered patches to aiff files.
package aiff

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"

	"pipelined.dev/patch/pcm"
)

// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
var ErrUnsupportedBitDepth = errors.New("only 8, 16, 24 and 32 bit depth is supported")

// Sink saves audio to aiff file.
type Sink struct {
	bitDepth pcm.BitDepth
	file     *os.File
	encoder  *aiff.Encoder
	ib       *audio.IntBuffer
}

// NewSink creates aiff file and returns sink which writes to it.
func NewSink(path string, sampleRate, numChannels int, bitDepth pcm.BitDepth) (*Sink, error) {
	if !bitDepth.Valid() {
		return nil, ErrUnsupportedBitDepth
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Sink{
		bitDepth: bitDepth,
		file:     f,
		encoder:  aiff.NewEncoder(f, sampleRate, int(bitDepth), numChannels),
		ib: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: numChannels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: int(bitDepth),
		},
	}, nil
}

// Write encodes the block.
func (s *Sink) Write(block pcm.Interleaved) error {
	s.ib.Data = block.AsInts(s.bitDepth, s.ib.Data)
	return s.encoder.Write(s.ib)
}

// Close flushes encoder and closes the file.
func (s *Sink) Close() error {
	if err := s.encoder.Close(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("error closing aiff encoder: %w", err)
	}
	return s.file.Close()
}
