// Package wav writes rendered patches to wav files.
package wav

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"pipelined.dev/patch/pcm"
)

// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
var ErrUnsupportedBitDepth = errors.New("only 8, 16, 24 and 32 bit depth is supported")

// format is PCM wav audio format.
const format = 1

type (
	// Sink saves audio to wav file.
	Sink struct {
		bitDepth pcm.BitDepth
		file     *os.File
		encoder  *wav.Encoder
		ib       *audio.IntBuffer
	}

	// Clip is a decoded wav file.
	Clip struct {
		pcm.Interleaved
		SampleRate int
		BitDepth   pcm.BitDepth
	}
)

// NewSink creates wav file and returns sink which writes to it.
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
		encoder:  wav.NewEncoder(f, sampleRate, int(bitDepth), numChannels, format),
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
		return fmt.Errorf("error closing wav encoder: %w", err)
	}
	return s.file.Close()
}

// Load decodes the whole wav file.
func Load(path string) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return Clip{}, fmt.Errorf("wav %s is not valid", path)
	}
	bitDepth := pcm.BitDepth(decoder.BitDepth)
	if !bitDepth.Valid() {
		return Clip{}, ErrUnsupportedBitDepth
	}
	ib, err := decoder.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("error decoding wav %s: %w", path, err)
	}
	return Clip{
		Interleaved: pcm.FromInts(ib.Data, ib.Format.NumChannels, bitDepth),
		SampleRate:  int(decoder.SampleRate),
		BitDepth:    bitDepth,
	}, nil
}
