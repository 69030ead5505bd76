// Package mp3 writes rendered patches to mp3 files.
package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/viert/lame"

	"pipelined.dev/patch/pcm"
)

// ErrUnsupportedChannels is returned when block has more than two channels.
var ErrUnsupportedChannels = errors.New("only mono and stereo is supported")

// Sink allows to send data to mp3 files. Mono input is encoded as stereo
// with both channels equal.
type Sink struct {
	numChannels int
	f           *os.File
	wr          *lame.LameWriter
	ints        []int
	buf         []byte
}

// NewSink creates mp3 file and returns sink which writes to it.
func NewSink(path string, sampleRate, numChannels, bitRate, quality int) (*Sink, error) {
	if numChannels != 1 && numChannels != 2 {
		return nil, ErrUnsupportedChannels
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := Sink{
		numChannels: numChannels,
		f:           f,
		wr:          lame.NewWriter(f),
	}
	s.wr.Encoder.SetBitrate(bitRate)
	s.wr.Encoder.SetQuality(quality)
	s.wr.Encoder.SetNumChannels(2)
	s.wr.Encoder.SetInSamplerate(sampleRate)
	s.wr.Encoder.SetMode(lame.JOINT_STEREO)
	s.wr.Encoder.SetVBR(lame.VBR_RH)
	s.wr.Encoder.InitParams()
	return &s, nil
}

// Write encodes the block as 16 bit samples.
func (s *Sink) Write(block pcm.Interleaved) error {
	if block.NumChannels != s.numChannels {
		return fmt.Errorf("block has %d channels instead of %d: %w", block.NumChannels, s.numChannels, ErrUnsupportedChannels)
	}
	s.ints = block.AsInts(pcm.BitDepth16, s.ints)
	size := block.Frames() * 4
	if cap(s.buf) < size {
		s.buf = make([]byte, size)
	}
	s.buf = s.buf[:size]
	if s.numChannels == 1 {
		for i, v := range s.ints {
			binary.LittleEndian.PutUint16(s.buf[i*4:], uint16(int16(v)))
			binary.LittleEndian.PutUint16(s.buf[i*4+2:], uint16(int16(v)))
		}
	} else {
		for i, v := range s.ints {
			binary.LittleEndian.PutUint16(s.buf[i*2:], uint16(int16(v)))
		}
	}
	if _, err := s.wr.Write(s.buf); err != nil {
		return err
	}
	return nil
}

// Close flushes encoder and closes the file.
func (s *Sink) Close() error {
	err := s.wr.Close()
	if err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}
