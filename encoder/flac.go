// Package encoder turns captured PCM into FLAC, the payload format for
// both the transcription upload and debug audio artifacts.
package encoder

import (
	"bytes"
	"fmt"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const (
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

type FlacEncoder struct {
	buf         bytes.Buffer
	enc         *flac.Encoder
	sampleRate  uint32
	pending     []int16
	totalFrames uint64
}

func NewFlac(sampleRate uint32) (*FlacEncoder, error) {
	e := &FlacEncoder{sampleRate: sampleRate}
	info := &meta.StreamInfo{
		BlockSizeMin:  BlockSize,
		BlockSizeMax:  BlockSize,
		SampleRate:    sampleRate,
		NChannels:     Channels,
		BitsPerSample: BitsPerSample,
		NSamples:      0,
	}
	enc, err := flac.NewEncoder(&e.buf, info)
	if err != nil {
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}
	enc.EnablePredictionAnalysis(true)
	e.enc = enc
	return e, nil
}

// Encode buffers samples and writes full blocks as they accumulate.
func (e *FlacEncoder) Encode(samples []int16) error {
	e.pending = append(e.pending, samples...)
	for len(e.pending) >= BlockSize {
		if err := e.writeBlock(e.pending[:BlockSize]); err != nil {
			return err
		}
		e.pending = e.pending[BlockSize:]
	}
	return nil
}

func (e *FlacEncoder) writeBlock(block []int16) error {
	samples32 := make([]int32, len(block))
	for i, s := range block {
		samples32[i] = int32(s)
	}

	subframe := &frame.Subframe{
		SubHeader: frame.SubHeader{
			Pred: frame.PredVerbatim,
		},
		Samples:  samples32,
		NSamples: len(block),
	}

	f := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(len(block)),
			SampleRate:    e.sampleRate,
			Channels:      frame.ChannelsMono,
			BitsPerSample: BitsPerSample,
		},
		Subframes: []*frame.Subframe{subframe},
	}

	if err := e.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("writing flac frame: %w", err)
	}
	e.totalFrames += uint64(len(block))
	return nil
}

// Close flushes the trailing partial block and finalizes the stream.
func (e *FlacEncoder) Close() error {
	if len(e.pending) > 0 {
		if err := e.writeBlock(e.pending); err != nil {
			return err
		}
		e.pending = nil
	}
	return e.enc.Close()
}

func (e *FlacEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

func (e *FlacEncoder) TotalFrames() uint64 {
	return e.totalFrames
}

// EncodeAll is the one-shot path used per capture cycle.
func EncodeAll(samples []int16, sampleRate uint32) ([]byte, error) {
	enc, err := NewFlac(sampleRate)
	if err != nil {
		return nil, err
	}
	if err := enc.Encode(samples); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}
