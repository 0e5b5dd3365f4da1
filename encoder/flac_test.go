package encoder

import (
	"bytes"
	"testing"

	"github.com/mewkiz/flac"
)

func sine(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		if i%4 < 2 {
			out[i] = 4000
		} else {
			out[i] = -4000
		}
	}
	return out
}

func TestEncodeAllProducesValidStream(t *testing.T) {
	data, err := EncodeAll(sine(10000), 44100)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty output")
	}
	if !bytes.HasPrefix(data, []byte("fLaC")) {
		t.Errorf("missing fLaC marker, got % x", data[:4])
	}

	stream, err := flac.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parsing encoded stream: %v", err)
	}
	if stream.Info.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", stream.Info.SampleRate)
	}
	if stream.Info.NChannels != Channels {
		t.Errorf("NChannels = %d, want %d", stream.Info.NChannels, Channels)
	}
	if stream.Info.BitsPerSample != BitsPerSample {
		t.Errorf("BitsPerSample = %d, want %d", stream.Info.BitsPerSample, BitsPerSample)
	}
}

func TestEncodeAllRoundTrip(t *testing.T) {
	in := sine(BlockSize + 123) // force a partial trailing block
	data, err := EncodeAll(in, 16000)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}

	stream, err := flac.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parsing encoded stream: %v", err)
	}
	var decoded []int16
	for {
		f, err := stream.ParseNext()
		if err != nil {
			break
		}
		for _, s := range f.Subframes[0].Samples {
			decoded = append(decoded, int16(s))
		}
	}
	if len(decoded) != len(in) {
		t.Fatalf("decoded %d samples, want %d", len(decoded), len(in))
	}
	for i := range in {
		if decoded[i] != in[i] {
			t.Fatalf("sample %d = %d, want %d", i, decoded[i], in[i])
		}
	}
}

func TestEncoderTracksFrames(t *testing.T) {
	enc, err := NewFlac(44100)
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}
	if err := enc.Encode(sine(BlockSize * 2)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := enc.Encode(sine(100)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := enc.TotalFrames(); got != BlockSize*2+100 {
		t.Errorf("TotalFrames = %d, want %d", got, BlockSize*2+100)
	}
}

func TestEncodeAllEmptyInput(t *testing.T) {
	data, err := EncodeAll(nil, 44100)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("fLaC")) {
		t.Error("empty capture should still yield a valid header")
	}
}
