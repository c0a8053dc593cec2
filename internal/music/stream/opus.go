package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"

	"layeh.com/gopus"

	"github.com/keshon/jukebox/internal/music/parsers"
	"github.com/keshon/jukebox/internal/playback"
)

const maxOpusFrame = parsers.FrameSize * parsers.Channels * 2

// Encoder turns PCM frames into Opus packets.
type Encoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

// OpusStream reads 20ms PCM frames from a stream and encodes them one at a
// time.
type OpusStream struct {
	src     io.ReadCloser
	encoder Encoder
	pcmBuf  []byte
	intBuf  []int16
}

// NewOpusStream wraps a PCM stream with the given encoder.
func NewOpusStream(src io.ReadCloser, enc Encoder) *OpusStream {
	return &OpusStream{
		src:     src,
		encoder: enc,
		pcmBuf:  make([]byte, parsers.FrameSize*parsers.Channels*2),
		intBuf:  make([]int16, parsers.FrameSize*parsers.Channels),
	}
}

// ReadFrame returns the next Opus packet. It returns io.EOF once the source
// is exhausted; a trailing partial frame is dropped.
func (s *OpusStream) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(s.src, s.pcmBuf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, fmt.Errorf("read error: %w", err)
	}

	for i := range s.intBuf {
		s.intBuf[i] = int16(binary.LittleEndian.Uint16(s.pcmBuf[i*2 : i*2+2]))
	}

	opus, err := s.encoder.Encode(s.intBuf, parsers.FrameSize, maxOpusFrame)
	if err != nil {
		return nil, fmt.Errorf("encode error: %w", err)
	}
	return opus, nil
}

func (s *OpusStream) Close() error {
	return s.src.Close()
}

// Opener opens tracks as Opus streams.
type Opener struct {
	Streamers Registry
}

// Open resolves t through its parsers and returns an Opus stream for it.
func (o *Opener) Open(ctx context.Context, t *playback.Track) (*OpusStream, error) {
	enc, err := gopus.NewEncoder(parsers.SampleRate, parsers.Channels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("encoder error: %w", err)
	}

	ts, err := o.Streamers.AutoOpenStream(ctx, t)
	if err != nil {
		return nil, err
	}

	log.Printf("[Stream] Stream opened for track %q with parser %s", t.String(), ts.GetMode())
	return NewOpusStream(ts, enc), nil
}
