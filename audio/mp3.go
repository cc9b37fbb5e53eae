// Package audio joins MP3 clips at the frame level.
//
// Speech providers return complete MP3 files, each with its own ID3 tags
// and, often, a Xing/Info header frame describing only that file. Joining
// such files byte for byte produces a stream whose first header lies about
// the total length. Clips are therefore reduced to their MPEG audio frames
// before they are concatenated.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tcolgate/mp3"
)

var ErrNoFrames = errors.New("no mpeg audio frames found")

// Frame is one encoded audio frame, header included.
type Frame struct {
	Data     []byte
	Duration time.Duration
}

// Clip is an MP3 file reduced to its audio frames.
type Clip struct {
	Frames []Frame
}

// Parse strips ID3v2/ID3v1 tags and a leading Xing, Info or VBRI frame and
// decodes the remaining audio frames.
func Parse(data []byte) (*Clip, error) {
	start := id3v2Size(data)
	end := len(data)
	if end-start >= 128 && bytes.Equal(data[end-128:end-125], []byte("TAG")) {
		end -= 128
	}

	dec := mp3.NewDecoder(bytes.NewReader(data[start:end]))
	c := &Clip{}
	var (
		f       mp3.Frame
		skipped int
	)
	for {
		err := dec.Decode(&f, &skipped)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", len(c.Frames), err)
		}
		raw, err := io.ReadAll(f.Reader())
		if err != nil {
			return nil, err
		}
		if len(c.Frames) == 0 && isInfoFrame(raw) {
			continue
		}
		c.Frames = append(c.Frames, Frame{Data: raw, Duration: f.Duration()})
	}
	if len(c.Frames) == 0 {
		return nil, ErrNoFrames
	}
	return c, nil
}

func (c *Clip) Duration() time.Duration {
	var d time.Duration
	for _, f := range c.Frames {
		d += f.Duration
	}
	return d
}

// Size is the number of bytes WriteTo emits.
func (c *Clip) Size() int64 {
	var n int64
	for _, f := range c.Frames {
		n += int64(len(f.Data))
	}
	return n
}

// WriteTo writes the audio frames only.
func (c *Clip) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, f := range c.Frames {
		n, err := w.Write(f.Data)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func id3v2Size(data []byte) int {
	if len(data) < 10 || !bytes.Equal(data[:3], []byte("ID3")) {
		return 0
	}
	size := int(data[6]&0x7F)<<21 | int(data[7]&0x7F)<<14 | int(data[8]&0x7F)<<7 | int(data[9]&0x7F)
	size += 10
	if data[5]&0x10 != 0 {
		size += 10
	}
	if size > len(data) {
		return len(data)
	}
	return size
}

// isInfoFrame reports whether a Layer III frame carries a Xing/Info tag
// after its side information, or a VBRI tag at its fixed offset.
func isInfoFrame(frame []byte) bool {
	if len(frame) < 4 {
		return false
	}
	var (
		mpeg1  = (frame[1]>>3)&3 == 3
		layer3 = (frame[1]>>1)&3 == 1
		crc    = frame[1]&1 == 0
		mono   = frame[3]>>6 == 3
	)
	if layer3 {
		off := 4 + sideInfoSize(mpeg1, mono)
		if crc {
			off += 2
		}
		if len(frame) >= off+4 {
			tag := string(frame[off : off+4])
			if tag == "Xing" || tag == "Info" {
				return true
			}
		}
	}
	return len(frame) >= 40 && string(frame[36:40]) == "VBRI"
}

// sideInfoSize is the Layer III side information length that precedes a
// Xing or Info tag.
func sideInfoSize(mpeg1, mono bool) int {
	switch {
	case mpeg1 && mono:
		return 17
	case mpeg1:
		return 32
	case mono:
		return 9
	default:
		return 17
	}
}

// Span records where one input clip landed in a concatenated stream.
type Span struct {
	Offset   int64
	Bytes    int64
	Frames   int
	Duration time.Duration
}

// Concat writes the audio frames of every clip, in order, to w.
func Concat(w io.Writer, clips ...[]byte) ([]Span, error) {
	var c concatenator
	for i, data := range clips {
		if err := c.add(w, data); err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
	}
	return c.spans, nil
}

// ConcatFiles is Concat over clip files, read one at a time.
func ConcatFiles(w io.Writer, paths ...string) ([]Span, error) {
	var c concatenator
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := c.add(w, data); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	return c.spans, nil
}

type concatenator struct {
	offset int64
	spans  []Span
}

func (c *concatenator) add(w io.Writer, data []byte) error {
	clip, err := Parse(data)
	if err != nil {
		return err
	}
	n, err := clip.WriteTo(w)
	if err != nil {
		return err
	}
	c.spans = append(c.spans, Span{
		Offset:   c.offset,
		Bytes:    n,
		Frames:   len(clip.Frames),
		Duration: clip.Duration(),
	})
	c.offset += n
	return nil
}
