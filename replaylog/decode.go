package replaylog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/lixenwraith/vi-replay/entity"
)

const (
	// maxLineSize bounds a single tick line
	maxLineSize = 8 << 20

	// ctxCheckInterval is how many lines are decoded between cancellation checks
	ctxCheckInterval = 256
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	avroMagic = []byte{'O', 'b', 'j', 0x01}
)

type sourceFormat uint8

const (
	formatJSONLines sourceFormat = iota
	formatZstd
	formatAvro
)

type headerLine struct {
	Type string `json:"type"`
	Data *struct {
		Dimensions *entity.Vec2 `json:"dimensions"`
		Gravity    float64      `json:"gravity"`
	} `json:"data"`
}

type tickLine struct {
	Data *[]Record `json:"data"`
}

// Decode parses a replay log from newline-delimited JSON, optionally zstd compressed
func Decode(r io.Reader) (*Log, error) {
	return DecodeContext(context.Background(), r)
}

// DecodeContext is Decode with cancellation checked between lines
func DecodeContext(ctx context.Context, r io.Reader) (*Log, error) {
	br := bufio.NewReader(r)
	format, err := sniff(br)
	if err != nil {
		return nil, err
	}

	switch format {
	case formatAvro:
		return nil, malformed(0, "avro object container", ErrUnsupportedFormat)
	case formatZstd:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, malformed(0, "zstd stream", err)
		}
		defer dec.Close()

		inner := bufio.NewReader(dec)
		innerFormat, err := sniff(inner)
		if err != nil {
			return nil, err
		}
		if innerFormat != formatJSONLines {
			return nil, malformed(0, "nested container inside zstd stream", ErrUnsupportedFormat)
		}
		return decodeLines(ctx, inner)
	default:
		return decodeLines(ctx, br)
	}
}

// sniff inspects the leading bytes without consuming them
func sniff(br *bufio.Reader) (sourceFormat, error) {
	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return formatJSONLines, malformed(0, "read source", err)
	}

	switch {
	case bytes.Equal(head, zstdMagic):
		return formatZstd, nil
	case bytes.Equal(head, avroMagic):
		return formatAvro, nil
	}
	return formatJSONLines, nil
}

func decodeLines(ctx context.Context, r io.Reader) (*Log, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var (
		log       *Log
		lineNo    int
		sawHeader bool
	)

	for scanner.Scan() {
		lineNo++
		if lineNo%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if !sawHeader {
			header, err := decodeHeader(lineNo, line)
			if err != nil {
				return nil, err
			}
			log = &Log{Header: header}
			sawHeader = true
			continue
		}

		var tick tickLine
		if err := json.Unmarshal(line, &tick); err != nil {
			return nil, malformed(lineNo, "invalid tick", err)
		}
		if tick.Data == nil {
			return nil, malformed(lineNo, "tick lacks data", nil)
		}
		log.Ticks = append(log.Ticks, TickBatch{Records: *tick.Data})
	}

	if err := scanner.Err(); err != nil {
		return nil, malformed(lineNo+1, "read source", err)
	}
	if !sawHeader {
		return nil, malformed(0, "empty log", nil)
	}
	return log, nil
}

func decodeHeader(lineNo int, line []byte) (Header, error) {
	var h headerLine
	if err := json.Unmarshal(line, &h); err != nil {
		return Header{}, malformed(lineNo, "invalid header", err)
	}
	if h.Type != "" && h.Type != "header" {
		return Header{}, malformed(lineNo, "first entry is not a header (type "+h.Type+")", nil)
	}
	if h.Data == nil || h.Data.Dimensions == nil {
		return Header{}, malformed(lineNo, "header lacks dimensions", nil)
	}
	return Header{Dimensions: *h.Data.Dimensions, Gravity: h.Data.Gravity}, nil
}
