package worker

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxRequestBytes bounds one inbound NDJSON line.
const maxRequestBytes = 16 * 1024 * 1024

var errLineTooLong = errors.New("line exceeds request size limit")

// Serve runs a newline-delimited JSON loop: one Request per input line, each
// answered by a stream of Event lines ending in a terminal complete or error.
// Malformed or oversized input lines are protocol errors and do not stop the
// loop.
func (w *Worker) Serve(r io.Reader, out io.Writer) error {
	enc := json.NewEncoder(out)
	emit := func(ev Event) {
		if err := enc.Encode(ev); err != nil {
			w.log.Error("failed to write event", "error", err)
		}
	}

	br := bufio.NewReaderSize(r, 64*1024)

	for {
		line, err := readLine(br, maxRequestBytes)
		switch {
		case errors.Is(err, errLineTooLong):
			emit(Event{Type: KindError, Error: fmt.Sprintf("request exceeds %d bytes", maxRequestBytes)})
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			emit(Event{Type: KindError, Error: fmt.Sprintf("malformed request: %v", err)})
			continue
		}

		w.Handle(req, emit)
	}
}

// readLine reads one newline-terminated line, accumulating at most max
// bytes. An oversized line is drained through its newline and reported as
// errLineTooLong, so the caller can keep reading subsequent lines.
func readLine(br *bufio.Reader, max int) ([]byte, error) {
	var line []byte
	for {
		frag, err := br.ReadSlice('\n')
		if len(line)+len(frag) > max {
			if err := drainLine(br, err); err != nil {
				return nil, err
			}
			return nil, errLineTooLong
		}
		line = append(line, frag...)

		switch {
		case err == nil:
			line = bytes.TrimSuffix(line, []byte("\n"))
			line = bytes.TrimSuffix(line, []byte("\r"))
			return line, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if len(line) == 0 {
				return nil, io.EOF
			}
			return line, nil
		default:
			return nil, err
		}
	}
}

// drainLine consumes the remainder of the current line after it was found
// oversized. err is the error from the triggering ReadSlice call.
func drainLine(br *bufio.Reader, err error) error {
	for errors.Is(err, bufio.ErrBufferFull) {
		_, err = br.ReadSlice('\n')
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
