package prompt

import (
	"io"
	"sync"
)

// flusher is implemented by buffered writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// flushingWriter pushes every prompt through to the terminal before the prompter blocks on input.
type flushingWriter struct {
	mutex  sync.Mutex
	target io.Writer
}

func newFlushingWriter(target io.Writer) io.Writer {
	switch target.(type) {
	case nil:
		return io.Discard
	case *flushingWriter:
		return target
	}
	if _, buffered := target.(flusher); !buffered {
		return target
	}
	return &flushingWriter{target: target}
}

func (writer *flushingWriter) Write(data []byte) (int, error) {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	written, writeError := writer.target.Write(data)
	if writeError != nil {
		return written, writeError
	}
	return written, writer.target.(flusher).Flush()
}
