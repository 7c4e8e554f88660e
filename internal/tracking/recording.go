package tracking

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/ayusman/mudra/internal/hand"
)

// maxLineSize bounds one recorded update; a full joint set is a few KiB.
const maxLineSize = 1 << 20

// ReadRecording decodes a newline-delimited JSON recording. Blank lines are
// ignored; a malformed line fails the read with its line number.
func ReadRecording(r io.Reader) ([]hand.Update, error) {
	var updates []hand.Update
	err := scanRecording(r, func(line int, u hand.Update, err error) error {
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		updates = append(updates, u)
		return nil
	})
	return updates, err
}

// scanRecording calls fn for each non-blank line. Decode errors are passed
// to fn, which decides whether to stop.
func scanRecording(r io.Reader, fn func(line int, u hand.Update, err error) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var u hand.Update
		err := json.Unmarshal(data, &u)
		if err := fn(line, u, err); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Recorder appends updates to a writer in the recording format.
type Recorder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewRecorder creates a Recorder writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: json.NewEncoder(w)}
}

// Record writes one update as a single line.
func (r *Recorder) Record(u hand.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(u)
}
