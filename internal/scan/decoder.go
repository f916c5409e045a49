package scan

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
)

// Decoder is a capture device that produces decoded QR payloads. The
// lifecycle is explicit and two-phase: Attach starts delivering decoded
// payloads to the callback, Detach releases the device. A payload
// delivered after Detach must be dropped by the decoder, not the
// caller; late frames from a capture device are a real race.
type Decoder interface {
	Attach(onDecode func(payload string)) error
	Detach() error
}

var ErrAlreadyAttached = errors.New("decoder already attached")

// LineDecoder reads decoded payloads as lines from an input stream.
// Keyboard-wedge QR scanners type the decoded text followed by a
// newline, so a serial device or stdin works as the capture source.
type LineDecoder struct {
	source io.Reader

	mu       sync.Mutex
	attached bool
	// gen increments on every Attach so a reader goroutine from a
	// previous attach cycle can never deliver into the current one.
	gen int
}

func NewLineDecoder(source io.Reader) *LineDecoder {
	return &LineDecoder{source: source}
}

func (d *LineDecoder) Attach(onDecode func(payload string)) error {
	d.mu.Lock()
	if d.attached {
		d.mu.Unlock()
		return ErrAlreadyAttached
	}
	d.attached = true
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	go d.read(gen, onDecode)
	return nil
}

func (d *LineDecoder) Detach() error {
	d.mu.Lock()
	d.attached = false
	d.mu.Unlock()
	return nil
}

func (d *LineDecoder) read(gen int, onDecode func(string)) {
	scanner := bufio.NewScanner(d.source)
	for scanner.Scan() {
		payload := strings.TrimSpace(scanner.Text())
		if payload == "" {
			continue
		}

		d.mu.Lock()
		live := d.attached && d.gen == gen
		d.mu.Unlock()
		if !live {
			// Detached (or re-attached) while this line was in
			// flight: drop it.
			return
		}
		onDecode(payload)
	}
}

// PushDecoder is a Decoder fed by the UI itself: the checker view
// collects the payload in a text field (the wedge scanner acts as a
// keyboard) and pushes it in. Attach/Detach gate delivery exactly like
// a real device.
type PushDecoder struct {
	mu       sync.Mutex
	attached bool
	onDecode func(string)
}

func NewPushDecoder() *PushDecoder {
	return &PushDecoder{}
}

func (d *PushDecoder) Attach(onDecode func(payload string)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.attached {
		return ErrAlreadyAttached
	}
	d.attached = true
	d.onDecode = onDecode
	return nil
}

func (d *PushDecoder) Detach() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attached = false
	d.onDecode = nil
	return nil
}

// Push delivers one decoded payload. Returns false when the decoder is
// detached and the payload was dropped.
func (d *PushDecoder) Push(payload string) bool {
	d.mu.Lock()
	onDecode := d.onDecode
	attached := d.attached
	d.mu.Unlock()

	payload = strings.TrimSpace(payload)
	if !attached || onDecode == nil || payload == "" {
		return false
	}
	onDecode(payload)
	return true
}
