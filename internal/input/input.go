// Package input turns raw terminal bytes into discrete key presses.
package input

import (
	"bufio"
	"io"
)

// Key is a decoded key press.
type Key int

const (
	KeyNone Key = iota
	KeyQuit
	KeyToggle // Play/pause
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyBackspace
	KeyEscape
	KeyResetSim
	KeyResetControls
	KeyChar // Printable character for numeric entry, see Press.Rune
)

// Press is one key press.
type Press struct {
	Key  Key
	Rune rune // Set for KeyChar
}

// Input is everything pressed since the previous frame.
type Input struct {
	Presses []Press
	Raw     []byte
	Closed  bool // The underlying reader has ended
}

// Has reports whether k was pressed this frame.
func (in Input) Has(k Key) bool {
	for _, p := range in.Presses {
		if p.Key == k {
			return true
		}
	}
	return false
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch     chan byte
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r io.Reader) *Stream {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		defer close(s.ch)
		for {
			b, err := br.ReadByte()
			if err != nil {
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream without blocking.
func ReadInput(s *Stream) Input {
	var buf []byte

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	return Input{
		Presses: Parse(buf),
		Raw:     buf,
		Closed:  s.closed,
	}
}

// Parse decodes a burst of terminal bytes. Arrow keys arrive as CSI
// sequences (ESC [ A..D); a lone ESC is reported as KeyEscape.
func Parse(buf []byte) []Press {
	var presses []Press
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			if k := arrowKey(buf[i+2]); k != KeyNone {
				presses = append(presses, Press{Key: k})
				i += 2
				continue
			}
		}

		if p := decodeByte(b); p.Key != KeyNone {
			presses = append(presses, p)
		}
	}
	return presses
}

func arrowKey(b byte) Key {
	switch b {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	}
	return KeyNone
}

// decodeByte maps a single byte to a press.
func decodeByte(b byte) Press {
	switch b {
	case 'q', 'Q', '\x03': // Ctrl+C arrives as a byte in raw mode
		return Press{Key: KeyQuit}
	case ' ', 'p', 'P':
		return Press{Key: KeyToggle}
	case 'w', 'W', 'k', 'K':
		return Press{Key: KeyUp}
	case 's', 'S', 'j', 'J':
		return Press{Key: KeyDown}
	case 'a', 'A', 'h', 'H':
		return Press{Key: KeyLeft}
	case 'd', 'D', 'l', 'L', '+', '=':
		return Press{Key: KeyRight}
	case '\n', '\r':
		return Press{Key: KeyEnter}
	case '\b', '\x7f':
		return Press{Key: KeyBackspace}
	case '\x1b':
		return Press{Key: KeyEscape}
	case 'r', 'R':
		return Press{Key: KeyResetSim}
	case 'c', 'C':
		return Press{Key: KeyResetControls}
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.', '-':
		return Press{Key: KeyChar, Rune: rune(b)}
	}
	return Press{}
}
