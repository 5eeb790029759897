package cli

// Key is a prompter command decoded from terminal input
type Key int

const (
	KeyNone Key = iota
	KeyToggle
	KeyFaster
	KeySlower
	KeyLineUp
	KeyLineDown
	KeyPageUp
	KeyPageDown
	KeyTop
	KeyEnd
	KeyLessSpacing
	KeyMoreSpacing
	KeyRetryWakeLock
	KeyStop
	KeyQuit
	KeyFocusIn
	KeyFocusOut
)

const maxEscapeLen = 16

// Decoder turns raw terminal input into keys. Escape sequences split
// across reads are held until the rest arrives.
type Decoder struct {
	pending []byte
}

// Feed decodes data and returns the keys it completes
func (d *Decoder) Feed(data []byte) []Key {
	buf := append(d.pending, data...)
	d.pending = nil

	var keys []Key
	for i := 0; i < len(buf); {
		b := buf[i]
		if b != 0x1b {
			if k := plainKey(b); k != KeyNone {
				keys = append(keys, k)
			}
			i++
			continue
		}
		key, n := parseEscape(buf[i:])
		if n == 0 {
			// Incomplete; a lone trailing ESC is just the Escape key
			if len(buf)-i > 1 && len(buf)-i < maxEscapeLen {
				d.pending = append([]byte(nil), buf[i:]...)
			}
			break
		}
		if key != KeyNone {
			keys = append(keys, key)
		}
		i += n
	}
	return keys
}

func plainKey(b byte) Key {
	switch b {
	case ' ':
		return KeyToggle
	case '+', '=':
		return KeyFaster
	case '-', '_':
		return KeySlower
	case 'k':
		return KeyLineUp
	case 'j':
		return KeyLineDown
	case 'b':
		return KeyPageUp
	case 'f':
		return KeyPageDown
	case 'g':
		return KeyTop
	case 'G':
		return KeyEnd
	case '[':
		return KeyLessSpacing
	case ']':
		return KeyMoreSpacing
	case 'r':
		return KeyRetryWakeLock
	case 's':
		return KeyStop
	case 'q', 0x03:
		return KeyQuit
	}
	return KeyNone
}

// parseEscape decodes the sequence at the start of seq. It returns the
// number of bytes consumed, or 0 if the sequence is incomplete.
func parseEscape(seq []byte) (Key, int) {
	if len(seq) < 2 {
		return KeyNone, 0
	}
	switch seq[1] {
	case '[':
		return parseCSI(seq)
	case 'O':
		if len(seq) < 3 {
			return KeyNone, 0
		}
		return cursorKey(seq[2]), 3
	}
	// Alt+key
	if seq[1] >= 0x20 && seq[1] < 0x7f {
		return KeyNone, 2
	}
	return KeyNone, 1
}

func parseCSI(seq []byte) (Key, int) {
	for i := 2; i < len(seq); i++ {
		b := seq[i]
		if b >= 0x40 && b <= 0x7e {
			params := string(seq[2:i])
			return csiKey(b, params), i + 1
		}
		if i >= maxEscapeLen {
			return KeyNone, i + 1
		}
	}
	return KeyNone, 0
}

func csiKey(final byte, params string) Key {
	switch final {
	case 'I':
		return KeyFocusIn
	case 'O':
		return KeyFocusOut
	case '~':
		switch params {
		case "5":
			return KeyPageUp
		case "6":
			return KeyPageDown
		case "1", "7":
			return KeyTop
		case "4", "8":
			return KeyEnd
		}
		return KeyNone
	}
	return cursorKey(final)
}

func cursorKey(b byte) Key {
	switch b {
	case 'A':
		return KeyLineUp
	case 'B':
		return KeyLineDown
	case 'H':
		return KeyTop
	case 'F':
		return KeyEnd
	}
	return KeyNone
}
