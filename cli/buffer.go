package cli

// lineBuffer is a fixed-capacity byte string with an explicit length.
type lineBuffer struct {
	buf [LineLength]byte
	n   int
}

// push appends b and reports whether there was room for it.
func (l *lineBuffer) push(b byte) bool {
	if l.n == len(l.buf) {
		return false
	}
	l.buf[l.n] = b
	l.n++
	return true
}

// pop removes the last byte and reports whether there was one.
func (l *lineBuffer) pop() bool {
	if l.n == 0 {
		return false
	}
	l.n--
	return true
}

func (l *lineBuffer) full() bool    { return l.n == len(l.buf) }
func (l *lineBuffer) bytes() []byte { return l.buf[:l.n] }
func (l *lineBuffer) clear()        { l.n = 0 }

// set replaces the contents with src, truncated to capacity.
func (l *lineBuffer) set(src []byte) {
	l.n = copy(l.buf[:], src)
}

// endsWith reports whether the last bytes are a then b.
func (l *lineBuffer) endsWith(a, b byte) bool {
	return l.n >= 2 && l.buf[l.n-2] == a && l.buf[l.n-1] == b
}

// countAlphanumeric returns how many bytes are ASCII letters or digits.
func (l *lineBuffer) countAlphanumeric() int {
	count := 0
	for _, b := range l.bytes() {
		if isAlphanumeric(b) {
			count++
		}
	}
	return count
}

// historyRing keeps the last HistoryDepth submitted lines. Index 0 is the
// oldest entry and len()-1 the newest; pushing onto a full ring drops the
// oldest.
type historyRing struct {
	entries [HistoryDepth]lineBuffer
	start   int
	n       int
}

func (h *historyRing) len() int { return h.n }

// push stores a copy of line as the newest entry.
func (h *historyRing) push(line []byte) {
	if h.n < len(h.entries) {
		h.entries[(h.start+h.n)%len(h.entries)].set(line)
		h.n++
		return
	}
	h.entries[h.start].set(line)
	h.start = (h.start + 1) % len(h.entries)
}

// at returns entry i in chronological order.
func (h *historyRing) at(i int) ([]byte, bool) {
	if i < 0 || i >= h.n {
		return nil, false
	}
	return h.entries[(h.start+i)%len(h.entries)].bytes(), true
}
