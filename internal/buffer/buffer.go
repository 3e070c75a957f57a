package buffer

// defaultMinGrowth is the smallest backing array an append ever allocates
// when MinGrowth is left zero.
const defaultMinGrowth = 32

// Buffer accumulates not-yet-consumed bytes of a connection. Consumption is
// an offset advance only; the unread region is shifted back to the front of
// the backing array once the consumed prefix occupies more than half of it,
// bounding memory at roughly twice the live unread data. Views returned by
// View stay valid across Consume calls and are invalidated by Append.
type Buffer struct {
	// MinGrowth is the smallest capacity the backing array grows to.
	MinGrowth int

	memory []byte
	begin  int
}

// Append writes data past the unread region, growing the backing array by
// doubling when needed. Compaction, if due, happens here and never inside
// Consume, so that previously returned views survive consumption.
func (b *Buffer) Append(data []byte) {
	if b.begin > cap(b.memory)/2 {
		b.compact()
	}

	if need := len(b.memory) + len(data); need > cap(b.memory) {
		b.grow(need)
	}

	b.memory = append(b.memory, data...)
}

// Consume logically removes the first n unread bytes. Consuming more than
// is available removes everything.
func (b *Buffer) Consume(n int) {
	if n > b.Len() {
		n = b.Len()
	}

	b.begin += n
}

// View returns the unread region. The slice is valid until the next Append.
func (b *Buffer) View() []byte {
	return b.memory[b.begin:]
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.memory) - b.begin
}

// Clear drops all content, keeping the backing array.
func (b *Buffer) Clear() {
	b.begin = 0
	b.memory = b.memory[:0]
}

func (b *Buffer) compact() {
	n := copy(b.memory, b.memory[b.begin:])
	b.memory = b.memory[:n]
	b.begin = 0
}

func (b *Buffer) grow(need int) {
	minGrowth := b.MinGrowth
	if minGrowth == 0 {
		minGrowth = defaultMinGrowth
	}

	newCap := max(cap(b.memory)*2, minGrowth)
	for newCap < need {
		newCap *= 2
	}

	fresh := make([]byte, len(b.memory), newCap)
	copy(fresh, b.memory)
	b.memory = fresh
}
