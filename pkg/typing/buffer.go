package typing

// deque is a FIFO queue that also supports indexed access and removal.
type deque struct {
	items []Event
	head  int
}

func (d *deque) len() int { return len(d.items) - d.head }

func (d *deque) pushBack(ev Event) { d.items = append(d.items, ev) }

func (d *deque) at(n int) Event { return d.items[d.head+n] }

func (d *deque) popFront() Event {
	ev := d.items[d.head]
	d.head++
	if d.head == len(d.items) {
		d.items = d.items[:0]
		d.head = 0
	} else if d.head > 64 && d.head > len(d.items)/2 {
		n := copy(d.items, d.items[d.head:])
		d.items = d.items[:n]
		d.head = 0
	}
	return ev
}

func (d *deque) removeAt(n int) Event {
	i := d.head + n
	ev := d.items[i]
	copy(d.items[i:], d.items[i+1:])
	d.items = d.items[:len(d.items)-1]
	return ev
}

func (d *deque) clear() {
	d.items = d.items[:0]
	d.head = 0
}

// Buffered implements Lookahead on top of a producer that appends events to
// a queue on demand. fill must append zero or more events and return false
// only once the producer is exhausted.
type Buffered struct {
	buf  deque
	fill func(*deque) bool
}

func (b *Buffered) ensure(n int) bool {
	for b.buf.len() <= n {
		if !b.fill(&b.buf) {
			return false
		}
	}
	return true
}

func (b *Buffered) Next() (Event, bool) {
	if !b.ensure(0) {
		return Event{}, false
	}
	return b.buf.popFront(), true
}

func (b *Buffered) PeekNth(n int) (Event, bool) {
	if !b.ensure(n) {
		return Event{}, false
	}
	return b.buf.at(n), true
}

func (b *Buffered) RemoveNth(n int) (Event, bool) {
	if !b.ensure(n) {
		return Event{}, false
	}
	return b.buf.removeAt(n), true
}

// Peekable adds lookahead to any stream.
func Peekable(src Stream) *Buffered {
	return &Buffered{fill: func(q *deque) bool {
		ev, ok := src.Next()
		if ok {
			q.pushBack(ev)
		}
		return ok
	}}
}
