package vm

// ObjectTag identifies the kind of a heap object. Only the tag names are
// needed today; nothing in this core allocates one yet (spec.md §4.2's
// "garbage-collected heap (reserve interface)").
type ObjectTag int

const (
	ObjPair ObjectTag = iota
	ObjFunction
	ObjClosure
)

func (t ObjectTag) String() string {
	switch t {
	case ObjPair:
		return "pair"
	case ObjFunction:
		return "function"
	case ObjClosure:
		return "closure"
	default:
		return "?object?"
	}
}

// Object is one node of the intrusive singly-linked heap list described in
// _examples/original_source/program_manager.c's leak-report walk: a tag, a
// mark bit, and a next-link. No payload field is defined because nothing
// in this core allocates pairs, functions, or closures yet; the shape only
// has to support traversal, marking, and counting.
type Object struct {
	Tag    ObjectTag
	Marked bool
	next   *Object
}

// Heap is the VM's garbage-collected object reserve. It is always present
// and always observable (memstat, leaks) even though the current code
// generator never allocates into it.
type Heap struct {
	head      *Object
	count     int
	Threshold int
	AutoGC    bool
}

// DefaultGCThreshold mirrors the original source's default collection
// threshold before auto-GC considers a pass worthwhile.
const DefaultGCThreshold = 256

// NewHeap returns an empty heap with GC disabled, matching a freshly
// constructed VM that has not opted into auto-collection.
func NewHeap() *Heap {
	return &Heap{Threshold: DefaultGCThreshold}
}

// Alloc links a new object of the given tag onto the heap and returns it.
// No opcode in this core calls Alloc; it exists so the reserve interface
// has something to exercise and so future opcodes have a home.
func (h *Heap) Alloc(tag ObjectTag) *Object {
	obj := &Object{Tag: tag, next: h.head}
	h.head = obj
	h.count++
	if h.AutoGC && h.count >= h.Threshold {
		h.Collect()
	}
	return obj
}

// NumObjects reports the number of live objects on the heap.
func (h *Heap) NumObjects() int {
	return h.count
}

// Walk calls fn for each live object, head first, matching the traversal
// order the leaks/memstat commands report in.
func (h *Heap) Walk(fn func(*Object)) {
	for o := h.head; o != nil; o = o.next {
		fn(o)
	}
}

// Collect performs a collection pass: with nothing rooted and nothing
// allocating, every live object is unreachable garbage by definition, so
// Collect unlinks the whole list at once and reports how many objects it
// freed, rather than a constant 0. It has no mark phase and does not walk
// the list; every object on the heap is freed.
func (h *Heap) Collect() int {
	freed := h.count
	h.head = nil
	h.count = 0
	return freed
}

// Cleanup releases every heap object unconditionally, used when a VM is
// torn down (spec.md §5's "VM first" destruction order).
func (h *Heap) Cleanup() {
	h.head = nil
	h.count = 0
}
