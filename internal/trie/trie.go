// Package trie implements the interning trie from spec.md §4.3: a
// byte-keyed compressed trie laid out as a single flat integer arena, with
// a length-adapted per-node child hash table, issuing dense first-seen
// identifiers over arbitrary byte spans.
package trie

import (
	"github.com/standardbeagle/flatintern/internal/alloc"
	"github.com/standardbeagle/flatintern/internal/types"
)

// Node field offsets within the arena. The spec's §3/§4.3 node record lists
// six fixed fields (FIRST, BUFFER, START, END, REFERENCE, NEXT_SIBLING)
// plus H(depth) child slots. A node's child-table size is fixed at
// creation and never resized in place, but a split can move a node deeper
// in the tree without touching its physical slots — so the depth used to
// re-derive H for hashing into that table can no longer be recovered by
// walking from the root. We carry a seventh field, DEPTH, recording the
// creation-time edge depth, purely so that invariant holds; this is an
// internal layout detail with no effect on anything externally observable
// (content table, cell matrix, diagnostics all match the spec exactly).
const (
	fFirst = iota
	fBuffer
	fStart
	fEnd
	fReference
	fNextSibling
	fDepth
	fChildBase
)

// childHashSize returns H(d): the number of child slots a node at edge
// depth d is given. Shallow nodes fan out widely (full 256-way dispatch);
// deep nodes are sparse and chain cheaply.
func childHashSize(d int) int {
	switch {
	case d < 2:
		return 256
	case d < 7:
		return 256 >> uint(d)
	default:
		return 1
	}
}

var contentPool = alloc.New[byte](alloc.ContentTierConfigs)

// Trie is an arena-backed interning trie. The zero value is not usable;
// construct with New.
type Trie struct {
	arena     []uint32
	content   [][]byte
	nodeCount int
}

// New creates an empty trie with a preallocated root and content[0] = "".
func New() *Trie {
	t := &Trie{content: [][]byte{{}}}
	t.allocNode(0) // root, always at arena index 0
	return t
}

func (t *Trie) allocNode(depth int) uint32 {
	h := childHashSize(depth)
	size := fChildBase + h
	idx := uint32(len(t.arena))
	t.arena = append(t.arena, make([]uint32, size)...)
	t.arena[idx+fDepth] = uint32(depth)
	t.nodeCount++
	return idx
}

func (t *Trie) depth(n uint32) int   { return int(t.arena[n+fDepth]) }
func (t *Trie) hsize(n uint32) int   { return childHashSize(t.depth(n)) }
func (t *Trie) start(n uint32) int   { return int(t.arena[n+fStart]) }
func (t *Trie) end(n uint32) int     { return int(t.arena[n+fEnd]) }
func (t *Trie) buffer(n uint32) []byte { return t.content[t.arena[n+fBuffer]] }
func (t *Trie) edgeLen(n uint32) int  { return t.end(n) - t.start(n) }

func (t *Trie) childSlot(n uint32, slot int) uint32 {
	return t.arena[n+fChildBase+uint32(slot)]
}

func (t *Trie) setChildSlot(n uint32, slot int, v uint32) {
	t.arena[n+fChildBase+uint32(slot)] = v
}

// edgeByte returns the byte at the given offset into n's edge, reading the
// first four bytes from the packed FIRST word and the rest from the
// content buffer, so short-prefix comparisons never touch content.
func (t *Trie) edgeByte(n uint32, offset int) byte {
	if offset < 4 {
		first := t.arena[n+fFirst]
		return byte(first >> (uint(offset) * 8))
	}
	return t.buffer(n)[t.start(n)+offset]
}

func packFirst(buf []byte, start, end int) uint32 {
	var v uint32
	for i := 0; i < 4 && start+i < end; i++ {
		v |= uint32(buf[start+i]) << (uint(i) * 8)
	}
	return v
}

// attachChild hashes firstByte into parent's child table at the given
// parent depth and appends child to the tail of whatever chain already
// occupies that slot.
func (t *Trie) attachChild(parent uint32, parentDepth int, firstByte byte, child uint32) {
	h := childHashSize(parentDepth)
	slot := int(firstByte) % h
	head := t.childSlot(parent, slot)
	if head == 0 {
		t.setChildSlot(parent, slot, child)
		return
	}
	node := head
	for t.arena[node+fNextSibling] != 0 {
		node = t.arena[node+fNextSibling]
	}
	t.arena[node+fNextSibling] = child
}

// newLeaf allocates a brand-new terminal node whose edge is in[p:e] and
// whose content buffer holds the full original span in[s:e]. It assigns
// and returns the next dense identifier.
func (t *Trie) newLeaf(in []byte, s, p, e int) (uint32, types.ContentID) {
	id := t.internContent(in[s:e])
	n := t.allocNode(p - s)
	t.arena[n+fBuffer] = uint32(id)
	t.arena[n+fStart] = uint32(p - s)
	t.arena[n+fEnd] = uint32(e - s)
	t.arena[n+fFirst] = packFirst(in[s:e], p-s, e-s)
	t.arena[n+fReference] = uint32(id)
	return n, id
}

func (t *Trie) internContent(span []byte) types.ContentID {
	id := types.ContentID(len(t.content))
	buf := contentPool.Get(len(span))
	buf = append(buf, span...)
	t.content = append(t.content, buf)
	return id
}

// Intern looks up the whole of in, inserting it if not already present,
// and returns its dense identifier. The empty span always returns 0.
func (t *Trie) Intern(in []byte) types.ContentID {
	if len(in) == 0 {
		return 0
	}
	return t.insert(in, 0, len(in))
}

func (t *Trie) insert(in []byte, s, e int) types.ContentID {
	cur := uint32(0) // root
	p := s

	for {
		if p == e {
			if ref := t.arena[cur+fReference]; ref != 0 {
				return types.ContentID(ref)
			}
			id := t.internContent(in[s:e])
			t.arena[cur+fReference] = uint32(id)
			return id
		}

		curDepth := t.depth(cur)
		h := childHashSize(curDepth)
		slot := int(in[p]) % h

		var prev uint32
		found := t.childSlot(cur, slot)
		for found != 0 && t.edgeByte(found, 0) != in[p] {
			prev = found
			found = t.arena[found+fNextSibling]
		}

		if found == 0 {
			newNode, id := t.newLeaf(in, s, p, e)
			t.attachOrAppend(cur, slot, prev, newNode)
			return id
		}

		edgeLen := t.edgeLen(found)
		match := 1
		for match < edgeLen && p+match < e && t.edgeByte(found, match) == in[p+match] {
			match++
		}

		if match == edgeLen {
			// Full edge matched; descend (this also covers the case
			// where input is exhausted exactly at the child boundary —
			// the p==e check at the top of the next iteration handles
			// it uniformly).
			cur = found
			p += match
			continue
		}

		// Partial match: split found at offset match.
		oldStart := t.start(found)
		oldBuf := t.buffer(found)
		oldNextSibling := t.arena[found+fNextSibling]
		middleDepth := p - s
		middle := t.allocNode(middleDepth)
		t.arena[middle+fBuffer] = t.arena[found+fBuffer]
		t.arena[middle+fStart] = uint32(oldStart)
		t.arena[middle+fEnd] = uint32(oldStart + match)
		t.arena[middle+fFirst] = packFirst(oldBuf, oldStart, oldStart+match)
		// middle takes over found's exact position in cur's chain, so any
		// siblings that followed found there now follow middle instead.
		t.arena[middle+fNextSibling] = oldNextSibling

		newOldStart := oldStart + match
		t.arena[found+fStart] = uint32(newOldStart)
		t.arena[found+fFirst] = packFirst(oldBuf, newOldStart, t.end(found))
		t.arena[found+fNextSibling] = 0

		t.attachChild(middle, middleDepth, oldBuf[newOldStart], found)
		t.attachOrAppend(cur, slot, prev, middle)

		if p+match == e {
			// Input exhausted mid-edge: middle itself becomes terminal.
			id := t.internContent(in[s:e])
			t.arena[middle+fReference] = uint32(id)
			return id
		}

		// Mismatch inside the edge: insert the remaining suffix as a
		// fresh child of middle.
		newNode, id := t.newLeaf(in, s, p+match, e)
		t.attachChild(middle, middleDepth, in[p+match], newNode)
		return id
	}
}

// attachOrAppend rewires cur's chain at slot to point at node. If prev is
// the zero node (meaning node belongs at the head of the chain, i.e. the
// chain was empty or node replaces the head), the slot itself is updated;
// otherwise prev's NEXT_SIBLING is rewired. prev == 0 is unambiguous here
// because index 0 is always the root, which is never a sibling.
func (t *Trie) attachOrAppend(cur uint32, slot int, prev uint32, node uint32) {
	if prev == 0 {
		t.setChildSlot(cur, slot, node)
		return
	}
	t.arena[prev+fNextSibling] = node
}

// Content returns the distinct-content table built so far, in first-seen
// order, index 0 being the empty sequence.
func (t *Trie) Content() [][]byte { return t.content }

// TakeContent transfers ownership of the content table to the caller
// (the matrix builder) and drops the arena, per spec.md §5's "trie exists
// only during parsing" lifecycle.
func (t *Trie) TakeContent() [][]byte {
	c := t.content
	t.content = nil
	t.arena = nil
	return c
}

// NodeCount returns the number of trie nodes allocated, for
// internal/metrics.
func (t *Trie) NodeCount() int { return t.nodeCount }

// ArenaWords returns the arena's current length in uint32 words, for
// internal/metrics.
func (t *Trie) ArenaWords() int { return len(t.arena) }
