package node

// KeywordMap is a prefix trie over bytes mapping each keyword string to a
// small integer id, consulted by Keyword nodes to both match and tag the
// parent token (spec §3 Keyword map).
type KeywordMap struct {
	root          *trieNode
	caseSensitive bool
}

type trieNode struct {
	children [256]*trieNode
	id       int
	hasID    bool
}

// NewKeywordMap builds a trie from the given keyword -> id table.
// caseSensitive controls both insertion and lookup folding.
func NewKeywordMap(keywords map[string]int, caseSensitive bool) *KeywordMap {
	m := &KeywordMap{root: &trieNode{id: -1}, caseSensitive: caseSensitive}
	for kw, id := range keywords {
		m.add(kw, id)
	}
	return m
}

func (m *KeywordMap) add(kw string, id int) {
	b := []byte(kw)
	if !m.caseSensitive {
		b = foldBytes(b)
	}
	n := m.root
	for _, c := range b {
		if n.children[c] == nil {
			n.children[c] = &trieNode{id: -1}
		}
		n = n.children[c]
	}
	n.id = id
	n.hasID = true
}

// Match performs a longest-prefix match of the trie against in starting at
// pos. Returns the end position and matched id, or ok=false if no keyword
// in the map is a prefix of the input at pos.
func (m *KeywordMap) Match(at func(i int) (byte, bool), pos int) (end, id int, ok bool) {
	n := m.root
	i := pos
	bestEnd, bestID, bestOK := 0, -1, false
	for {
		b, has := at(i)
		if !has {
			break
		}
		if !m.caseSensitive {
			b = foldByte(b)
		}
		next := n.children[b]
		if next == nil {
			break
		}
		n = next
		i++
		if n.hasID {
			bestEnd, bestID, bestOK = i, n.id, true
		}
	}
	return bestEnd, bestID, bestOK
}
