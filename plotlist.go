package atlas

// plotNode is a node in the doubly-linked recency list of one page.
type plotNode struct {
	plot *Plot
	prev *plotNode
	next *plotNode
}

// plotList orders a page's plots by recency of use. The head is the most
// recently used plot, the tail the least recently used; insertion tries
// plots front-to-back and eviction candidates come from the tail.
//
// plotList is not thread-safe; the atlas owns synchronization.
type plotList struct {
	head  *plotNode
	tail  *plotNode
	nodes map[*Plot]*plotNode
}

func newPlotList() *plotList {
	return &plotList{nodes: make(map[*Plot]*plotNode, MaxPlots)}
}

// PushFront adds a plot at the head.
func (l *plotList) PushFront(p *Plot) {
	node := &plotNode{plot: p}
	if l.head == nil {
		l.head = node
		l.tail = node
	} else {
		node.next = l.head
		l.head.prev = node
		l.head = node
	}
	l.nodes[p] = node
}

// MoveToFront marks a plot as most recently used.
func (l *plotList) MoveToFront(p *Plot) {
	node := l.nodes[p]
	if node == nil || node == l.head {
		return
	}
	l.unlink(node)
	node.prev = nil
	node.next = l.head
	l.head.prev = node
	l.head = node
}

// Tail returns the least recently used plot, or nil if the list is empty.
func (l *plotList) Tail() *Plot {
	if l.tail == nil {
		return nil
	}
	return l.tail.plot
}

// Each walks the plots from most to least recently used, stopping when fn
// returns false.
func (l *plotList) Each(fn func(*Plot) bool) {
	for node := l.head; node != nil; node = node.next {
		if !fn(node.plot) {
			return
		}
	}
}

// Clear empties the list.
func (l *plotList) Clear() {
	l.head = nil
	l.tail = nil
	clear(l.nodes)
}

// unlink removes a node without clearing its pointers.
func (l *plotList) unlink(node *plotNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
}
