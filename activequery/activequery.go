// Package activequery implements the per-thread active-query / active-
// cursor registry (spec.md SS2 component G, SS4.E): a doubly-linked list
// of live queries and cursors kept for crash-safe introspection (a crash
// handler can walk the list without taking any lock the crashing thread
// might already hold -- so Snapshot is a best-effort, lock-free-ish read
// in spirit, approximated here with a plain mutex since Go has no signal-
// handler-safe lock-free list in the standard library).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package activequery

import (
	"container/list"
	"sync"

	"github.com/dsearch/dsearch/cmn/mono"
)

// Kind distinguishes a live query node from a live cursor node.
type Kind int

const (
	KindQuery Kind = iota
	KindCursor
)

// Node is one entry in the active list: either an in-flight query (AST
// reference kept for crash output) or a paused/resumed cursor (id+count).
type Node struct {
	Created   int64
	IndexName string
	Kind      Kind

	AST any // valid iff Kind == KindQuery

	CursorID uint64 // valid iff Kind == KindCursor
	Count    int

	elem *list.Element
}

// List is a per-thread (per-goroutine-worker) registry of live nodes.
// Callers create one List per worker; Snapshot may be called from any
// goroutine for introspection.
type List struct {
	mu sync.Mutex
	l  *list.List
}

func New() *List {
	return &List{l: list.New()}
}

// PushQuery registers a newly started query and returns its node, which
// the caller must pass to Remove on completion.
func (l *List) PushQuery(indexName string, ast any) *Node {
	n := &Node{Created: mono.NanoTime(), IndexName: indexName, Kind: KindQuery, AST: ast}
	l.mu.Lock()
	n.elem = l.l.PushBack(n)
	l.mu.Unlock()
	return n
}

// PushCursor registers a cursor resumed for execution.
func (l *List) PushCursor(indexName string, cursorID uint64, count int) *Node {
	n := &Node{Created: mono.NanoTime(), IndexName: indexName, Kind: KindCursor, CursorID: cursorID, Count: count}
	l.mu.Lock()
	n.elem = l.l.PushBack(n)
	l.mu.Unlock()
	return n
}

// Remove unlinks n. O(1).
func (l *List) Remove(n *Node) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n.elem != nil {
		l.l.Remove(n.elem)
		n.elem = nil
	}
}

// Snapshot copies every live node's fields for crash/introspection
// output; mutating the result has no effect on the list.
func (l *List) Snapshot() []Node {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Node, 0, l.l.Len())
	for e := l.l.Front(); e != nil; e = e.Next() {
		n := e.Value.(*Node)
		cp := *n
		cp.elem = nil
		out = append(out, cp)
	}
	return out
}

// Len reports the number of live nodes.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.l.Len()
}
