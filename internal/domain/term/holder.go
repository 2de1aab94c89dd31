package term

import "sync/atomic"

// IndexHolder swaps the active cache index atomically, so the snapshot
// watcher can rebuild the index while requests keep reading the previous
// one.  The zero holder serves no candidates until the first Swap.
type IndexHolder struct {
	current atomic.Pointer[Index]
}

// NewIndexHolder creates a holder serving ix, which may be nil.
func NewIndexHolder(ix *Index) *IndexHolder {
	h := &IndexHolder{}
	if ix != nil {
		h.current.Store(ix)
	}
	return h
}

// Swap replaces the active index.
func (h *IndexHolder) Swap(ix *Index) {
	h.current.Store(ix)
}

// Candidates delegates to the active index.
func (h *IndexHolder) Candidates(token string, maxResults int) []EverydayTerm {
	ix := h.current.Load()
	if ix == nil {
		return nil
	}
	return ix.Candidates(token, maxResults)
}

// Len reports the legal-term count of the active index, for metrics.
func (h *IndexHolder) Len() int {
	ix := h.current.Load()
	if ix == nil {
		return 0
	}
	return ix.Len()
}
