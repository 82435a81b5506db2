package models

import (
	"strings"
)

const DefaultSearchHistorySize = 5

// SearchHistory keeps the most recently used search terms, newest first.
type SearchHistory struct {
	terms      []string
	maxEntries int
}

func NewSearchHistory(maxEntries int) *SearchHistory {
	if maxEntries <= 0 {
		maxEntries = DefaultSearchHistorySize
	}

	return &SearchHistory{
		terms:      make([]string, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Push moves term to the front, dropping any case-insensitive duplicate and
// the oldest entry once the history is full.
func (h *SearchHistory) Push(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	h.remove(term)
	h.terms = append([]string{term}, h.terms...)

	if len(h.terms) > h.maxEntries {
		h.terms = h.terms[:h.maxEntries]
	}
}

func (h *SearchHistory) Remove(term string) bool {
	return h.remove(strings.TrimSpace(term))
}

func (h *SearchHistory) remove(term string) bool {
	for i, existing := range h.terms {
		if strings.EqualFold(existing, term) {
			h.terms = append(h.terms[:i], h.terms[i+1:]...)
			return true
		}
	}
	return false
}

func (h *SearchHistory) Clear() {
	h.terms = h.terms[:0]
}

func (h *SearchHistory) Len() int {
	return len(h.terms)
}

// Terms returns a copy, newest first.
func (h *SearchHistory) Terms() []string {
	result := make([]string, len(h.terms))
	copy(result, h.terms)
	return result
}

// Import replaces the history, keeping the first maxEntries non-blank unique terms.
func (h *SearchHistory) Import(terms []string) {
	h.terms = h.terms[:0]
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || h.contains(t) {
			continue
		}
		h.terms = append(h.terms, t)
		if len(h.terms) == h.maxEntries {
			break
		}
	}
}

func (h *SearchHistory) contains(term string) bool {
	for _, existing := range h.terms {
		if strings.EqualFold(existing, term) {
			return true
		}
	}
	return false
}
