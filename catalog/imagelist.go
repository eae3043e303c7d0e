package catalog

import (
	"fmt"
	"sync"
)

// ImageList is the ordered set of image links attached to a product draft.
// It is mutated by concurrent upload completions and by user reorder/delete
// actions, so every mutation goes through one mutex and is applied against
// the live sequence - never against an index or slice captured earlier.
type ImageList struct {
	mu    sync.Mutex
	links []string
}

func NewImageList() *ImageList {
	return &ImageList{}
}

// Append adds links at the tail, preserving their relative order.
func (l *ImageList) Append(links ...string) {
	if len(links) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.links = append(l.links, links...)
}

// Reorder replaces the sequence with newOrder. The new order must contain
// exactly the current elements (duplicates included); anything else signals
// a stale or broken caller and is rejected.
func (l *ImageList) Reorder(newOrder []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(newOrder) != len(l.links) {
		return &ValidationError{
			Field:  "images",
			Reason: fmt.Sprintf("reorder has %d links but list has %d", len(newOrder), len(l.links)),
		}
	}

	counts := make(map[string]int, len(l.links))
	for _, link := range l.links {
		counts[link]++
	}
	for _, link := range newOrder {
		counts[link]--
		if counts[link] < 0 {
			return &ValidationError{Field: "images", Reason: "reorder does not match current images"}
		}
	}

	l.links = append(l.links[:0:0], newOrder...)
	return nil
}

// DeleteAt removes the element at index, validated against the list as it is
// right now. A concurrent append between the user's click and this call moves
// nothing: the index still names the same element it did when rendered,
// because appends only extend the tail.
func (l *ImageList) DeleteAt(index int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.links) {
		return "", &ValidationError{
			Field:  "index",
			Reason: fmt.Sprintf("index %d out of range for %d images", index, len(l.links)),
		}
	}

	removed := l.links[index]
	l.links = append(l.links[:index], l.links[index+1:]...)
	return removed, nil
}

// Links returns a snapshot copy of the current sequence.
func (l *ImageList) Links() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.links...)
}

func (l *ImageList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.links)
}
