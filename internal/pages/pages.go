// Package pages owns the in-memory working set of a document session: one
// PageRef per rendered page, plus the structural operations the UI wires to
// rotate/delete/restore/reorder gestures.
package pages

import (
	"image"
	"sort"

	"github.com/Felipe10812/Extractor-de-PDF/internal/imaging"
)

// PageRef is a single working-set entry. PageNumber is the current display
// position (1-based) and doubles as the Manager's map key; it is reassigned
// whenever pages or sources are reordered. OriginalPage keeps the page's
// number within its own source document for display and file naming.
type PageRef struct {
	PageNumber   int
	Rotation     int // 0, 90, 180, 270 clockwise
	Deleted      bool
	Original     image.Image
	Rotated      image.Image
	SourceName   string
	SourceIndex  int
	OriginalPage int
}

// Source identifies one source document contributing pages to the working set.
type Source struct {
	Index int
	Name  string
}

// Manager holds the working set. It is not safe for concurrent mutation; a
// single UI session owns each instance and export code only reads from it.
type Manager struct {
	pages    map[int]*PageRef
	selected []int // active page numbers, ascending
}

// NewManager returns an empty working set.
func NewManager() *Manager {
	return &Manager{pages: make(map[int]*PageRef)}
}

// AddPage inserts a page rendered from a single-document session. Re-adding
// an existing number overwrites; the caller guarantees uniqueness within a
// load session.
func (m *Manager) AddPage(number int, img image.Image) {
	m.AddSourcePage(number, img, "", 0, number)
}

// AddSourcePage inserts a page with multi-document provenance.
func (m *Manager) AddSourcePage(number int, img image.Image, sourceName string, sourceIndex, originalPage int) {
	var rotated image.Image
	if img != nil {
		rotated = imaging.Rotate(img, 0)
	}
	m.pages[number] = &PageRef{
		PageNumber:   number,
		Original:     img,
		Rotated:      rotated,
		SourceName:   sourceName,
		SourceIndex:  sourceIndex,
		OriginalPage: originalPage,
	}
	m.selectPage(number)
}

// RotatePage adds degrees (mod 360) to the page's cumulative rotation and
// regenerates the rotated bitmap from the original. Returns false for an
// unknown page number.
func (m *Manager) RotatePage(number, degrees int) bool {
	ref, ok := m.pages[number]
	if !ok {
		return false
	}

	ref.Rotation = ((ref.Rotation+degrees)%360 + 360) % 360
	if ref.Original != nil {
		ref.Rotated = imaging.Rotate(ref.Original, ref.Rotation)
	}
	return true
}

// DeletePage soft-deletes a page. The entry stays in storage for a later
// Restore but leaves every active-page query and export.
func (m *Manager) DeletePage(number int) bool {
	ref, ok := m.pages[number]
	if !ok {
		return false
	}
	ref.Deleted = true
	m.deselectPage(number)
	return true
}

// RestorePage undoes a soft delete, re-inserting the page into ascending
// active order.
func (m *Manager) RestorePage(number int) bool {
	ref, ok := m.pages[number]
	if !ok {
		return false
	}
	ref.Deleted = false
	m.selectPage(number)
	return true
}

// ActivePages returns every non-deleted entry in no particular order.
// Callers that need display order sort by PageNumber or use
// ActivePagesSorted.
func (m *Manager) ActivePages() []*PageRef {
	refs := make([]*PageRef, 0, len(m.selected))
	for _, ref := range m.pages {
		if !ref.Deleted {
			refs = append(refs, ref)
		}
	}
	return refs
}

// ActivePagesSorted returns the active pages in ascending PageNumber order,
// the order every combined export uses.
func (m *Manager) ActivePagesSorted() []*PageRef {
	refs := m.ActivePages()
	sort.Slice(refs, func(i, j int) bool { return refs[i].PageNumber < refs[j].PageNumber })
	return refs
}

// PageImage returns the rotated bitmap for an active page, or nil for an
// unknown or deleted page.
func (m *Manager) PageImage(number int) image.Image {
	ref, ok := m.pages[number]
	if !ok || ref.Deleted {
		return nil
	}
	return ref.Rotated
}

// PageInfo returns the entry for a page number, deleted or not, or nil.
func (m *Manager) PageInfo(number int) *PageRef {
	return m.pages[number]
}

// Clear empties the working set. Must be called between document loads.
func (m *Manager) Clear() {
	m.pages = make(map[int]*PageRef)
	m.selected = nil
}

// SelectedCount is the number of active pages.
func (m *Manager) SelectedCount() int {
	return len(m.selected)
}

// PagesBySource returns the active pages of one source document in ascending
// display order.
func (m *Manager) PagesBySource(sourceIndex int) []*PageRef {
	var refs []*PageRef
	for _, n := range m.selected {
		if ref := m.pages[n]; ref.SourceIndex == sourceIndex {
			refs = append(refs, ref)
		}
	}
	return refs
}

// UniqueSources lists the distinct source documents among active pages,
// sorted by source index.
func (m *Manager) UniqueSources() []Source {
	byIndex := make(map[int]string)
	for _, n := range m.selected {
		ref := m.pages[n]
		if _, ok := byIndex[ref.SourceIndex]; !ok {
			byIndex[ref.SourceIndex] = ref.SourceName
		}
	}

	sources := make([]Source, 0, len(byIndex))
	for idx, name := range byIndex {
		sources = append(sources, Source{Index: idx, Name: name})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Index < sources[j].Index })
	return sources
}

// MovePageUp swaps the page's display number with its predecessor in
// ascending active order. The first page cannot move up.
func (m *Manager) MovePageUp(number int) bool {
	idx := m.selectedIndex(number)
	if idx <= 0 {
		return false
	}
	m.swapKeys(number, m.selected[idx-1])
	return true
}

// MovePageDown swaps the page's display number with its successor in
// ascending active order. The last page cannot move down.
func (m *Manager) MovePageDown(number int) bool {
	idx := m.selectedIndex(number)
	if idx < 0 || idx >= len(m.selected)-1 {
		return false
	}
	m.swapKeys(number, m.selected[idx+1])
	return true
}

// MoveSourceUp swaps a source document's page range with the source directly
// above it in display order. Intra-group order is preserved; both groups'
// page numbers are drawn from one shared pool so unequal group sizes can
// never collide.
func (m *Manager) MoveSourceUp(sourceIndex int) bool {
	order := m.sourcesByPosition()
	pos := indexOf(order, sourceIndex)
	if pos <= 0 {
		return false
	}
	m.swapSourceGroups(order[pos-1], sourceIndex)
	return true
}

// MoveSourceDown swaps a source document's page range with the source
// directly below it in display order.
func (m *Manager) MoveSourceDown(sourceIndex int) bool {
	order := m.sourcesByPosition()
	pos := indexOf(order, sourceIndex)
	if pos < 0 || pos >= len(order)-1 {
		return false
	}
	m.swapSourceGroups(sourceIndex, order[pos+1])
	return true
}

// Reorder rearranges the active pages into the order given by newOrder, a
// sequence of current page numbers. Numbers that are unknown, deleted, or
// repeated are filtered out; active pages missing from newOrder keep their
// relative order at the end. The ascending active numbers form the pool of
// display numbers reassigned across the new sequence, so deleted entries
// keep their keys untouched.
func (m *Manager) Reorder(newOrder []int) {
	seen := make(map[int]bool, len(newOrder))
	ordered := make([]*PageRef, 0, len(m.selected))

	for _, n := range newOrder {
		ref, ok := m.pages[n]
		if !ok || ref.Deleted || seen[n] {
			continue
		}
		seen[n] = true
		ordered = append(ordered, ref)
	}
	for _, n := range m.selected {
		if !seen[n] {
			ordered = append(ordered, m.pages[n])
		}
	}

	pool := append([]int(nil), m.selected...)
	for _, ref := range ordered {
		delete(m.pages, ref.PageNumber)
	}
	for i, ref := range ordered {
		ref.PageNumber = pool[i]
		m.pages[pool[i]] = ref
	}
}

// MoveBefore relocates one page directly before another, the primitive a
// drag-and-drop handler needs: it removes the dragged page from the current
// ascending order, reinserts it before the target, and delegates to Reorder.
func (m *Manager) MoveBefore(page, target int) bool {
	if page == target {
		return false
	}
	if m.selectedIndex(page) < 0 || m.selectedIndex(target) < 0 {
		return false
	}

	order := make([]int, 0, len(m.selected))
	for _, n := range m.selected {
		if n == page {
			continue
		}
		if n == target {
			order = append(order, page)
		}
		order = append(order, n)
	}

	m.Reorder(order)
	return true
}

func (m *Manager) selectPage(number int) {
	if m.selectedIndex(number) >= 0 {
		return
	}
	m.selected = append(m.selected, number)
	sort.Ints(m.selected)
}

func (m *Manager) deselectPage(number int) {
	if idx := m.selectedIndex(number); idx >= 0 {
		m.selected = append(m.selected[:idx], m.selected[idx+1:]...)
	}
}

func (m *Manager) selectedIndex(number int) int {
	for i, n := range m.selected {
		if n == number {
			return i
		}
	}
	return -1
}

// swapKeys exchanges the display numbers (and map keys) of two entries.
func (m *Manager) swapKeys(a, b int) {
	refA, refB := m.pages[a], m.pages[b]
	refA.PageNumber, refB.PageNumber = b, a
	m.pages[a], m.pages[b] = refB, refA
}

// sourcesByPosition lists source indices ordered by where their pages
// currently sit on screen (the minimum active page number of each group).
func (m *Manager) sourcesByPosition() []int {
	firstPage := make(map[int]int)
	var order []int
	for _, n := range m.selected {
		ref := m.pages[n]
		if _, ok := firstPage[ref.SourceIndex]; !ok {
			firstPage[ref.SourceIndex] = n
			order = append(order, ref.SourceIndex)
		}
	}
	sort.Slice(order, func(i, j int) bool { return firstPage[order[i]] < firstPage[order[j]] })
	return order
}

// swapSourceGroups renumbers the pages of two adjacent sources so that
// second's group displays before first's. The combined groups' existing page
// numbers, sorted ascending, are reassigned across the concatenation
// second++first, preserving each group's internal order.
func (m *Manager) swapSourceGroups(first, second int) {
	groupA := m.PagesBySource(first)
	groupB := m.PagesBySource(second)

	pool := make([]int, 0, len(groupA)+len(groupB))
	for _, ref := range groupA {
		pool = append(pool, ref.PageNumber)
	}
	for _, ref := range groupB {
		pool = append(pool, ref.PageNumber)
	}
	sort.Ints(pool)

	ordered := append(append([]*PageRef{}, groupB...), groupA...)
	for _, ref := range ordered {
		delete(m.pages, ref.PageNumber)
	}
	for i, ref := range ordered {
		ref.PageNumber = pool[i]
		m.pages[pool[i]] = ref
	}
}

func indexOf(list []int, v int) int {
	for i, n := range list {
		if n == v {
			return i
		}
	}
	return -1
}
