package pages

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	return img
}

// originalPages reports the OriginalPage of each active page in display order.
func originalPages(m *Manager) []int {
	var out []int
	for _, ref := range m.ActivePagesSorted() {
		out = append(out, ref.OriginalPage)
	}
	return out
}

func TestAddAndActiveOrder(t *testing.T) {
	m := NewManager()
	m.AddPage(3, testImage(4, 2))
	m.AddPage(1, testImage(4, 2))
	m.AddPage(2, testImage(4, 2))

	assert.Equal(t, 3, m.SelectedCount())
	assert.Equal(t, []int{1, 2, 3}, originalPages(m))
}

func TestRotateAccumulates(t *testing.T) {
	m := NewManager()
	m.AddPage(1, testImage(4, 2))

	require.True(t, m.RotatePage(1, 90))
	assert.Equal(t, 90, m.PageInfo(1).Rotation)

	b := m.PageImage(1).Bounds()
	assert.Equal(t, 2, b.Dx())
	assert.Equal(t, 4, b.Dy())

	require.True(t, m.RotatePage(1, 90))
	require.True(t, m.RotatePage(1, 180))
	assert.Equal(t, 0, m.PageInfo(1).Rotation)

	b = m.PageImage(1).Bounds()
	assert.Equal(t, 4, b.Dx())
	assert.Equal(t, 2, b.Dy())
}

func TestRotateNegative(t *testing.T) {
	m := NewManager()
	m.AddPage(1, testImage(4, 2))

	require.True(t, m.RotatePage(1, -90))
	assert.Equal(t, 270, m.PageInfo(1).Rotation)
}

func TestRotateUnknownPage(t *testing.T) {
	m := NewManager()
	assert.False(t, m.RotatePage(7, 90))
}

func TestDeleteRestore(t *testing.T) {
	m := NewManager()
	m.AddPage(1, testImage(2, 2))
	m.AddPage(2, testImage(2, 2))

	require.True(t, m.DeletePage(1))
	assert.Equal(t, 1, m.SelectedCount())
	assert.Nil(t, m.PageImage(1))
	assert.NotNil(t, m.PageInfo(1), "deleted page stays in storage")

	require.True(t, m.RestorePage(1))
	assert.Equal(t, 2, m.SelectedCount())
	assert.NotNil(t, m.PageImage(1))
	assert.Equal(t, []int{1, 2}, originalPages(m))
}

func TestDeletePreservesRotation(t *testing.T) {
	m := NewManager()
	m.AddPage(1, testImage(4, 2))

	require.True(t, m.RotatePage(1, 90))
	require.True(t, m.DeletePage(1))
	require.True(t, m.RestorePage(1))

	assert.Equal(t, 90, m.PageInfo(1).Rotation)
}

func TestMovePage(t *testing.T) {
	m := NewManager()
	m.AddPage(1, nil)
	m.AddPage(2, nil)
	m.AddPage(3, nil)

	require.True(t, m.MovePageDown(1))
	assert.Equal(t, []int{2, 1, 3}, originalPages(m))

	// the moved page now sits at display number 2; moving it back up
	// addresses that number, not its original one
	require.True(t, m.MovePageUp(2))
	assert.Equal(t, []int{1, 2, 3}, originalPages(m))
}

func TestMovePageBoundaries(t *testing.T) {
	m := NewManager()
	m.AddPage(1, nil)
	m.AddPage(2, nil)

	assert.False(t, m.MovePageUp(1))
	assert.False(t, m.MovePageDown(2))
	assert.False(t, m.MovePageUp(9))
}

func TestMovePageSkipsDeleted(t *testing.T) {
	m := NewManager()
	m.AddPage(1, nil)
	m.AddPage(2, nil)
	m.AddPage(3, nil)
	require.True(t, m.DeletePage(2))

	// with page 2 deleted, pages 1 and 3 are adjacent in active order
	require.True(t, m.MovePageDown(1))
	assert.Equal(t, []int{3, 1}, originalPages(m))
	assert.True(t, m.PageInfo(2).Deleted)
}

func TestReorder(t *testing.T) {
	m := NewManager()
	m.AddPage(1, nil)
	m.AddPage(2, nil)
	m.AddPage(3, nil)

	m.Reorder([]int{3, 1, 2})
	assert.Equal(t, []int{3, 1, 2}, originalPages(m))
}

func TestReorderPartialOrder(t *testing.T) {
	m := NewManager()
	for n := 1; n <= 4; n++ {
		m.AddPage(n, nil)
	}

	// omitted pages keep their relative order at the end
	m.Reorder([]int{4, 2})
	assert.Equal(t, []int{4, 2, 1, 3}, originalPages(m))
}

func TestReorderFiltersBadNumbers(t *testing.T) {
	m := NewManager()
	m.AddPage(1, nil)
	m.AddPage(2, nil)
	m.AddPage(3, nil)
	require.True(t, m.DeletePage(2))

	m.Reorder([]int{3, 2, 9, 3, 1})
	assert.Equal(t, []int{3, 1}, originalPages(m))
	assert.True(t, m.PageInfo(2).Deleted, "deleted entry keeps its key")
}

func TestMoveBefore(t *testing.T) {
	m := NewManager()
	for n := 1; n <= 4; n++ {
		m.AddPage(n, nil)
	}

	require.True(t, m.MoveBefore(4, 2))
	assert.Equal(t, []int{1, 4, 2, 3}, originalPages(m))

	assert.False(t, m.MoveBefore(2, 2))
	assert.False(t, m.MoveBefore(9, 1))
}

func newMultiSource() *Manager {
	m := NewManager()
	m.AddSourcePage(1, nil, "a.pdf", 0, 1)
	m.AddSourcePage(2, nil, "a.pdf", 0, 2)
	m.AddSourcePage(3, nil, "a.pdf", 0, 3)
	m.AddSourcePage(4, nil, "b.pdf", 1, 1)
	m.AddSourcePage(5, nil, "b.pdf", 1, 2)
	return m
}

func TestUniqueSources(t *testing.T) {
	m := newMultiSource()

	sources := m.UniqueSources()
	require.Len(t, sources, 2)
	assert.Equal(t, Source{Index: 0, Name: "a.pdf"}, sources[0])
	assert.Equal(t, Source{Index: 1, Name: "b.pdf"}, sources[1])
}

func TestPagesBySource(t *testing.T) {
	m := newMultiSource()

	refs := m.PagesBySource(1)
	require.Len(t, refs, 2)
	assert.Equal(t, 1, refs[0].OriginalPage)
	assert.Equal(t, 2, refs[1].OriginalPage)
}

func TestMoveSourceUnequalGroups(t *testing.T) {
	m := newMultiSource()

	require.True(t, m.MoveSourceUp(1))

	var gotSources, gotLocals []int
	for _, ref := range m.ActivePagesSorted() {
		gotSources = append(gotSources, ref.SourceIndex)
		gotLocals = append(gotLocals, ref.OriginalPage)
	}
	assert.Equal(t, []int{1, 1, 0, 0, 0}, gotSources)
	assert.Equal(t, []int{1, 2, 1, 2, 3}, gotLocals, "intra-group order preserved")

	// moving back restores the original layout
	require.True(t, m.MoveSourceDown(1))
	gotSources = gotSources[:0]
	for _, ref := range m.ActivePagesSorted() {
		gotSources = append(gotSources, ref.SourceIndex)
	}
	assert.Equal(t, []int{0, 0, 0, 1, 1}, gotSources)
}

func TestMoveSourceBoundaries(t *testing.T) {
	m := newMultiSource()

	assert.False(t, m.MoveSourceUp(0))
	assert.False(t, m.MoveSourceDown(1))
	assert.False(t, m.MoveSourceUp(5))
}

func TestClear(t *testing.T) {
	m := newMultiSource()
	m.Clear()

	assert.Equal(t, 0, m.SelectedCount())
	assert.Empty(t, m.ActivePages())
	assert.Nil(t, m.PageInfo(1))
}
