package queue

import (
	"fmt"
	"sync"
	"testing"

	"Serenade/track"

	"github.com/stretchr/testify/assert"
)

func makeTrack(title string) track.Track {
	return track.Track{
		Title:     title,
		SourceURL: "https://www.youtube.com/watch?v=" + title,
		Source:    track.SourceYouTube,
	}
}

func TestAdd_PositionsIncrease(t *testing.T) {
	q := New()

	for i := 1; i <= 5; i++ {
		pos := q.Add(makeTrack(fmt.Sprintf("song%d", i)))
		assert.Equal(t, i, pos)
	}

	list := q.GetList()
	assert.Len(t, list, 5)
	for i, tr := range list {
		assert.Equal(t, fmt.Sprintf("song%d", i+1), tr.Title)
	}
}

func TestNext_Empty(t *testing.T) {
	q := New()

	tr, ok := q.Next()

	assert.False(t, ok)
	assert.Equal(t, track.Track{}, tr)
}

func TestNext_PopsHeadIntoCurrent(t *testing.T) {
	q := New()
	q.Add(makeTrack("a"))
	q.Add(makeTrack("b"))

	tr, ok := q.Next()

	assert.True(t, ok)
	assert.Equal(t, "a", tr.Title)

	current, ok := q.Current()
	assert.True(t, ok)
	assert.Equal(t, "a", current.Title)

	list := q.GetList()
	assert.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Title)
}

func TestAddNextRemove_Scenario(t *testing.T) {
	q := New()

	assert.Equal(t, 1, q.Add(makeTrack("A")))
	assert.Equal(t, 2, q.Add(makeTrack("B")))

	tr, ok := q.Next()
	assert.True(t, ok)
	assert.Equal(t, "A", tr.Title)

	list := q.GetList()
	assert.Len(t, list, 1)
	assert.Equal(t, "B", list[0].Title)

	removed, ok := q.Remove(1)
	assert.True(t, ok)
	assert.Equal(t, "B", removed.Title)
	assert.Empty(t, q.GetList())
}

func TestRemove_ShiftsPositions(t *testing.T) {
	q := New()
	q.Add(makeTrack("a"))
	q.Add(makeTrack("b"))
	q.Add(makeTrack("c"))

	removed, ok := q.Remove(2)

	assert.True(t, ok)
	assert.Equal(t, "b", removed.Title)

	list := q.GetList()
	assert.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Title)
	assert.Equal(t, "c", list[1].Title)
}

func TestRemove_OutOfRange(t *testing.T) {
	q := New()
	q.Add(makeTrack("a"))

	_, ok := q.Remove(0)
	assert.False(t, ok)

	_, ok = q.Remove(2)
	assert.False(t, ok)

	assert.Equal(t, 1, q.Size())
}

func TestMove(t *testing.T) {
	q := New()
	q.Add(makeTrack("a"))
	q.Add(makeTrack("b"))
	q.Add(makeTrack("c"))

	moved, ok := q.Move(3, 1)

	assert.True(t, ok)
	assert.Equal(t, "c", moved.Title)

	list := q.GetList()
	assert.Equal(t, "c", list[0].Title)
	assert.Equal(t, "a", list[1].Title)
	assert.Equal(t, "b", list[2].Title)
}

func TestMove_InvalidPositions(t *testing.T) {
	q := New()
	q.Add(makeTrack("a"))
	q.Add(makeTrack("b"))

	_, ok := q.Move(0, 1)
	assert.False(t, ok)

	_, ok = q.Move(1, 3)
	assert.False(t, ok)

	list := q.GetList()
	assert.Equal(t, "a", list[0].Title)
	assert.Equal(t, "b", list[1].Title)
}

func TestClear(t *testing.T) {
	q := New()
	q.Add(makeTrack("a"))
	q.Add(makeTrack("b"))
	q.Next()

	q.Clear()

	assert.True(t, q.IsEmpty())
	_, ok := q.Current()
	assert.False(t, ok)
}

func TestClearPending_KeepsCurrent(t *testing.T) {
	q := New()
	q.Add(makeTrack("playing"))
	q.Next()
	q.Add(makeTrack("a"))
	q.Add(makeTrack("b"))

	q.ClearPending()

	assert.True(t, q.IsEmpty())
	current, ok := q.Current()
	assert.True(t, ok)
	assert.Equal(t, "playing", current.Title)
}

func TestShuffle_PreservesTracksAndCurrent(t *testing.T) {
	q := New()
	q.Add(makeTrack("playing"))
	q.Next()
	for i := 0; i < 10; i++ {
		q.Add(makeTrack(fmt.Sprintf("song%d", i)))
	}

	q.Shuffle()

	current, ok := q.Current()
	assert.True(t, ok)
	assert.Equal(t, "playing", current.Title)

	list := q.GetList()
	assert.Len(t, list, 10)

	seen := make(map[string]int)
	for _, tr := range list {
		seen[tr.Title]++
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, 1, seen[fmt.Sprintf("song%d", i)])
	}
}

func TestConcurrentAdd_NoLostTracks(t *testing.T) {
	q := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q.Add(makeTrack(fmt.Sprintf("song%d", n)))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, q.Size())
}

func TestConcurrentNext_NoDuplicates(t *testing.T) {
	q := New()
	for i := 0; i < 50; i++ {
		q.Add(makeTrack(fmt.Sprintf("song%d", i)))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]int)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr, ok := q.Next(); ok {
				mu.Lock()
				seen[tr.Title]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
	for title, count := range seen {
		assert.Equalf(t, 1, count, "track %s returned more than once", title)
	}
}
