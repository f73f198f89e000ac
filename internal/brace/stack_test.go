package brace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenStackPop(t *testing.T) {
	t.Parallel()
	var s OpenStack

	_, ok := s.Pop()
	assert.False(t, ok)

	s.Push(Entry{Line: 1, Column: 1, Kind: KindBrace})
	s.Push(Entry{Line: 2, Column: 4, Kind: KindBrace})

	top, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, Entry{Line: 2, Column: 4, Kind: KindBrace}, top)
	assert.Equal(t, 1, s.Len())
}

func TestOpenStackRemoveNearest(t *testing.T) {
	t.Parallel()
	var s OpenStack
	s.Push(Entry{Line: 1, Column: 1, Kind: KindInterpolation})
	s.Push(Entry{Line: 1, Column: 5, Kind: KindInterpolation})
	s.Push(Entry{Line: 1, Column: 9, Kind: KindBrace})

	removed, ok := s.RemoveNearest(KindInterpolation)
	assert.True(t, ok)
	assert.Equal(t, Entry{Line: 1, Column: 5, Kind: KindInterpolation}, removed)
	assert.Equal(t, []Entry{
		{Line: 1, Column: 1, Kind: KindInterpolation},
		{Line: 1, Column: 9, Kind: KindBrace},
	}, s.Entries())

	var braces OpenStack
	braces.Push(Entry{Line: 1, Column: 1, Kind: KindBrace})
	_, ok = braces.RemoveNearest(KindInterpolation)
	assert.False(t, ok)
	assert.Equal(t, 1, braces.Len())
}

func TestOpenStackEntriesIsCopy(t *testing.T) {
	t.Parallel()
	var s OpenStack
	s.Push(Entry{Line: 1, Column: 1, Kind: KindBrace})

	entries := s.Entries()
	entries[0].Line = 99

	top, _ := s.Pop()
	assert.Equal(t, 1, top.Line)
}

func TestVerdictTail(t *testing.T) {
	t.Parallel()
	var open []Entry
	for i := 1; i <= 10; i++ {
		open = append(open, Entry{Line: i, Column: 1, Kind: KindBrace})
	}
	v := Verdict{Kind: UnmatchedOpen, Open: open}

	tail := v.Tail(8)
	assert.Len(t, tail, 8)
	assert.Equal(t, 3, tail[0].Line)
	assert.Equal(t, 10, tail[7].Line)
	assert.Len(t, v.Tail(20), 10)
	assert.Nil(t, v.Tail(0))

	last, ok := v.Last()
	assert.True(t, ok)
	assert.Equal(t, 10, last.Line)
	assert.Equal(t, 10, v.Count())

	_, ok = Verdict{Kind: AllMatched}.Last()
	assert.False(t, ok)
}
