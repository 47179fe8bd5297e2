package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferOrder(t *testing.T) {
	var r Buffer
	for i := 0; i < 10; i++ {
		require.True(t, r.Push(byte(i)))
	}
	require.Equal(t, 10, r.Len())
	for i := 0; i < 10; i++ {
		b, ok := r.Pop()
		require.True(t, ok)
		require.Equal(t, byte(i), b)
	}
	_, ok := r.Pop()
	require.False(t, ok)
	require.Equal(t, 0, r.Len())
}

func TestBufferDropNewest(t *testing.T) {
	var r Buffer
	for i := 0; i < Capacity; i++ {
		require.True(t, r.Push(byte(i)))
	}
	require.Equal(t, 0, r.Free())
	require.False(t, r.Push(0xaa))
	require.False(t, r.Push(0xbb))
	require.Equal(t, uint32(2), r.Dropped())
	require.Equal(t, Capacity, r.Len())

	b, ok := r.Pop()
	require.True(t, ok)
	require.Equal(t, byte(0), b, "oldest byte must survive overflow")
	require.True(t, r.Push(0xcc))

	r.Reset()
	require.Equal(t, 0, r.Len())
	require.Equal(t, uint32(0), r.Dropped())
}

func TestBufferWraparound(t *testing.T) {
	var r Buffer
	for round := 0; round < 5; round++ {
		for i := 0; i < Capacity-1; i++ {
			require.True(t, r.Push(byte(i+round)))
		}
		for i := 0; i < Capacity-1; i++ {
			b, ok := r.Pop()
			require.True(t, ok)
			require.Equal(t, byte(i+round), b)
		}
	}
	require.Equal(t, 0, r.Len())
}

func TestBufferConcurrent(t *testing.T) {
	const total = 100000
	var r Buffer
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if r.Push(byte(i)) {
				i++
			}
		}
	}()
	for i := 0; i < total; {
		if b, ok := r.Pop(); ok {
			require.Equal(t, byte(i), b)
			i++
		}
	}
	wg.Wait()
}
