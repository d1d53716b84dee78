package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectPool(t *testing.T) {
	p := NewObjectPool[int](2)
	_, ok := p.Acquire()
	require.False(t, ok)

	p.Release(1)
	p.Release(2)
	p.Release(3)

	obj, ok := p.Acquire()
	require.True(t, ok)
	require.Equal(t, 2, obj)
	obj, ok = p.Acquire()
	require.True(t, ok)
	require.Equal(t, 1, obj)
	_, ok = p.Acquire()
	require.False(t, ok)
}

func TestBuffers(t *testing.T) {
	b := NewBuffers(4, 16, 64)

	buff := b.Acquire()
	require.Empty(t, buff)
	require.Equal(t, 16, cap(buff))

	buff = append(buff, "hello"...)
	b.Release(buff)
	reused := b.Acquire()
	require.Empty(t, reused)
	require.Equal(t, 16, cap(reused))

	b.Release(make([]byte, 0, 128))
	require.Equal(t, 16, cap(b.Acquire()))
}
