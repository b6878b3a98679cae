package collision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	require.NotNil(t, tracker)
	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())

	_, ok := tracker.Find(0x1234, func(int) bool { return true })
	require.False(t, ok)
}

func TestTracker_AddAndFind(t *testing.T) {
	tracker := NewTracker()
	entries := []string{"cpu.usage", "mem.usage"}

	require.Equal(t, 0, tracker.Add(0x1234567890abcdef))
	require.Equal(t, 1, tracker.Add(0xfedcba0987654321))
	require.Equal(t, 2, tracker.Count())
	require.False(t, tracker.HasCollision())

	idx, ok := tracker.Find(0xfedcba0987654321, func(i int) bool { return entries[i] == "mem.usage" })
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = tracker.Find(0xfedcba0987654321, func(i int) bool { return entries[i] == "disk.usage" })
	require.False(t, ok)
}

func TestTracker_Collision(t *testing.T) {
	tracker := NewTracker()
	entries := []string{"cpu.usage", "cpu.idle", "cpu.user"}

	const shared = 0x1234567890abcdef
	for range entries {
		tracker.Add(shared)
	}
	require.True(t, tracker.HasCollision())
	require.Equal(t, 3, tracker.Count())

	for want, name := range entries {
		idx, ok := tracker.Find(shared, func(i int) bool { return entries[i] == name })
		require.True(t, ok)
		require.Equal(t, want, idx)
	}
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(1)
	tracker.Add(1)
	require.True(t, tracker.HasCollision())

	tracker.Reset()
	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())
	_, ok := tracker.Find(1, func(int) bool { return true })
	require.False(t, ok)

	require.Equal(t, 0, tracker.Add(1))
}
