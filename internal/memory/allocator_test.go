package memory

import (
	"sync"
	"testing"

	arrowmem "github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/plotdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackingAllocatorCounts(t *testing.T) {
	checked := arrowmem.NewCheckedAllocator(arrowmem.NewGoAllocator())
	defer checked.AssertSize(t, 0)

	mem := NewTrackingAllocator(checked)

	buf := mem.Allocate(64)
	assert.Equal(t, int64(64), mem.AllocatedBytes())

	buf = mem.Reallocate(128, buf)
	assert.Equal(t, int64(128), mem.AllocatedBytes())
	assert.Equal(t, int64(128), mem.PeakBytes())

	buf = mem.Reallocate(32, buf)
	assert.Equal(t, int64(32), mem.AllocatedBytes())

	mem.Free(buf)
	assert.Equal(t, int64(0), mem.AllocatedBytes())
	assert.Equal(t, int64(128), mem.PeakBytes())

	mem.Free(nil)
	assert.Equal(t, int64(0), mem.AllocatedBytes())
}

func TestTrackingAllocatorFrameLifecycle(t *testing.T) {
	mem := NewTrackingAllocator(nil)

	df := testutil.SalesFrame(mem, testutil.WithRowCount(100))
	assert.Positive(t, mem.AllocatedBytes())

	df.Release()
	assert.Equal(t, int64(0), mem.AllocatedBytes())
	assert.Positive(t, mem.PeakBytes())
}

func TestTrackingAllocatorConcurrent(t *testing.T) {
	mem := NewTrackingAllocator(nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				mem.Free(mem.Allocate(16))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(0), mem.AllocatedBytes())
	assert.GreaterOrEqual(t, mem.PeakBytes(), int64(16))
}
