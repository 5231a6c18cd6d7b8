// Stress test for the destroy-while-broadcasting path: goroutines
// release shared subscribers while the main goroutine broadcasts in a
// loop, verifying no subscriber is ever invoked after destruction.
package main

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"delegates/delegate"
	"delegates/ref"
)

// cell counts its invocations and flags any that arrive after its
// finalizer ran.
type cell struct {
	destroyed atomic.Bool
	invoked   atomic.Int64
	late      atomic.Int64
}

func (c *cell) bump(delta int) {
	if c.destroyed.Load() {
		c.late.Add(1)
	}
	c.invoked.Add(int64(delta))
}

var opBump = delegate.NewOp1("cell.bump", (*cell).bump)

func main() {
	testCounts := []int{10, 100, 500, 1000, 5000}

	for _, count := range testCounts {
		runScenario(count)
	}
}

func runScenario(count int) {
	rand.Seed(42) // Consistent results

	var d delegate.Delegate1[int]

	cells := make([]*cell, count)
	handles := make([]ref.Shared[cell], count)
	for i := range cells {
		cells[i] = &cell{}
		c := cells[i]
		handles[i] = ref.NewSharedFinalizer(c, func(*cell) {
			c.destroyed.Store(true)
		})
		delegate.Add1(&d, handles[i], opBump)
	}

	// Droppers release every subscriber at random points while the
	// broadcast loop runs.
	var wg sync.WaitGroup
	const droppers = 4
	for w := 0; w < droppers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := offset; i < count; i += droppers {
				time.Sleep(time.Duration(rand.Intn(200)) * time.Microsecond)
				handles[i].Release()
			}
		}(w)
	}

	const broadcasts = 200
	start := time.Now()
	for i := 0; i < broadcasts; i++ {
		d.Broadcast(1)
	}
	broadcastTime := time.Since(start)

	wg.Wait()

	// One final broadcast with everything destroyed: nothing may fire.
	before := totalInvoked(cells)
	d.Broadcast(1)
	afterDeath := totalInvoked(cells) - before

	var late int64
	for _, c := range cells {
		late += c.late.Load()
	}

	status := "OK"
	if late > 0 || afterDeath > 0 {
		status = "FAIL"
	}

	fmt.Printf("%5d subscribers: %d broadcasts in %8v | invocations: %8d | late: %d | post-death: %d | %s\n",
		count, broadcasts, broadcastTime, before, late, afterDeath, status)

	d.RemoveExpired()
	if d.Len() != 0 {
		fmt.Printf("%5d subscribers: expected empty registry after pruning, got %d\n", count, d.Len())
	}
}

func totalInvoked(cells []*cell) int64 {
	var total int64
	for _, c := range cells {
		total += c.invoked.Load()
	}
	return total
}
