package arena

import "testing"

func TestAllocStable(t *testing.T) {
	a := New()
	const initial = 2000
	fst := a.Alloc(initial)
	if len(fst) != initial {
		t.Fatalf("allocated %d bytes, want %d", len(fst), initial)
	}
	for i := range fst {
		if fst[i] != 0 {
			t.Fatalf("region not zeroed at %d", i)
		}
		fst[i] = byte(i % 128)
	}

	// Push the arena through many overflow pages and verify nothing moved.
	const total = 1 << 16
	const steps = 500
	sz := total / steps
	var middle []byte
	for i := 0; i < steps; i++ {
		arr := a.Alloc(sz)
		if i == steps/2 {
			middle = arr
			for j := range arr {
				arr[j] = byte(j % 128)
			}
		}
	}
	if middle == nil {
		t.Fatal("middle allocation missing")
	}
	for j := range middle {
		if middle[j] != byte(j%128) {
			t.Fatalf("middle block clobbered at %d", j)
		}
	}
	for i := range fst {
		if fst[i] != byte(i%128) {
			t.Fatalf("first block clobbered at %d", i)
		}
	}
}

func TestAllocOversized(t *testing.T) {
	a := New()
	big := a.Alloc(3 * pageSize)
	if len(big) != 3*pageSize {
		t.Fatalf("oversized request returned %d bytes", len(big))
	}
	small := a.Alloc(16)
	big[0] = 1
	if small[0] != 0 {
		t.Fatal("allocations overlap")
	}
}

func TestPool(t *testing.T) {
	type node struct {
		id   int
		next *node
	}
	p := NewPool[node]()
	var nodes []*node
	for i := 0; i < 3*chunkLen+5; i++ {
		n := p.Alloc()
		if n.id != 0 || n.next != nil {
			t.Fatal("node not zeroed")
		}
		n.id = i
		nodes = append(nodes, n)
	}
	if p.Count() != len(nodes) {
		t.Fatalf("count = %d, want %d", p.Count(), len(nodes))
	}
	// Addresses must be stable across chunk growth.
	for i, n := range nodes {
		if n.id != i {
			t.Fatalf("node %d relocated or clobbered", i)
		}
	}
	seen := 0
	p.Each(func(n *node) {
		if n.id != seen {
			t.Fatalf("Each out of order at %d", seen)
		}
		seen++
	})
	if seen != len(nodes) {
		t.Fatalf("Each visited %d nodes", seen)
	}
}
