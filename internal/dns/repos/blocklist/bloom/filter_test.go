package bloom

import (
	"fmt"
	"sync"
	"testing"
)

func TestFilter_NoFalseNegatives(t *testing.T) {
	f := NewFactory().New(1000, 0.01)
	for i := range 1000 {
		f.Add(fmt.Appendf(nil, "d%04d.blocked.test", i))
	}
	for i := range 1000 {
		if !f.MightContain(fmt.Appendf(nil, "d%04d.blocked.test", i)) {
			t.Fatalf("false negative for d%04d.blocked.test", i)
		}
	}
}

func TestFilter_ConcurrentReadsDuringWrites(t *testing.T) {
	f := NewFactory().New(256, 0.01)

	var wg sync.WaitGroup
	done := make(chan struct{})
	keys := [][]byte{[]byte("ads.example.com"), []byte("tracker.test"), []byte("example.net")}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 10_000 {
			f.Add(keys[i%3])
		}
		close(done)
	}()

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					_ = f.MightContain([]byte("probe.test"))
				}
			}
		}()
	}

	wg.Wait()
	for _, k := range keys {
		if !f.MightContain(k) {
			t.Fatalf("expected %s to be present", k)
		}
	}
}
