package cache

import (
	"fmt"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCache(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cache Suite")
}

var _ = Describe("Cache", func() {
	var c *Cache

	BeforeEach(func() {
		c = New(Config{
			MaxEntries: 10,
			DefaultTTL: time.Minute,
			// CheckInterval zero: no background sweep in tests
		}, nil)
	})

	AfterEach(func() {
		c.Close()
	})

	Describe("Set and Get", func() {
		When("a value has been set", func() {
			BeforeEach(func() {
				ok := c.Set("k1", "hello", 0)
				Expect(ok).To(BeTrue())
			})

			It("round-trips the value", func() {
				v, found := c.Get("k1")
				Expect(found).To(BeTrue())
				Expect(v).To(Equal("hello"))
			})

			It("counts a hit", func() {
				c.Get("k1")
				Expect(c.Stats().Hits).To(Equal(uint64(1)))
			})

			It("overwrites on a second set (last write wins)", func() {
				Expect(c.Set("k1", "world", 0)).To(BeTrue())
				v, _ := c.Get("k1")
				Expect(v).To(Equal("world"))
				Expect(c.Stats().KeyCount).To(Equal(1))
			})
		})

		When("the key is absent", func() {
			It("reports a miss", func() {
				_, found := c.Get("nope")
				Expect(found).To(BeFalse())
				Expect(c.Stats().Misses).To(Equal(uint64(1)))
			})
		})

		When("the entry has expired", func() {
			BeforeEach(func() {
				c.Set("k1", "stale", time.Nanosecond)
				time.Sleep(5 * time.Millisecond)
			})

			It("treats the entry as absent", func() {
				_, found := c.Get("k1")
				Expect(found).To(BeFalse())
			})

			It("lazily removes the entry", func() {
				c.Get("k1")
				Expect(c.Stats().KeyCount).To(Equal(0))
			})
		})

		When("the cache is at capacity", func() {
			BeforeEach(func() {
				for i := 0; i < 10; i++ {
					Expect(c.Set(fmt.Sprintf("k%d", i), "v", 0)).To(BeTrue())
				}
			})

			It("rejects a new key without failing", func() {
				Expect(c.Set("overflow", "v", 0)).To(BeFalse())
			})

			It("counts the rejection as an error", func() {
				c.Set("overflow", "v", 0)
				Expect(c.Stats().Errors).To(Equal(uint64(1)))
			})

			It("still accepts overwrites of existing keys", func() {
				Expect(c.Set("k0", "v2", 0)).To(BeTrue())
			})
		})
	})

	Describe("ForceCleanup", func() {
		When("the cache holds entries", func() {
			BeforeEach(func() {
				for i := 0; i < 7; i++ {
					c.Set(fmt.Sprintf("k%d", i), "v", 0)
				}
			})

			It("removes floor(n * percent / 100) entries", func() {
				Expect(c.ForceCleanup(50)).To(Equal(3))
				Expect(c.Stats().KeyCount).To(Equal(4))
			})

			It("removes oldest-inserted entries first", func() {
				c.ForceCleanup(50)
				_, found := c.Get("k0")
				Expect(found).To(BeFalse())
				_, found = c.Get("k6")
				Expect(found).To(BeTrue())
			})

			It("increments evictions by the removed count", func() {
				c.ForceCleanup(50)
				Expect(c.Stats().Evictions).To(Equal(uint64(3)))
			})

			It("removes everything at 100 percent", func() {
				Expect(c.ForceCleanup(100)).To(Equal(7))
				Expect(c.Stats().KeyCount).To(Equal(0))
			})

			It("clamps out-of-range percentages", func() {
				Expect(c.ForceCleanup(-5)).To(Equal(0))
				Expect(c.ForceCleanup(200)).To(Equal(7))
			})
		})

		When("the cache is empty", func() {
			It("removes nothing and does not error", func() {
				Expect(c.ForceCleanup(50)).To(Equal(0))
				Expect(c.Stats().Evictions).To(Equal(uint64(0)))
			})
		})
	})

	Describe("Clear", func() {
		BeforeEach(func() {
			c.Set("k1", "v", 0)
			c.Get("k1")
			c.Get("missing")
			c.ForceCleanup(100)
		})

		It("empties storage and zeroes all counters", func() {
			c.Clear()
			st := c.Stats()
			Expect(st.KeyCount).To(Equal(0))
			Expect(st.ValueBytes).To(Equal(int64(0)))
			Expect(st.Hits).To(Equal(uint64(0)))
			Expect(st.Misses).To(Equal(uint64(0)))
			Expect(st.Evictions).To(Equal(uint64(0)))
		})
	})

	Describe("Stats", func() {
		It("tracks approximate value byte size", func() {
			c.Set("k1", "12345", 0)
			Expect(c.Stats().ValueBytes).To(Equal(int64(5)))
			c.Set("k1", "1234567890", 0)
			Expect(c.Stats().ValueBytes).To(Equal(int64(10)))
			c.Delete("k1")
			Expect(c.Stats().ValueBytes).To(Equal(int64(0)))
		})
	})

	Describe("Memory", func() {
		It("reports heap usage against the configured limits", func() {
			st := c.Memory()
			Expect(st.HeapUsed).To(BeNumerically(">", 0))
			Expect(st.Limits.Warn).To(BeNumerically("<", st.Limits.Cleanup))
			Expect(st.Limits.Cleanup).To(BeNumerically("<", st.Limits.Max))
			Expect(st.WithinLimits).To(Equal(st.HeapUsed < st.Limits.Max))
		})
	})
})

var _ = Describe("memory sweep", func() {
	// Artificial thresholds steer sweepOnce down each branch regardless of
	// the real heap size. The live heap is always above 1 byte and never
	// above 1<<60.
	newSweepCache := func(limits Limits) *Cache {
		c := New(Config{
			MaxEntries: 10,
			DefaultTTL: time.Minute,
			Memory:     limits,
		}, nil)
		for i := 0; i < 6; i++ {
			Expect(c.Set(fmt.Sprintf("k%d", i), "v", 0)).To(BeTrue())
		}
		return c
	}

	When("heap usage is above the warning threshold only", func() {
		It("records a warning without evicting", func() {
			c := newSweepCache(Limits{Warn: 1, Cleanup: 1 << 60, Max: 1 << 60})
			defer c.Close()

			c.sweepOnce()

			st := c.Stats()
			Expect(st.MemoryWarnings).To(Equal(uint64(1)))
			Expect(st.Evictions).To(Equal(uint64(0)))
			Expect(st.KeyCount).To(Equal(6))
		})
	})

	When("heap usage is above the cleanup threshold", func() {
		It("evicts half of the entries, oldest first", func() {
			c := newSweepCache(Limits{Warn: 1, Cleanup: 2, Max: 1 << 60})
			defer c.Close()

			c.sweepOnce()

			st := c.Stats()
			Expect(st.Evictions).To(Equal(uint64(3)))
			Expect(st.KeyCount).To(Equal(3))
			Expect(st.MemoryWarnings).To(Equal(uint64(0)))
			_, found := c.Get("k0")
			Expect(found).To(BeFalse())
			_, found = c.Get("k5")
			Expect(found).To(BeTrue())
		})
	})
})
