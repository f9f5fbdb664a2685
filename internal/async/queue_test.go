package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAsync(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Async Suite")
}

var _ = Describe("ProcessorQueue", func() {
	It("delivers every job to the handler", func() {
		var (
			mu   sync.Mutex
			seen []string
		)
		q := NewProcessorQueue(func(_ context.Context, job Job) error {
			mu.Lock()
			seen = append(seen, job.ImageRef)
			mu.Unlock()
			return nil
		}, nil, WithWorkers(2))

		for _, ref := range []string{"a.jpg", "b.jpg", "c.jpg"} {
			Expect(q.Enqueue(context.Background(), Job{ID: uuid.New(), ImageRef: ref})).To(Succeed())
		}
		q.Shutdown(context.Background())

		mu.Lock()
		defer mu.Unlock()
		Expect(seen).To(ConsistOf("a.jpg", "b.jpg", "c.jpg"))
	})

	It("keeps running after a handler failure", func() {
		var (
			mu    sync.Mutex
			calls int
		)
		q := NewProcessorQueue(func(_ context.Context, job Job) error {
			mu.Lock()
			calls++
			mu.Unlock()
			if job.ImageRef == "bad.jpg" {
				return errors.New("boom")
			}
			return nil
		}, nil, WithWorkers(1))

		Expect(q.Enqueue(context.Background(), Job{ID: uuid.New(), ImageRef: "bad.jpg"})).To(Succeed())
		Expect(q.Enqueue(context.Background(), Job{ID: uuid.New(), ImageRef: "good.jpg"})).To(Succeed())
		q.Shutdown(context.Background())

		mu.Lock()
		defer mu.Unlock()
		Expect(calls).To(Equal(2))
	})

	It("drops jobs enqueued after shutdown", func() {
		var (
			mu    sync.Mutex
			calls int
		)
		q := NewProcessorQueue(func(context.Context, Job) error {
			mu.Lock()
			calls++
			mu.Unlock()
			return nil
		}, nil, WithWorkers(1))
		q.Shutdown(context.Background())

		Expect(q.Enqueue(context.Background(), Job{ID: uuid.New(), ImageRef: "late.jpg"})).To(Succeed())
		mu.Lock()
		defer mu.Unlock()
		Expect(calls).To(BeZero())
	})

	It("enforces the per-job timeout", func() {
		done := make(chan struct{})
		q := NewProcessorQueue(func(ctx context.Context, _ Job) error {
			defer close(done)
			<-ctx.Done()
			return ctx.Err()
		}, nil, WithWorkers(1), WithProcessTimeout(10*time.Millisecond))

		Expect(q.Enqueue(context.Background(), Job{ID: uuid.New(), ImageRef: "slow.jpg"})).To(Succeed())
		Eventually(done, time.Second).Should(BeClosed())
		q.Shutdown(context.Background())
	})
})
