package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestIngest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ingest Suite")
}

var _ = Describe("AllowedPath", func() {
	It("accepts capture image extensions", func() {
		Expect(AllowedPath("/photos/bottle.JPG")).To(BeTrue())
		Expect(AllowedPath("/photos/bottle.png")).To(BeTrue())
		Expect(AllowedPath("/photos/bottle.heic")).To(BeTrue())
	})

	It("rejects everything else", func() {
		Expect(AllowedPath("/photos/notes.txt")).To(BeFalse())
		Expect(AllowedPath("/photos/archive.pdf")).To(BeFalse())
		Expect(AllowedPath("/photos/noext")).To(BeFalse())
	})
})

var _ = Describe("StartWatcher", func() {
	var (
		root   string
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)
	})

	It("requires at least one root", func() {
		_, _, err := StartWatcher(ctx, WatchConfig{}, nil)
		Expect(err).To(HaveOccurred())
	})

	It("emits existing files during the initial scan", func() {
		existing := filepath.Join(root, "old.jpg")
		Expect(os.WriteFile(existing, []byte("x"), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(root, "skip.txt"), []byte("x"), 0o644)).To(Succeed())

		ev, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true}, nil)
		Expect(err).NotTo(HaveOccurred())
		Eventually(ev, time.Second).Should(Receive(Equal(existing)))
	})

	It("emits newly created images", func() {
		ev, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}}, nil)
		Expect(err).NotTo(HaveOccurred())

		path := filepath.Join(root, "new.png")
		Expect(os.WriteFile(path, []byte("x"), 0o644)).To(Succeed())
		Eventually(ev, 2*time.Second).Should(Receive(Equal(path)))
	})

	It("ignores files with other extensions", func() {
		ev, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}}, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644)).To(Succeed())
		Consistently(ev, 200*time.Millisecond).ShouldNot(Receive())
	})

	It("closes the channel when the context is cancelled", func() {
		ev, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}}, nil)
		Expect(err).NotTo(HaveOccurred())

		cancel()
		Eventually(ev, time.Second).Should(BeClosed())
	})
})
