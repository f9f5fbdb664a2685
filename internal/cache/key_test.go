package cache

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Key", func() {
	When("the reference is a remote URL", func() {
		It("is stable across calls", func() {
			Expect(Key("https://example.com/label.jpg")).To(Equal(Key("https://example.com/label.jpg")))
		})

		It("differs for different URLs", func() {
			Expect(Key("https://example.com/a.jpg")).NotTo(Equal(Key("https://example.com/b.jpg")))
		})

		It("carries the ocr_ prefix", func() {
			Expect(Key("https://example.com/label.jpg")).To(HavePrefix("ocr_"))
		})
	})

	When("the reference is a local file", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "label.jpg")
			Expect(os.WriteFile(path, []byte("image-bytes"), 0644)).To(Succeed())
		})

		It("is stable while the file is unchanged", func() {
			Expect(Key(path)).To(Equal(Key(path)))
		})

		It("changes when the file content changes", func() {
			before := Key(path)
			Expect(os.WriteFile(path, []byte("other-bytes"), 0644)).To(Succeed())
			Expect(Key(path)).NotTo(Equal(before))
		})

		It("changes when only the mtime changes", func() {
			before := Key(path)
			later := time.Now().Add(time.Hour)
			Expect(os.Chtimes(path, later, later)).To(Succeed())
			Expect(Key(path)).NotTo(Equal(before))
		})
	})

	When("the file does not exist", func() {
		It("falls back to hashing the reference string", func() {
			k := Key("/no/such/file.jpg")
			Expect(k).To(HavePrefix("ocr_"))
			Expect(strings.TrimPrefix(k, "ocr_")).To(HaveLen(64))
			Expect(Key("/no/such/file.jpg")).To(Equal(k))
		})
	})
})
