package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cellarscan/cellarscan/constants"
	"github.com/cellarscan/cellarscan/internal/cache"
	"github.com/cellarscan/cellarscan/internal/common"
	"github.com/cellarscan/cellarscan/internal/ocr"
)

func TestPipeline(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pipeline Suite")
}

// stubExtractor returns a fixed transcription and counts invocations.
type stubExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubExtractor) Recognize(_ context.Context, _ string) (ocr.ExtractionResult, error) {
	s.calls++
	if s.err != nil {
		return ocr.ExtractionResult{}, s.err
	}
	return ocr.ExtractionResult{Text: s.text, Model: "stub"}, nil
}

const labelText = "CHÂTEAU MARGAUX\n2019\nAppellation Margaux Contrôlée\n13.5% vol 750ml"

const receiptText = "WINE WORLD MARKET\n2024-01-15 18:42\nChâteau Margaux 2019 $500.00\nTotal: $500.00\nPayment: Credit Card"

var _ = Describe("Processor", func() {
	var (
		stub   *stubExtractor
		store  *cache.Cache
		p      *Processor
		ref    string
		result Result
		err    error
	)

	BeforeEach(func() {
		stub = &stubExtractor{text: labelText}
		store = cache.New(cache.Config{MaxEntries: 10, DefaultTTL: time.Minute}, nil)
		DeferCleanup(store.Close)
		ref = "https://example.com/bottle.jpg"
	})

	JustBeforeEach(func() {
		p = NewProcessor(nil, store, stub, nil, nil, nil)
		result, err = p.Process(context.Background(), ref)
	})

	When("the image is a wine label", func() {
		It("classifies and extracts label fields", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Type).To(Equal(constants.DocTypeLabel))
			Expect(result.Receipt).To(BeNil())
			Expect(result.Label).NotTo(BeNil())
			Expect(result.Label.Vintage).To(HaveValue(Equal(2019)))
			Expect(result.Label.Name).To(HaveValue(Equal("CHÂTEAU MARGAUX")))
		})

		It("records the miss and caches the text", func() {
			Expect(result.CacheHit).To(BeFalse())
			Expect(stub.calls).To(Equal(1))

			again, err2 := p.Process(context.Background(), ref)
			Expect(err2).NotTo(HaveOccurred())
			Expect(again.CacheHit).To(BeTrue())
			Expect(stub.calls).To(Equal(1))
			Expect(again.Label).NotTo(BeNil())
		})
	})

	When("the image is a receipt", func() {
		BeforeEach(func() {
			stub.text = receiptText
		})

		It("classifies and extracts receipt fields", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Type).To(Equal(constants.DocTypeReceipt))
			Expect(result.Label).To(BeNil())
			Expect(result.Receipt).NotTo(BeNil())
			Expect(result.Receipt.Total).To(HaveValue(BeNumerically("~", 500.00, 0.001)))
			Expect(result.Receipt.Items).To(HaveLen(1))
		})
	})

	When("the transcription matches neither vocabulary", func() {
		BeforeEach(func() {
			stub.text = "meeting notes from tuesday afternoon"
		})

		It("returns an unknown result without error", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Type).To(Equal(constants.DocTypeUnknown))
			Expect(result.Label).To(BeNil())
			Expect(result.Receipt).To(BeNil())
		})
	})

	When("OCR fails", func() {
		BeforeEach(func() {
			stub.err = common.UpstreamError("vision status 502", common.ErrUnavailable)
		})

		It("aborts the run with the OCR error", func() {
			Expect(errors.Is(err, common.ErrUnavailable)).To(BeTrue())
		})

		It("does not poison the cache", func() {
			Expect(store.Stats().KeyCount).To(BeZero())
		})
	})

	When("the processor runs without a cache", func() {
		JustBeforeEach(func() {
			p = NewProcessor(nil, nil, stub, nil, nil, nil)
			result, err = p.Process(context.Background(), ref)
		})

		It("still produces a result", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Type).To(Equal(constants.DocTypeLabel))
		})
	})
})
