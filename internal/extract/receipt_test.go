package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ReceiptExtractor", func() {
	var (
		ex     *ReceiptExtractor
		input  string
		fields ReceiptFields
	)

	BeforeEach(func() {
		ex = NewReceiptExtractor(nil)
	})

	JustBeforeEach(func() {
		fields = ex.Extract(input)
	})

	When("the text is an English wine-shop receipt", func() {
		BeforeEach(func() {
			input = "WINE WORLD MARKET\n" +
				"2024-01-15 18:42\n" +
				"Château Margaux 2019 $500.00\n" +
				"Subtotal: $500.00\n" +
				"Tax: $45.00\n" +
				"Total: $545.00\n" +
				"Payment: Credit Card\n" +
				"Thank you for shopping"
		})

		It("extracts the store from the first line", func() {
			Expect(fields.Store).To(HaveValue(Equal("WINE WORLD MARKET")))
		})

		It("normalizes the date", func() {
			Expect(fields.Date).To(HaveValue(Equal("2024-01-15")))
		})

		It("extracts the time", func() {
			Expect(fields.Time).To(HaveValue(Equal("18:42")))
		})

		It("parses exactly one line item", func() {
			Expect(fields.Items).To(HaveLen(1))
		})

		It("parses the item name, price, quantity and vintage", func() {
			item := fields.Items[0]
			Expect(item.Name).To(Equal("Château Margaux 2019"))
			Expect(item.Price).To(BeNumerically("~", 500.00, 0.001))
			Expect(item.Quantity).To(Equal(1))
			Expect(item.Vintage).To(HaveValue(Equal(2019)))
		})

		It("parses subtotal, tax and total independently", func() {
			Expect(fields.Subtotal).To(HaveValue(BeNumerically("~", 500.00, 0.001)))
			Expect(fields.Tax).To(HaveValue(BeNumerically("~", 45.00, 0.001)))
			Expect(fields.Total).To(HaveValue(BeNumerically("~", 545.00, 0.001)))
		})

		It("canonicalizes the payment method", func() {
			Expect(fields.PaymentMethod).To(HaveValue(Equal("Credit Card")))
		})
	})

	When("the text is a Korean receipt with a quantity line", func() {
		BeforeEach(func() {
			input = "와인앤모어 매장\n" +
				"2023-11-02 19:20:11\n" +
				"샤토 마고 2019 ₩650,000\n" +
				"수량: 2\n" +
				"합계: ₩1,300,000\n" +
				"카드 결제"
		})

		It("keeps seconds in the time", func() {
			Expect(fields.Time).To(HaveValue(Equal("19:20:11")))
		})

		It("applies the following-line quantity and consumes that line", func() {
			Expect(fields.Items).To(HaveLen(1))
			Expect(fields.Items[0].Quantity).To(Equal(2))
		})

		It("strips the thousands separators from the total", func() {
			Expect(fields.Total).To(HaveValue(BeNumerically("~", 1300000, 0.001)))
		})

		It("maps the localized payment term", func() {
			Expect(fields.PaymentMethod).To(HaveValue(Equal("Card")))
		})
	})

	When("the date is in M/D/Y order", func() {
		BeforeEach(func() {
			input = "CITY CELLARS\n01/15/2024\nTotal: $20.00"
		})

		It("normalizes to YYYY-MM-DD", func() {
			Expect(fields.Date).To(HaveValue(Equal("2024-01-15")))
		})
	})

	When("the time uses AM/PM", func() {
		BeforeEach(func() {
			input = "CITY CELLARS\nTotal: $20.00\n6:42 PM"
		})

		It("converts to 24-hour form", func() {
			Expect(fields.Time).To(HaveValue(Equal("18:42")))
		})
	})

	When("an item has an inline quantity marker", func() {
		BeforeEach(func() {
			input = "BOTTLE SHOP\nHouse Red qty: 3 $36.00\nTotal: $36.00"
		})

		It("uses the inline quantity", func() {
			Expect(fields.Items).To(HaveLen(1))
			Expect(fields.Items[0].Quantity).To(Equal(3))
			Expect(fields.Items[0].Name).To(Equal("House Red"))
		})
	})

	When("a stripped item name is too short", func() {
		BeforeEach(func() {
			input = "BOTTLE SHOP\nA $5.00\nTotal: $5.00"
		})

		It("discards the line", func() {
			Expect(fields.Items).To(BeEmpty())
		})
	})

	When("no receipt keyword and no date is present", func() {
		BeforeEach(func() {
			input = "a plain note\nwith some lines\nand nothing else"
		})

		It("skips extraction entirely", func() {
			Expect(fields.Store).To(BeNil())
			Expect(fields.Items).To(BeEmpty())
			Expect(fields.Total).To(BeNil())
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			input = ""
		})

		It("returns an empty item list, not nil", func() {
			Expect(fields.Items).NotTo(BeNil())
			Expect(fields.Items).To(BeEmpty())
		})
	})
})
