package extract

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestExtract(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Extract Suite")
}

var _ = Describe("LabelExtractor", func() {
	var (
		ex     *LabelExtractor
		input  string
		fields LabelFields
	)

	BeforeEach(func() {
		ex = NewLabelExtractor(nil)
	})

	JustBeforeEach(func() {
		fields = ex.Extract(input)
	})

	When("the text is a Bordeaux label", func() {
		BeforeEach(func() {
			input = "CHÂTEAU MARGAUX\nPREMIER GRAND CRU CLASSÉ\nAPPELLATION MARGAUX CONTRÔLÉE\n2019\n750 ML\n13.5% VOL"
		})

		It("extracts the vintage", func() {
			Expect(fields.Vintage).To(HaveValue(Equal(2019)))
		})

		It("extracts the name from the prestige pattern", func() {
			Expect(fields.Name).To(HaveValue(Equal("CHÂTEAU MARGAUX")))
		})

		It("extracts the producer from the estate line", func() {
			Expect(fields.Producer).To(HaveValue(Equal("CHÂTEAU MARGAUX")))
		})

		It("extracts the appellation name only", func() {
			Expect(fields.Appellation).To(HaveValue(Equal("Margaux")))
		})

		It("extracts the alcohol percentage", func() {
			Expect(fields.Alcohol).To(HaveValue(BeNumerically("~", 13.5, 0.001)))
		})

		It("normalizes the volume", func() {
			Expect(fields.Volume).To(HaveValue(Equal("750ml")))
		})

		It("extracts the classification with original casing", func() {
			Expect(fields.Classification).To(HaveValue(Equal("PREMIER GRAND CRU CLASSÉ")))
		})
	})

	When("the text carries no label keyword and no year", func() {
		BeforeEach(func() {
			input = "meeting notes\nagenda item one\nagenda item two"
		})

		It("returns an entirely empty result", func() {
			Expect(fields.Empty()).To(BeTrue())
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			input = ""
		})

		It("returns an empty result", func() {
			Expect(fields.Empty()).To(BeTrue())
		})
	})

	Describe("vintage rules", func() {
		When("a bare year in range appears", func() {
			BeforeEach(func() {
				input = "Domaine Leroy\n1987"
			})

			It("uses immediately", func() {
				Expect(fields.Vintage).To(HaveValue(Equal(1987)))
			})
		})

		When("a year is out of the vintage window", func() {
			BeforeEach(func() {
				input = "Domaine Leroy\nestablished 1868"
			})

			It("finds no vintage", func() {
				Expect(fields.Vintage).To(BeNil())
			})
		})

		When("the Korean year suffix is used", func() {
			BeforeEach(func() {
				input = "와인 2015년산"
			})

			It("parses the year", func() {
				Expect(fields.Vintage).To(HaveValue(Equal(2015)))
			})
		})
	})

	Describe("name fallback", func() {
		When("no prestige pattern matches", func() {
			BeforeEach(func() {
				input = "SASSICAIA\n2019\n750ml\nwine of Italy"
			})

			It("uses the first non-trivial line", func() {
				Expect(fields.Name).To(HaveValue(Equal("SASSICAIA")))
			})
		})

		When("the first lines are a bare year and markers", func() {
			BeforeEach(func() {
				input = "2019\n13.5% vol\nOPUS ONE\nNapa Valley wine"
			})

			It("skips them", func() {
				Expect(fields.Name).To(HaveValue(Equal("OPUS ONE")))
			})
		})
	})

	Describe("region gazetteer", func() {
		BeforeEach(func() {
			input = "OPUS ONE\nnapa valley estate wine\n2018"
		})

		It("matches case-insensitively and preserves source casing", func() {
			Expect(fields.Region).To(HaveValue(Equal("napa valley")))
		})

		When("lowercasing earlier text changes byte widths", func() {
			BeforeEach(func() {
				// Each İ lowercases to a two-rune form one byte wider,
				// so lowered-string offsets do not line up with the
				// original text.
				input = "İSTANBUL İTHALAT\nChâteau Margaux\nBordeaux\n2019"
			})

			It("still returns the exact source slice", func() {
				Expect(fields.Region).To(HaveValue(Equal("Bordeaux")))
			})
		})
	})

	Describe("variety matching", func() {
		When("multiple varieties appear", func() {
			BeforeEach(func() {
				input = "Estate Red Wine\nMerlot and Cabernet Sauvignon blend\n2020"
			})

			It("joins canonical names in order of appearance", func() {
				Expect(fields.Variety).To(HaveValue(Equal("Merlot, Cabernet Sauvignon")))
			})
		})

		When("a Korean alias appears", func() {
			BeforeEach(func() {
				input = "와인\n샤르도네\n2021"
			})

			It("maps to the canonical English name", func() {
				Expect(fields.Variety).To(HaveValue(Equal("Chardonnay")))
			})
		})
	})

	Describe("alcohol bounds", func() {
		When("the parsed percentage is above 20", func() {
			BeforeEach(func() {
				input = "Distillery Estate\n40% vol\n2019"
			})

			It("rejects the value", func() {
				Expect(fields.Alcohol).To(BeNil())
			})
		})

		When("the Korean degree suffix is used", func() {
			BeforeEach(func() {
				input = "와인 13도 750ml"
			})

			It("parses the percentage", func() {
				Expect(fields.Alcohol).To(HaveValue(BeNumerically("~", 13.0, 0.001)))
			})
		})
	})
})
