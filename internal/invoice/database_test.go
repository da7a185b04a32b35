package invoice

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newInvoice := func(id string, createdAt time.Time) *Invoice {
		total := 99.5
		currency := "USD"
		return &Invoice{
			ID:           id,
			OriginalName: id + ".png",
			ContentType:  "image/png",
			IsInvoice:    true,
			TotalAmount:  &total,
			Currency:     &currency,
			Backend:      "llama",
			CreatedAt:    createdAt,
		}
	}

	Describe("SaveInvoice and GetInvoice", func() {
		It("round-trips a record", func() {
			created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
			Expect(db.SaveInvoice(newInvoice("a", created))).To(Succeed())

			got, err := db.GetInvoice("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.OriginalName).To(Equal("a.png"))
			Expect(got.TotalAmount).To(HaveValue(Equal(99.5)))
			Expect(got.InvoiceDate).To(BeNil())
			Expect(got.CreatedAt.Equal(created)).To(BeTrue())
		})

		It("returns ErrNotFound for unknown IDs", func() {
			_, err := db.GetInvoice("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("ListInvoices", func() {
		When("the database is empty", func() {
			It("returns an empty slice", func() {
				invoices, err := db.ListInvoices()
				Expect(err).NotTo(HaveOccurred())
				Expect(invoices).NotTo(BeNil())
				Expect(invoices).To(BeEmpty())
			})
		})

		When("records exist", func() {
			BeforeEach(func() {
				base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
				Expect(db.SaveInvoice(newInvoice("old", base))).To(Succeed())
				Expect(db.SaveInvoice(newInvoice("new", base.Add(time.Hour)))).To(Succeed())
			})

			It("returns them newest first", func() {
				invoices, err := db.ListInvoices()
				Expect(err).NotTo(HaveOccurred())
				Expect(invoices).To(HaveLen(2))
				Expect(invoices[0].ID).To(Equal("new"))
				Expect(invoices[1].ID).To(Equal("old"))
			})
		})
	})

	Describe("DeleteInvoice", func() {
		It("removes the record", func() {
			Expect(db.SaveInvoice(newInvoice("a", time.Now()))).To(Succeed())
			Expect(db.DeleteInvoice("a")).To(Succeed())
			_, err := db.GetInvoice("a")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("returns ErrNotFound for unknown IDs", func() {
			Expect(db.DeleteInvoice("missing")).To(MatchError(ErrNotFound))
		})
	})

	Describe("reopening", func() {
		It("keeps records across restarts", func() {
			Expect(db.SaveInvoice(newInvoice("a", time.Now()))).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())

			got, err := db.GetInvoice("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("a"))
		})
	})
})
