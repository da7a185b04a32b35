package invoice

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/invoice-scanner/internal/scanning"
)

// completion builds a minimal OpenAI chat completion body
func completion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

var _ = Describe("Integration", func() {
	var (
		tempDir  string
		db       *BoltDB
		store    *LocalStorage
		llama    *ghttp.Server
		scanner  scanning.Scanner
		server   *Server
		ghServer *ghttp.Server
		pngData  []byte
	)

	BeforeEach(func() {
		var err error
		tempDir = GinkgoT().TempDir()

		db, err = NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())

		store, err = NewLocalStorage(filepath.Join(tempDir, "uploads"))
		Expect(err).NotTo(HaveOccurred())

		// Fake llama.cpp server answering detection, then extraction
		llama = ghttp.NewServer()
		scanner, err = scanning.New(scanning.Options{Backend: scanning.BackendLlama, URL: llama.URL()})
		Expect(err).NotTo(HaveOccurred())

		server = NewServer(NewService(db, scanner, store), BasicAuth{})
		ghServer = ghttp.NewServer()
		ghServer.AppendHandlers(server.ServeHTTP, server.ServeHTTP)

		var buf bytes.Buffer
		Expect(png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2)))).To(Succeed())
		pngData = buf.Bytes()
	})

	AfterEach(func() {
		ghServer.Close()
		llama.Close()
		db.Close()
	})

	It("extracts an invoice end to end and records it", func() {
		jsonHeader := http.Header{"Content-Type": {"application/json"}}
		llama.AppendHandlers(
			ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/chat/completions"),
				ghttp.RespondWith(http.StatusOK, completion(`{"invoice": true}`), jsonHeader),
			),
			ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/chat/completions"),
				ghttp.RespondWith(http.StatusOK, completion(`{"invoice_date": "2024-03-20", "total_amount": 42.5, "currency": "eur"}`), jsonHeader),
			),
		)

		body, ct := multipartBody("file", "invoice.png", "image/png", pngData)
		resp, err := http.Post(ghServer.URL()+"/process", ct, body)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(MatchJSON(`{"invoice_date": "2024-03-20", "total_amount": 42.5, "currency": "EUR"}`))

		invoices, err := db.ListInvoices()
		Expect(err).NotTo(HaveOccurred())
		Expect(invoices).To(HaveLen(1))
		Expect(invoices[0].Backend).To(Equal("llama"))

		archived, err := store.Get(invoices[0].Filename)
		Expect(err).NotTo(HaveOccurred())
		Expect(archived).To(Equal(pngData))

		historyResp, err := http.Get(ghServer.URL() + "/api/invoices")
		Expect(err).NotTo(HaveOccurred())
		defer historyResp.Body.Close()
		Expect(historyResp.StatusCode).To(Equal(http.StatusOK))
	})

	It("reports non-invoices without running extraction", func() {
		llama.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest("POST", "/chat/completions"),
			ghttp.RespondWith(http.StatusOK, completion(`{"invoice": false}`), http.Header{"Content-Type": {"application/json"}}),
		))

		body, ct := multipartBody("file", "cat.png", "image/png", pngData)
		resp, err := http.Post(ghServer.URL()+"/process", ct, body)
		Expect(err).NotTo(HaveOccurred())
		Expect(readJSON(resp)).To(HaveKeyWithValue("error", "No invoice detected in image"))
		Expect(llama.ReceivedRequests()).To(HaveLen(1))
	})
})
