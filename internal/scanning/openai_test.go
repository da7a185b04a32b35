package scanning

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

func chatCompletion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "test",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
			},
		}},
	})
	return string(body)
}

var _ = Describe("OpenAICompatible", func() {
	var (
		server  *ghttp.Server
		scanner *OpenAICompatible
		backend BackendType
		model   string
		request map[string]any
		reply   string
	)

	captureRequest := func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		Expect(err).NotTo(HaveOccurred())
		request = map[string]any{}
		Expect(json.Unmarshal(body, &request)).To(Succeed())
	}

	BeforeEach(func() {
		server = ghttp.NewServer()
		backend = BackendOpenRouter
		model = "vendor/vision-model"
		reply = `{"invoice": true}`
	})

	JustBeforeEach(func() {
		server.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest("POST", "/chat/completions"),
			captureRequest,
			ghttp.RespondWith(http.StatusOK, chatCompletion(reply), http.Header{"Content-Type": {"application/json"}}),
		))
		var err error
		scanner, err = NewOpenAICompatible(backend, server.URL(), "key", model)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("DetectInvoice", func() {
		It("returns the detection", func() {
			d, err := scanner.DetectInvoice(context.Background(), encodePNG(), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Invoice).To(BeTrue())
		})

		It("sends the configured model with temperature 0", func() {
			_, err := scanner.DetectInvoice(context.Background(), encodePNG(), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(request["model"]).To(Equal("vendor/vision-model"))
			Expect(request["temperature"]).To(BeNumerically("==", 0))
		})

		It("requests a strict JSON schema", func() {
			_, err := scanner.DetectInvoice(context.Background(), encodePNG(), "image/png")
			Expect(err).NotTo(HaveOccurred())
			format := request["response_format"].(map[string]any)
			Expect(format["type"]).To(Equal("json_schema"))
		})

		When("the backend is llama", func() {
			BeforeEach(func() {
				backend = BackendLlama
			})

			It("sends an empty model name", func() {
				_, err := scanner.DetectInvoice(context.Background(), encodePNG(), "image/png")
				Expect(err).NotTo(HaveOccurred())
				Expect(request).To(HaveKeyWithValue("model", ""))
			})
		})
	})

	Describe("ExtractProperties", func() {
		BeforeEach(func() {
			reply = `{"invoice_date": "2024-01-15", "total_amount": 123.45, "currency": "EUR"}`
		})

		It("returns the parsed properties", func() {
			data, err := scanner.ExtractProperties(context.Background(), encodePNG(), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(data.InvoiceDate).To(HaveValue(Equal("2024-01-15")))
			Expect(data.TotalAmount).To(HaveValue(Equal(123.45)))
			Expect(data.Currency).To(HaveValue(Equal("EUR")))
		})

		When("the model replies with prose", func() {
			BeforeEach(func() {
				reply = "I could not read it"
			})

			It("returns a parse error", func() {
				_, err := scanner.ExtractProperties(context.Background(), encodePNG(), "image/png")
				Expect(err).To(MatchError(ContainSubstring("parsing invoice data")))
			})
		})
	})
})
