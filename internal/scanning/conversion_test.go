package scanning

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	return img
}

func encodePNG() []byte {
	var buf bytes.Buffer
	Expect(png.Encode(&buf, testImage())).To(Succeed())
	return buf.Bytes()
}

func encodeJPEG() []byte {
	var buf bytes.Buffer
	Expect(jpeg.Encode(&buf, testImage(), nil)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("normalizeImage", func() {
	When("the input is already PNG", func() {
		It("returns it untouched", func() {
			data := encodePNG()
			out, err := normalizeImage(data, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(data))
		})
	})

	When("the input is JPEG", func() {
		It("re-encodes it as PNG", func() {
			out, err := normalizeImage(encodeJPEG(), "image/jpeg")
			Expect(err).NotTo(HaveOccurred())
			_, format, err := image.Decode(bytes.NewReader(out))
			Expect(err).NotTo(HaveOccurred())
			Expect(format).To(Equal("png"))
		})
	})

	When("the content type is empty", func() {
		It("sniffs the format from the data", func() {
			out, err := normalizeImage(encodeJPEG(), "")
			Expect(err).NotTo(HaveOccurred())
			Expect(out[:8]).To(Equal([]byte("\x89PNG\r\n\x1a\n")))
		})
	})

	When("the data is not an image", func() {
		It("returns an unsupported format error", func() {
			_, err := normalizeImage([]byte("plain text"), "image/jpeg")
			Expect(err).To(MatchError(ContainSubstring("unsupported image format")))
		})
	})
})

var _ = Describe("isHEIC", func() {
	It("detects the ftyp brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(isHEIC(data, "application/octet-stream")).To(BeTrue())
	})

	It("detects the MIME type", func() {
		Expect(isHEIC(nil, "image/heif")).To(BeTrue())
	})

	It("rejects short data", func() {
		Expect(isHEIC([]byte("abc"), "image/png")).To(BeFalse())
	})
})

var _ = Describe("pngDataURL", func() {
	It("prefixes the base64 payload", func() {
		Expect(pngDataURL([]byte("hi"))).To(Equal("data:image/png;base64,aGk="))
	})
})
