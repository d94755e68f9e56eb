package extract

import (
	"context"
	"fmt"
	"strings"
)

// OCRClient recognizes text in an image. The concrete implementation lives
// in internal/adapter/ocr.
type OCRClient interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Image extracts text from images through OCR. OCR trouble never fails the
// document: an unreadable or empty image is stored with marker text so the
// upload stays visible.
type Image struct {
	OCR OCRClient
}

func (e *Image) Extract(ctx context.Context, data []byte, filename string) Result {
	if e.OCR == nil {
		return degradedResult(fmt.Sprintf("IMAGE FILE: %s (OCR processing failed)", filename))
	}

	text, err := e.OCR.Recognize(ctx, data)
	if err != nil {
		return degradedResult(fmt.Sprintf("IMAGE FILE: %s (OCR processing failed)", filename))
	}
	if strings.TrimSpace(text) == "" {
		return degradedResult(fmt.Sprintf("IMAGE CONTENT: no text detected\nSource: %s", filename))
	}

	return textResult(fmt.Sprintf("IMAGE CONTENT: %s\nSource: %s", strings.TrimSpace(text), filename))
}
