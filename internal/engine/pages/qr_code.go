package pages

import (
	"github.com/skip2/go-qrcode"
)

func GenerateQRCode(pageURL string, size int) ([]byte, error) {
	if size == 0 {
		size = 512
	}

	if size < 128 || size > 2048 {
		return nil, invalid("size must be between 128 and 2048")
	}

	qr, err := qrcode.New(pageURL, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	return qr.PNG(size)
}
