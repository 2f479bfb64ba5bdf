package render

import (
	"errors"
	"image"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

// GenerateQRCodeImage returns a QR code image for the given payload.
func GenerateQRCodeImage(payload string, sizePx int) (image.Image, error) {
	if payload == "" {
		return nil, errors.New("empty QR payload")
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}

	qrCode, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	return qrCode.Image(sizePx), nil
}

type qrKey struct {
	payload string
	size    int
}

// QRCodes memoizes generated codes by payload and size.
type QRCodes struct {
	codes map[qrKey]image.Image
}

func NewQRCodes() *QRCodes { return &QRCodes{codes: make(map[qrKey]image.Image)} }

func (q *QRCodes) Get(payload string, sizePx int) (image.Image, error) {
	key := qrKey{payload: payload, size: sizePx}
	if img, ok := q.codes[key]; ok {
		return img, nil
	}
	img, err := GenerateQRCodeImage(payload, sizePx)
	if err != nil {
		return nil, err
	}
	// keep the map bounded when a module encodes changing payloads
	if len(q.codes) > 64 {
		clear(q.codes)
	}
	q.codes[key] = img
	return img, nil
}
