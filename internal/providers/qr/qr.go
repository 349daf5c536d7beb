package qr

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const imageSize = 256

// Generator renders a QR code for the given text as a PNG data URL,
// suitable for embedding directly in the ticket email.
type Generator interface {
	DataURL(text string) (string, error)
}

type generator struct{}

func New() Generator {
	return &generator{}
}

func (g *generator) DataURL(text string) (string, error) {
	if text == "" {
		return "", errors.New("qr text is empty")
	}

	code, err := qr.Encode(text, qr.M, qr.Auto)
	if err != nil {
		return "", err
	}
	scaled, err := barcode.Scale(code, imageSize, imageSize)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
