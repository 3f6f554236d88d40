package export

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/invoice-generator/pkg/invoice"
)

const logoMaxSide = 300

// normalizeLogo decodes any supported image and re-encodes it as a PNG that
// fits into logoMaxSide x logoMaxSide.
func normalizeLogo(logo *invoice.Logo) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(logo.Data))
	if err != nil {
		return nil, fmt.Errorf("decode logo %q: %w", logo.Name, err)
	}
	b := img.Bounds()
	if b.Dx() > logoMaxSide || b.Dy() > logoMaxSide {
		img = imaging.Fit(img, logoMaxSide, logoMaxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	return buf.Bytes(), nil
}
