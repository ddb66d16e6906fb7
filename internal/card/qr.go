package card

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

// VerifyURL builds the public verification link embedded in the card's QR
// code.
func VerifyURL(baseURL string, memberID int64, membershipNo string) string {
	q := url.Values{}
	q.Set("id", fmt.Sprintf("%d", memberID))
	q.Set("membership_no", membershipNo)
	return baseURL + "/verify-membership?" + q.Encode()
}

// qrPNG renders the verification link as a PNG suitable for embedding.
func qrPNG(link string) ([]byte, error) {
	return qrcode.Encode(link, qrcode.Medium, 256)
}
