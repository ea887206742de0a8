// Package verify answers the public authenticity checks printed as QR codes
// on boxes and visitor passes.
package verify

import (
	"fmt"
	"strings"
	"time"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/sequence"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	BatchPath = "/api/v1/public/verify/batch/"
	PassPath  = "/api/v1/public/verify/pass/"

	DefaultQRSize = 256
)

// Batch reports whether a scanned batch code is ours and still in date.
// A nil batch means the code was not found.
func Batch(b *models.ProductionBatch, now time.Time) models.BatchVerification {
	if b == nil {
		return models.BatchVerification{
			Authentic: false,
			Message:   "Unknown batch code. This product may not be genuine.",
		}
	}
	v := models.BatchVerification{Authentic: true, Batch: b}
	if !now.Before(ExpiryCutoff(b.ExpiresOn)) {
		v.Expired = true
		v.Message = fmt.Sprintf("Genuine product, expired on %s.", b.ExpiresOn.Format("02 Jan 2006"))
		return v
	}
	v.Message = fmt.Sprintf("Genuine product, best before %s.", b.ExpiresOn.Format("02 Jan 2006"))
	return v
}

// ExpiryCutoff is the first instant after the expiry day, midnight IST.
// The date column comes back as UTC midnight, so only its calendar date is used.
func ExpiryCutoff(expiresOn time.Time) time.Time {
	y, m, d := expiresOn.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, sequence.IST)
}

// PassStatus classifies a pass at time now. A nil pass is not found.
func PassStatus(p *models.VisitorPass, now time.Time) string {
	switch {
	case p == nil:
		return models.PASS_NOT_FOUND
	case p.Revoked:
		return models.PASS_REVOKED
	case now.Before(p.ValidFrom):
		return models.PASS_NOT_YET_VALID
	case !now.Before(p.ValidUntil):
		return models.PASS_EXPIRED
	default:
		return models.PASS_VALID
	}
}

// Pass builds the public answer for a scanned pass. The holder's mobile is masked.
func Pass(p *models.VisitorPass, now time.Time) models.PassVerification {
	v := models.PassVerification{Status: PassStatus(p, now)}
	if p != nil {
		public := *p
		public.HolderMobile = MaskMobile(p.HolderMobile)
		public.IssuedBy = 0
		v.Pass = &public
	}
	return v
}

// MaskMobile keeps the last four digits.
func MaskMobile(m string) string {
	m = strings.TrimSpace(m)
	if len(m) <= 4 {
		return m
	}
	return strings.Repeat("*", len(m)-4) + m[len(m)-4:]
}

// URL joins the public base URL with a verification path and code.
func URL(baseURL, path, code string) string {
	return strings.TrimRight(baseURL, "/") + path + code
}

// QRCodePNG encodes content as a PNG QR code of size x size pixels.
func QRCodePNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
