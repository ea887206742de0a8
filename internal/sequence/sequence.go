// Package sequence builds human-readable document numbers such as
// UORN-251018-0007 or TAX-FY2526-00042 on top of an atomic counter.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

// Kind decides when a counter starts over.
type Kind int

const (
	// Daily counters reset every calendar day.
	Daily Kind = iota
	// FiscalYear counters reset on April 1.
	FiscalYear
)

// IST is the business time zone used to cut buckets.
var IST = time.FixedZone("IST", 5*60*60+30*60)

var ErrEmptyPrefix = errors.New("sequence prefix is required")

// Counter hands out the next value for a (prefix, bucket) pair. Implementations
// must be atomic; values start at 1 in a fresh bucket.
type Counter interface {
	Next(ctx context.Context, prefix, bucket string) (int64, error)
}

// KindFor returns the reset rule of a prefix.
func KindFor(prefix string) Kind {
	if prefix == models.TAX_INVOICE_PREFIX {
		return FiscalYear
	}
	return Daily
}

// FiscalYearLabel returns the Indian fiscal year containing t, e.g. FY2526
// for any date from 2025-04-01 to 2026-03-31.
func FiscalYearLabel(t time.Time) string {
	t = t.In(IST)
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("FY%02d%02d", start%100, (start+1)%100)
}

// Bucket returns the counter bucket for t.
func Bucket(kind Kind, t time.Time) string {
	if kind == FiscalYear {
		return FiscalYearLabel(t)
	}
	return t.In(IST).Format("060102")
}

// Format renders a document number. Daily numbers are padded to four digits,
// fiscal-year numbers to five.
func Format(prefix, bucket string, kind Kind, n int64) string {
	width := 4
	if kind == FiscalYear {
		width = 5
	}
	return fmt.Sprintf("%s-%s-%0*d", prefix, bucket, width, n)
}

type Generator struct {
	counter Counter
}

func NewGenerator(c Counter) *Generator {
	return &Generator{counter: c}
}

// Next returns the next formatted number for prefix at time at.
func (g *Generator) Next(ctx context.Context, prefix string, at time.Time) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", ErrEmptyPrefix
	}
	kind := KindFor(prefix)
	bucket := Bucket(kind, at)
	n, err := g.counter.Next(ctx, prefix, bucket)
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", prefix, err)
	}
	return Format(prefix, bucket, kind, n), nil
}
