package model

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/shopspring/decimal"
)

// VoucherStatus is the lifecycle state of an emitted voucher.
type VoucherStatus string

const (
	StatusAccepted VoucherStatus = "aceptado"
	StatusVoided   VoucherStatus = "anulado"
)

// Voucher is an electronic document accepted by the sandbox.
type Voucher struct {
	Type           int
	Series         string
	Number         int
	IssueDate      string
	CustomerDoc    string
	CustomerName   string
	CustomerEmail  string
	Taxable        decimal.Decimal
	IGV            decimal.Decimal
	Total          decimal.Decimal
	Status         VoucherStatus
	VoidReason     string
	ReceivedAt     time.Time
	MailRecipients []string
}

// VoucherKey identifies a voucher within a tenant.
func VoucherKey(docType int, series string, number int) string {
	return fmt.Sprintf("%d-%s-%d", docType, series, number)
}

// Key returns the voucher's identity key.
func (v *Voucher) Key() string {
	return VoucherKey(v.Type, v.Series, v.Number)
}

// Hash is the short digest printed on the voucher representation.
func (v *Voucher) Hash() string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(v.Key() + "|" + v.Total.StringFixed(2)))
	return fmt.Sprintf("%08x", h.Sum32())
}
