package contribution

// RejectReason is the machine-readable reason a contribution attempt was
// rejected. Rejections are surfaced to the caller as-is and never retried
// automatically.
type RejectReason string

const (
	ReasonKycRequired       RejectReason = "KycRequired"
	ReasonSaleNotActive     RejectReason = "SaleNotActive"
	ReasonAmountOutOfRange  RejectReason = "AmountOutOfRange"
	ReasonWalletCapExceeded RejectReason = "WalletCapExceeded"
	ReasonHardCapExceeded   RejectReason = "HardCapExceeded"
)

func (r RejectReason) String() string {
	return string(r)
}
