package domain

import "fmt"

// Ledger reference conventions. References are human-readable but carry the
// stable key (order number, withdrawal id) that the consistency scan and
// webhook matching rely on, so the shapes here must stay in sync with the
// SQL in the repository scan queries.

func OrderPaymentRef(orderNo string) string {
	return fmt.Sprintf("order:%s:payment", orderNo)
}

func OrderReleaseRef(orderNo string) string {
	return fmt.Sprintf("order:%s:release", orderNo)
}

func OrderRefundRef(orderNo string) string {
	return fmt.Sprintf("order:%s:refund", orderNo)
}

func WithdrawalRef(id string) string {
	return fmt.Sprintf("withdraw:%s", id)
}

func DepositRef(id string) string {
	return fmt.Sprintf("deposit:%s", id)
}
