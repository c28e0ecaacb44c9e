package models

// Status order mengikuti alur dapur. Semua mutator wajib lewat CanTransition
// supaya transisi ilegal ditolak di satu tempat, bukan dicek manual per handler.
type OrderStatus string

const (
	OrderStatusCart      OrderStatus = "cart"
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusWaiting   OrderStatus = "waiting"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusVoided    OrderStatus = "voided"
	OrderStatusPaid      OrderStatus = "paid"
)

// Status session
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// Status pembayaran session (monotonic: none -> pending -> completed)
type PaymentStatus string

const (
	PaymentStatusNone      PaymentStatus = "none"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// Status split bill
type SplitBillStatus string

const (
	SplitBillStatusActive    SplitBillStatus = "active"
	SplitBillStatusCompleted SplitBillStatus = "completed"
)

// Tipe pembayaran
type PaymentType string

const (
	PaymentTypeTable      PaymentType = "table"
	PaymentTypeIndividual PaymentType = "individual"
)

// orderTransitions memetakan transisi maju yang sah. paid dan voided terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCart:      {OrderStatusPlaced, OrderStatusWaiting, OrderStatusVoided},
	OrderStatusPlaced:    {OrderStatusWaiting, OrderStatusVoided},
	OrderStatusWaiting:   {OrderStatusPreparing, OrderStatusVoided},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusVoided},
	OrderStatusReady:     {OrderStatusServed, OrderStatusVoided},
	OrderStatusServed:    {OrderStatusPaid, OrderStatusVoided},
	OrderStatusVoided:    {},
	OrderStatusPaid:      {},
}

// CanTransition -> true jika perpindahan status order sah
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal -> paid/voided tidak boleh berubah lagi
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusVoided
}

// IsKitchenStatus -> subset status yang boleh dimutasi chef/staff dapur
func (s OrderStatus) IsKitchenStatus() bool {
	switch s {
	case OrderStatusWaiting, OrderStatusPreparing, OrderStatusReady, OrderStatusServed:
		return true
	}
	return false
}

// CanAdvanceKitchen -> advanceKitchenStatus hanya menerima langkah maju
// di antara waiting -> preparing -> ready -> served.
func (s OrderStatus) CanAdvanceKitchen(next OrderStatus) bool {
	if !s.IsKitchenStatus() || !next.IsKitchenStatus() {
		return false
	}
	return s.CanTransition(next)
}

// ValidOrderStatus -> validasi input status dari request
func ValidOrderStatus(raw string) (OrderStatus, bool) {
	s := OrderStatus(raw)
	switch s {
	case OrderStatusCart, OrderStatusPlaced, OrderStatusWaiting, OrderStatusPreparing,
		OrderStatusReady, OrderStatusServed, OrderStatusVoided, OrderStatusPaid:
		return s, true
	}
	return "", false
}

// ValidPaymentType -> validasi tipe pembayaran dari request
func ValidPaymentType(raw string) (PaymentType, bool) {
	t := PaymentType(raw)
	if t == PaymentTypeTable || t == PaymentTypeIndividual {
		return t, true
	}
	return "", false
}
