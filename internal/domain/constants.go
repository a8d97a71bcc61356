package domain

const (
	AccountTypeSavings  = "savings"
	AccountTypeChecking = "checking"
	AccountTypeBusiness = "business"

	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"

	TxTypeDeposit    = "deposit"
	TxTypeWithdrawal = "withdrawal"
	TxTypeTransfer   = "transfer"

	TxStatusCompleted = "COMPLETED"
	TxStatusPending   = "PENDING"
	TxStatusFailed    = "FAILED"

	// Account numbers are 10 decimal digits, references 12 uppercase
	// alphanumerics. Both are unique across the whole store.
	AccountNumberLength   = 10
	ReferenceNumberLength = 12

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidAccountType reports whether t is one of the supported account types.
func ValidAccountType(t string) bool {
	switch t {
	case AccountTypeSavings, AccountTypeChecking, AccountTypeBusiness:
		return true
	}
	return false
}
