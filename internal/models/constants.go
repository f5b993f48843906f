// Package models provides the data structures used throughout the pipeline.
package models

// Confidence grades shared by the validator and the categorization engine.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// Categories. The rule table may only target these labels.
const (
	CategoryUncategorized = "UNCATEGORIZED"
	CategoryBankCharges   = "BANK CHARGES"
	CategorySalary        = "SALARY"
	CategoryTransfers     = "TRANSFERS"
	CategoryCashWithdraw  = "CASH WITHDRAWAL"
	CategoryCardPurchase  = "CARD PURCHASE"
	CategoryUtilities     = "UTILITIES"
	CategoryTelecom       = "TELECOM"
	CategoryGroceries     = "GROCERIES"
	CategoryInsurance     = "INSURANCE"
	CategoryLoan          = "LOAN REPAYMENT"
	CategoryInterest      = "INTEREST"
	CategoryTax           = "TAX"
	CategoryStandingOrder = "STANDING ORDER"
	CategoryDeposit       = "DEPOSIT"
	CategoryCheque        = "CHEQUE"
)

// KnownCategories is the fixed enumerated set of category labels, in display order.
var KnownCategories = []string{
	CategoryBankCharges,
	CategorySalary,
	CategoryTransfers,
	CategoryCashWithdraw,
	CategoryCardPurchase,
	CategoryUtilities,
	CategoryTelecom,
	CategoryGroceries,
	CategoryInsurance,
	CategoryLoan,
	CategoryInterest,
	CategoryTax,
	CategoryStandingOrder,
	CategoryDeposit,
	CategoryCheque,
}

// IsKnownCategory reports whether name belongs to the enumerated category set.
func IsKnownCategory(name string) bool {
	for _, c := range KnownCategories {
		if c == name {
			return true
		}
	}
	return false
}

// File permissions
const (
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
