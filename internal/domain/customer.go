package domain

type IdentityDocument struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	Country string `json:"country"`
}

type Address struct {
	StreetLine1 string `json:"street_line_1"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

// Customer is the provider-side KYC record. Lookups scan IdentityDocuments
// for an exact value match; no normalization is applied.
type Customer struct {
	ID                string             `json:"id"`
	FirstName         string             `json:"first_name"`
	LastName          string             `json:"last_name"`
	Email             string             `json:"email"`
	PhoneNumber       string             `json:"phone_number"`
	Type              string             `json:"type"`
	DateOfBirth       string             `json:"date_of_birth"`
	IdentityDocuments []IdentityDocument `json:"identity_documents"`
	Address           Address            `json:"address"`
}

// Wallet is a provider-custodied stablecoin wallet attached to a customer.
type Wallet struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customer_id"`
	Address     string `json:"address"`
	PaymentRail string `json:"payment_rail"`
}

// ExternalAccount is a bank account registered with the provider as a
// payout destination. Deduplicated by exact (routing, account number) match.
type ExternalAccount struct {
	ID                string  `json:"id"`
	CustomerID        string  `json:"customer_id"`
	AccountName       string  `json:"account_name"`
	BeneficiaryName   string  `json:"beneficiary_name"`
	BankName          string  `json:"bank_name"`
	BankAccountNumber string  `json:"bank_account_number"`
	RoutingNumber     string  `json:"routing_number"`
	Address           Address `json:"address"`
}
