package dedup

import (
	"context"
	"fmt"

	"github.com/crebit/ramp-service/internal/domain"
)

type providerLists interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	ListExternalAccounts(ctx context.Context) ([]domain.ExternalAccount, error)
}

// Lookup scans provider-side collections to avoid creating duplicate
// customers and bank accounts. Both scans are O(n) over the full provider
// list per call with no caching; call volume is expected to be low.
type Lookup struct {
	provider providerLists
}

func NewLookup(p providerLists) *Lookup {
	return &Lookup{provider: p}
}

// CustomerByDocument returns the first customer holding an identity document
// whose value exactly equals the query. No case or format normalization:
// "123.456.789-00" does not match "12345678900". A miss returns (nil, nil);
// it is a valid "create new" signal, not an error.
func (l *Lookup) CustomerByDocument(ctx context.Context, value string) (*domain.Customer, error) {
	customers, err := l.provider.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("CustomerByDocument: %w", err)
	}

	for i := range customers {
		for _, doc := range customers[i].IdentityDocuments {
			if doc.Value == value {
				return &customers[i], nil
			}
		}
	}
	return nil, nil
}

// ExternalAccountByBankDetails returns the first external account whose
// (routing number, bank account number) pair matches exactly. A miss
// returns (nil, nil).
func (l *Lookup) ExternalAccountByBankDetails(ctx context.Context, routingNumber, bankAccountNumber string) (*domain.ExternalAccount, error) {
	accounts, err := l.provider.ListExternalAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExternalAccountByBankDetails: %w", err)
	}

	for i := range accounts {
		if accounts[i].RoutingNumber == routingNumber && accounts[i].BankAccountNumber == bankAccountNumber {
			return &accounts[i], nil
		}
	}
	return nil, nil
}
