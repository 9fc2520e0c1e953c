package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crebit/ramp-service/internal/domain"
)

type mockLists struct {
	customers []domain.Customer
	accounts  []domain.ExternalAccount
	err       error
}

func (m *mockLists) ListCustomers(context.Context) ([]domain.Customer, error) {
	return m.customers, m.err
}

func (m *mockLists) ListExternalAccounts(context.Context) ([]domain.ExternalAccount, error) {
	return m.accounts, m.err
}

func TestCustomerByDocument(t *testing.T) {
	customers := []domain.Customer{
		{
			ID: "cust-1",
			IdentityDocuments: []domain.IdentityDocument{
				{Type: "cpf", Value: "123.456.789-00", Country: "BR"},
			},
		},
		{
			ID: "cust-2",
			IdentityDocuments: []domain.IdentityDocument{
				{Type: "passport", Value: "AB123456", Country: "US"},
				{Type: "cpf", Value: "987.654.321-00", Country: "BR"},
			},
		},
		{
			// Same document value as cust-2: the scan must return the
			// first match, not this one.
			ID: "cust-3",
			IdentityDocuments: []domain.IdentityDocument{
				{Type: "cpf", Value: "987.654.321-00", Country: "BR"},
			},
		},
	}

	tests := []struct {
		name   string
		query  string
		wantID string
	}{
		{"exact match", "123.456.789-00", "cust-1"},
		{"second document of a customer", "AB123456", "cust-2"},
		{"first of duplicate matches wins", "987.654.321-00", "cust-2"},
		{"unformatted value does not match formatted document", "12345678900", ""},
		{"case sensitive", "ab123456", ""},
		{"no match", "000.000.000-00", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lookup := NewLookup(&mockLists{customers: customers})
			got, err := lookup.CustomerByDocument(context.Background(), tc.query)
			require.NoError(t, err)

			if tc.wantID == "" {
				assert.Nil(t, got, "miss must return nil, not an error")
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.wantID, got.ID)
		})
	}
}

func TestExternalAccountByBankDetails(t *testing.T) {
	accounts := []domain.ExternalAccount{
		{ID: "acct-1", RoutingNumber: "021000021", BankAccountNumber: "12345678"},
		{ID: "acct-2", RoutingNumber: "021000021", BankAccountNumber: "87654321"},
		{ID: "acct-3", RoutingNumber: "121000248", BankAccountNumber: "12345678"},
	}

	tests := []struct {
		name    string
		routing string
		account string
		wantID  string
	}{
		{"match on full pair", "021000021", "87654321", "acct-2"},
		{"routing alone is not enough", "021000021", "00000000", ""},
		{"account alone is not enough", "999999999", "12345678", ""},
		{"first matching pair wins", "021000021", "12345678", "acct-1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lookup := NewLookup(&mockLists{accounts: accounts})
			got, err := lookup.ExternalAccountByBankDetails(context.Background(), tc.routing, tc.account)
			require.NoError(t, err)

			if tc.wantID == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.wantID, got.ID)
		})
	}
}

func TestLookupPropagatesProviderErrors(t *testing.T) {
	providerErr := errors.New("provider unavailable")
	lookup := NewLookup(&mockLists{err: providerErr})

	_, err := lookup.CustomerByDocument(context.Background(), "123")
	require.ErrorIs(t, err, providerErr)

	_, err = lookup.ExternalAccountByBankDetails(context.Background(), "1", "2")
	require.ErrorIs(t, err, providerErr)
}
