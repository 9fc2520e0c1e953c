// Command mock-provider is a local stand-in for the payment provider's
// sandbox. It serves the subset of the API the service calls and pushes
// payin lifecycle webhooks to WEBHOOK_URL after a short delay.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/logging"
	"github.com/crebit/ramp-service/internal/provider"
)

type store struct {
	mu           sync.Mutex
	customers    []domain.Customer
	wallets      map[string][]domain.Wallet
	accounts     map[string][]domain.ExternalAccount
	transactions map[string]domain.Transaction
}

type server struct {
	store      *store
	webhookURL string
	http       *http.Client
}

func main() {
	logging.Init("mock-provider", "info", os.Getenv("APP_ENV"))

	srv := &server{
		store: &store{
			wallets:      make(map[string][]domain.Wallet),
			accounts:     make(map[string][]domain.ExternalAccount),
			transactions: make(map[string]domain.Transaction),
		},
		webhookURL: os.Getenv("WEBHOOK_URL"),
		http:       &http.Client{Timeout: 10 * time.Second},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /quote", srv.createQuote)
	mux.HandleFunc("POST /customers", srv.createCustomer)
	mux.HandleFunc("GET /customers", srv.listCustomers)
	mux.HandleFunc("POST /customers/{id}/wallets", srv.createWallet)
	mux.HandleFunc("GET /customers/{id}/wallets", srv.listWallets)
	mux.HandleFunc("POST /customers/{id}/external-accounts", srv.createExternalAccount)
	mux.HandleFunc("GET /customers/{id}/external-accounts", srv.listCustomerAccounts)
	mux.HandleFunc("GET /external-accounts", srv.listAllAccounts)
	mux.HandleFunc("POST /payin", srv.createPayin)
	mux.HandleFunc("POST /payout", srv.createPayout)
	mux.HandleFunc("POST /wallet-transfer", srv.walletTransfer)
	mux.HandleFunc("GET /transactions/{id}", srv.getTransaction)

	addr := ":8081"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}

	slog.Info("mock provider started", "addr", addr, "webhook_url", srv.webhookURL)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func (s *server) createQuote(w http.ResponseWriter, r *http.Request) {
	var req provider.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	// Fixed sandbox rates: 5.50 BRL per USDC on-ramp, 1:1 for USD.
	rate := decimal.NewFromInt(1)
	if req.Symbol == "USDC/BRL" {
		rate = decimal.RequireFromString("5.50")
	}

	respond(w, http.StatusCreated, domain.Quote{
		ID:        "quote_" + uuid.NewString(),
		Symbol:    req.Symbol,
		Type:      req.Type,
		Quotation: rate,
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	})
}

func (s *server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req provider.CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	customer := domain.Customer{
		ID:                "cus_" + uuid.NewString(),
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
		Type:              req.Type,
		DateOfBirth:       req.DateOfBirth,
		IdentityDocuments: req.IdentityDocuments,
		Address:           req.Address,
	}

	s.store.mu.Lock()
	s.store.customers = append(s.store.customers, customer)
	s.store.mu.Unlock()

	respond(w, http.StatusCreated, customer)
}

func (s *server) listCustomers(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	customers := append([]domain.Customer(nil), s.store.customers...)
	s.store.mu.Unlock()
	respond(w, http.StatusOK, customers)
}

func (s *server) createWallet(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("id")
	wallet := domain.Wallet{
		ID:          "wal_" + uuid.NewString(),
		CustomerID:  customerID,
		Address:     uuid.NewString(),
		PaymentRail: "solana",
	}

	s.store.mu.Lock()
	s.store.wallets[customerID] = append(s.store.wallets[customerID], wallet)
	s.store.mu.Unlock()

	respond(w, http.StatusCreated, wallet)
}

func (s *server) listWallets(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	wallets := append([]domain.Wallet(nil), s.store.wallets[r.PathValue("id")]...)
	s.store.mu.Unlock()
	respond(w, http.StatusOK, wallets)
}

func (s *server) createExternalAccount(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("id")
	var req provider.ExternalAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	account := domain.ExternalAccount{
		ID:                "ext_" + uuid.NewString(),
		CustomerID:        customerID,
		AccountName:       req.AccountName,
		BeneficiaryName:   req.BeneficiaryName,
		BankName:          req.BankName,
		BankAccountNumber: req.BankAccountNumber,
		RoutingNumber:     req.RoutingNumber,
		Address:           req.Address,
	}

	s.store.mu.Lock()
	s.store.accounts[customerID] = append(s.store.accounts[customerID], account)
	s.store.mu.Unlock()

	respond(w, http.StatusCreated, account)
}

func (s *server) listCustomerAccounts(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	accounts := append([]domain.ExternalAccount(nil), s.store.accounts[r.PathValue("id")]...)
	s.store.mu.Unlock()
	respond(w, http.StatusOK, accounts)
}

func (s *server) listAllAccounts(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	var accounts []domain.ExternalAccount
	for _, list := range s.store.accounts {
		accounts = append(accounts, list...)
	}
	s.store.mu.Unlock()
	respond(w, http.StatusOK, accounts)
}

func (s *server) createPayin(w http.ResponseWriter, r *http.Request) {
	var req provider.PayinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	// USDC credited at the sandbox BRL rate.
	usdc := req.Amount.Div(decimal.RequireFromString("5.50")).Round(2)
	tx := domain.Transaction{
		ID:         "pay_" + uuid.NewString(),
		Status:     domain.TransactionStatusAwaitingDeposit,
		Amount:     req.Amount,
		Currency:   "BRL",
		CustomerID: req.CustomerID,
		Sender:     domain.TransactionParty{Amount: req.Amount, Currency: "BRL"},
		Receiver:   domain.TransactionParty{Amount: usdc, Currency: "USDC", Address: req.Receiver.WalletAddress},
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	s.rememberTransaction(tx)
	respond(w, http.StatusCreated, tx)

	// Walk the payin through its lifecycle the way the sandbox does.
	go s.playLifecycle(tx, []string{domain.EventPayinCreated, domain.EventPayinProcessing, domain.EventPayinCompleted})
}

func (s *server) createPayout(w http.ResponseWriter, r *http.Request) {
	var req provider.PayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	tx := domain.Transaction{
		ID:        "pout_" + uuid.NewString(),
		Status:    domain.TransactionStatusProcessing,
		Amount:    req.Amount,
		Currency:  "USD",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	s.rememberTransaction(tx)
	respond(w, http.StatusCreated, tx)

	go s.playLifecycle(tx, []string{domain.EventPayoutCompleted})
}

func (s *server) walletTransfer(w http.ResponseWriter, r *http.Request) {
	var req provider.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	respond(w, http.StatusCreated, domain.Transaction{
		ID:       "tr_" + uuid.NewString(),
		Status:   domain.TransactionStatusCompleted,
		Amount:   req.Amount,
		Currency: req.Currency,
	})
}

func (s *server) getTransaction(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	tx, ok := s.store.transactions[r.PathValue("id")]
	s.store.mu.Unlock()

	if !ok {
		respond(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
		return
	}
	respond(w, http.StatusOK, tx)
}

func (s *server) rememberTransaction(tx domain.Transaction) {
	s.store.mu.Lock()
	s.store.transactions[tx.ID] = tx
	s.store.mu.Unlock()
}

func (s *server) playLifecycle(tx domain.Transaction, eventTypes []string) {
	if s.webhookURL == "" {
		return
	}

	for _, eventType := range eventTypes {
		time.Sleep(2 * time.Second)

		switch eventType {
		case domain.EventPayinProcessing:
			tx.Status = domain.TransactionStatusProcessing
		case domain.EventPayinCompleted, domain.EventPayoutCompleted:
			tx.Status = domain.TransactionStatusCompleted
		}
		tx.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		s.rememberTransaction(tx)

		event := domain.WebhookEvent{
			Event:               eventType,
			EventID:             "evt_" + uuid.NewString(),
			EventType:           eventType,
			EventResourceID:     tx.ID,
			EventResourceStatus: string(tx.Status),
			EventResource:       tx,
			EventCreatedAt:      time.Now().UTC().Format(time.RFC3339),
		}

		body, _ := json.Marshal(event)
		resp, err := s.http.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			slog.Error("webhook delivery failed", "event_type", eventType, "error", err)
			continue
		}
		resp.Body.Close()
		slog.Info("webhook delivered",
			"event_type", eventType,
			"resource_id", tx.ID,
			"status", fmt.Sprintf("%d", resp.StatusCode),
		)
	}
}
