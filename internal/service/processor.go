package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/logging"
	"github.com/crebit/ramp-service/internal/metrics"
	"github.com/crebit/ramp-service/internal/provider"
	"github.com/crebit/ramp-service/internal/repository"
	"github.com/crebit/ramp-service/internal/settlement"
)

type chainProvider interface {
	CreateQuote(ctx context.Context, req provider.QuoteRequest) (*domain.Quote, error)
	ListCustomerExternalAccounts(ctx context.Context, customerID string) ([]domain.ExternalAccount, error)
	ListWallets(ctx context.Context, customerID string) ([]domain.Wallet, error)
	WalletTransfer(ctx context.Context, req provider.TransferRequest) (*domain.Transaction, error)
	CreatePayout(ctx context.Context, req provider.PayoutRequest) (*domain.Transaction, error)
}

type userResolver interface {
	GetByProviderCustomerID(ctx context.Context, customerID string) (*domain.User, error)
}

type eventSink interface {
	Insert(ctx context.Context, rec *repository.WebhookEventRecord) error
}

type transactionSink interface {
	Upsert(ctx context.Context, rec *repository.TransactionRecord) error
}

type notifier interface {
	Post(ctx context.Context, format string, args ...any)
}

// ChainConfig parameterizes the payin -> payout auto-chain.
type ChainConfig struct {
	// FallbackExternalAccountID is the check-delivery destination used when
	// the customer has no registered bank account.
	FallbackExternalAccountID string
	OperatorWalletID          string
	ServiceFeeUSDC            decimal.Decimal
	PayoutRail                string
}

// WebhookProcessor drives the settlement tracker from inbound provider
// events and, on payin completion, chains the off-ramp payout synchronously
// within the same webhook handling. A slow provider call directly extends
// the webhook response latency; there are no background workers.
type WebhookProcessor struct {
	tracker      *settlement.Tracker
	provider     chainProvider
	users        userResolver
	events       eventSink
	transactions transactionSink
	notifier     notifier
	metrics      *metrics.Metrics
	cfg          ChainConfig
}

func NewWebhookProcessor(
	tracker *settlement.Tracker,
	p chainProvider,
	users userResolver,
	events eventSink,
	transactions transactionSink,
	n notifier,
	m *metrics.Metrics,
	cfg ChainConfig,
) *WebhookProcessor {
	if cfg.PayoutRail == "" {
		cfg.PayoutRail = "solana"
	}
	return &WebhookProcessor{
		tracker:      tracker,
		provider:     p,
		users:        users,
		events:       events,
		transactions: transactions,
		notifier:     n,
		metrics:      m,
		cfg:          cfg,
	}
}

// ProcessEvent applies one inbound webhook event. A non-nil error means the
// auto-payout chain failed; the webhook handler reports it in the ack body
// but still answers 200 so the provider does not retry. Unknown event types
// are persisted and acknowledged without touching the state machine.
func (p *WebhookProcessor) ProcessEvent(ctx context.Context, event domain.WebhookEvent) error {
	log := logging.FromContext(ctx)
	p.metrics.RecordWebhookEvent(event.EventType)

	if p.tracker.MarkEventProcessed(event.EventID) {
		log.Info("duplicate webhook event, skipping", "event_id", event.EventID, "event_type", event.EventType)
		return nil
	}

	p.persist(ctx, event)

	res := event.EventResource
	switch event.EventType {
	case domain.EventPayinCreated:
		if res.Status == domain.TransactionStatusFailed {
			p.tracker.RecordFailed(res.ID)
			return nil
		}
		raw, _ := json.Marshal(res)
		p.tracker.RecordCreated(res.ID, raw)
		log.Info("payin created", "payin_id", res.ID, "customer_id", res.CustomerID)

	case domain.EventPayinProcessing:
		if res.Status == domain.TransactionStatusFailed {
			p.tracker.RecordFailed(res.ID)
			return nil
		}
		p.tracker.RecordProcessing(res.ID, time.Now().UTC())
		log.Info("payin processing", "payin_id", res.ID)

	case domain.EventPayinCompleted:
		raw, _ := json.Marshal(res)
		p.tracker.RecordCompleted(res.ID, res.Sender.Amount, res.Receiver.Amount, res.Receiver.Address, raw)
		log.Info("payin completed",
			"payin_id", res.ID,
			"amount_local", res.Sender.Amount,
			"amount_usdc", res.Receiver.Amount,
		)
		if err := p.chainPayout(ctx, res); err != nil {
			return fmt.Errorf("ProcessEvent: auto payout for payin %s: %w", res.ID, err)
		}

	case domain.EventPayoutCompleted:
		p.resolvePayoutEvent(ctx, res.ID, domain.TransactionStatusCompleted)

	case domain.EventPayoutFailed:
		p.resolvePayoutEvent(ctx, res.ID, domain.TransactionStatusFailed)

	default:
		log.Info("unrecognized webhook event type, acknowledged", "event_type", event.EventType)
	}

	return nil
}

// StatusEntry returns the tracked entry for a payin id verbatim.
func (p *WebhookProcessor) StatusEntry(payinID string) (settlement.Entry, bool) {
	return p.tracker.Snapshot(payinID)
}

// chainPayout runs the payin.completed auto-chain: resolve the payout
// destination, take a fresh off-ramp quote, collect the flat service fee,
// then submit the payout and record it under the payin's entry.
func (p *WebhookProcessor) chainPayout(ctx context.Context, res domain.Transaction) error {
	log := logging.FromContext(ctx)

	externalAccountID := p.cfg.FallbackExternalAccountID
	accounts, err := p.provider.ListCustomerExternalAccounts(ctx, res.CustomerID)
	if err != nil {
		p.metrics.RecordChainFailure("resolve_account")
		return fmt.Errorf("chainPayout: list external accounts: %w", err)
	}
	if len(accounts) > 0 {
		externalAccountID = accounts[0].ID
	} else {
		log.Warn("customer has no external account, falling back to check delivery",
			"customer_id", res.CustomerID,
			"fallback_account_id", externalAccountID,
		)
		p.notifier.Post(ctx, "No bank account on file for customer %s, payout for payin %s goes out by check delivery", res.CustomerID, res.ID)
	}

	// A fresh off-ramp quote per payout; quotes are never reused.
	offRamp, err := p.provider.CreateQuote(ctx, provider.QuoteRequest{
		Symbol: "USDC/USD",
		Type:   domain.QuoteTypeOffRamp,
	})
	if err != nil {
		p.metrics.RecordChainFailure("offramp_quote")
		return fmt.Errorf("chainPayout: off-ramp quote: %w", err)
	}

	wallet, err := p.resolveWallet(ctx, res)
	if err != nil {
		p.metrics.RecordChainFailure("resolve_wallet")
		return fmt.Errorf("chainPayout: %w", err)
	}

	amount := res.Receiver.Amount
	if _, err := p.provider.WalletTransfer(ctx, provider.TransferRequest{
		Amount:           p.cfg.ServiceFeeUSDC,
		Currency:         "USDC",
		SenderWalletID:   wallet.ID,
		ReceiverWalletID: p.cfg.OperatorWalletID,
	}); err != nil {
		// Fee collection is skipped on failure and the principal goes out
		// unchanged. The payout itself must not be blocked by this.
		log.Warn("service fee transfer failed, paying out principal only",
			"payin_id", res.ID,
			"wallet_id", wallet.ID,
			"error", err,
		)
		p.metrics.RecordChainFailure("service_fee_transfer")
		p.notifier.Post(ctx, "Service fee transfer failed for payin %s (payout continues without surcharge): %v", res.ID, err)
	} else {
		amount = amount.Add(p.cfg.ServiceFeeUSDC)
	}

	payout, err := p.provider.CreatePayout(ctx, provider.PayoutRequest{
		Amount:  amount,
		QuoteID: offRamp.ID,
		Sender: provider.PayoutSender{
			Currency:    "USDC",
			PaymentRail: p.cfg.PayoutRail,
			WalletID:    wallet.ID,
		},
		Receiver: provider.PayoutReceiver{ExternalAccountID: externalAccountID},
	})
	if err != nil {
		p.metrics.RecordChainFailure("payout")
		p.notifier.Post(ctx, "Auto payout FAILED for payin %s: %v", res.ID, err)
		return fmt.Errorf("chainPayout: create payout: %w", err)
	}

	// Keyed by the payin id: payout events only carry the payout's own id,
	// so the tracker indexes payout -> payin here.
	p.tracker.AttachOfframp(res.ID, settlement.OfframpTransaction{
		ID:        payout.ID,
		Status:    domain.TransactionStatusProcessing,
		Amount:    amount,
		Currency:  payout.Currency,
		CreatedAt: payout.CreatedAt,
	})
	p.metrics.RecordPayoutChained()

	p.persistTransaction(ctx, payout, repository.TransactionKindPayout, res.CustomerID)

	log.Info("off-ramp payout chained",
		"payin_id", res.ID,
		"payout_id", payout.ID,
		"amount", amount,
	)
	p.notifier.Post(ctx, "Off-ramp payout %s created for payin %s (%s USDC)", payout.ID, res.ID, amount)

	return nil
}

// resolveWallet picks the customer's wallet that received the payin,
// falling back to the first wallet when the address does not match.
func (p *WebhookProcessor) resolveWallet(ctx context.Context, res domain.Transaction) (*domain.Wallet, error) {
	wallets, err := p.provider.ListWallets(ctx, res.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("resolveWallet: %w", err)
	}
	if len(wallets) == 0 {
		return nil, fmt.Errorf("resolveWallet: customer %s has no wallet", res.CustomerID)
	}

	for i := range wallets {
		if wallets[i].Address == res.Receiver.Address {
			return &wallets[i], nil
		}
	}
	return &wallets[0], nil
}

func (p *WebhookProcessor) resolvePayoutEvent(ctx context.Context, payoutID string, status domain.TransactionStatus) {
	log := logging.FromContext(ctx)
	if !p.tracker.MarkOfframpStatus(payoutID, status) {
		// No persistent cross-restart correlation exists: a payout event
		// arriving after a restart has nothing to attach to.
		log.Warn("payout event for unknown payout id, dropped",
			"payout_id", payoutID,
			"status", status,
		)
		return
	}
	log.Info("payout status updated", "payout_id", payoutID, "status", status)
}

// persist records the raw event and, for payment events, the transaction
// row, attributed to the internal user when the provider customer id
// resolves. Sink failures are logged and never break webhook handling.
func (p *WebhookProcessor) persist(ctx context.Context, event domain.WebhookEvent) {
	if p.events == nil {
		return
	}
	log := logging.FromContext(ctx)
	res := event.EventResource

	userID := p.resolveUserID(ctx, res.CustomerID)

	rec := &repository.WebhookEventRecord{
		ID:              uuid.New(),
		ProviderEventID: event.EventID,
		EventType:       event.EventType,
		ResourceID:      res.ID,
		ResourceStatus:  event.EventResourceStatus,
		Payload:         event.Raw(),
		UserID:          userID,
		ReceivedAt:      time.Now().UTC(),
	}
	if err := p.events.Insert(ctx, rec); err != nil {
		log.Error("failed to persist webhook event", "event_id", event.EventID, "error", err)
	}

	switch event.EventType {
	case domain.EventPayinCreated, domain.EventPayinProcessing, domain.EventPayinCompleted:
		p.persistTransaction(ctx, &res, repository.TransactionKindPayin, res.CustomerID)
	case domain.EventPayoutCompleted, domain.EventPayoutFailed:
		p.persistTransaction(ctx, &res, repository.TransactionKindPayout, res.CustomerID)
	}
}

func (p *WebhookProcessor) persistTransaction(ctx context.Context, tx *domain.Transaction, kind, customerID string) {
	if p.transactions == nil {
		return
	}
	log := logging.FromContext(ctx)

	now := time.Now().UTC()
	rec := &repository.TransactionRecord{
		ID:                    uuid.New(),
		ProviderTransactionID: tx.ID,
		Kind:                  kind,
		Status:                tx.Status,
		Amount:                tx.Amount,
		Currency:              tx.Currency,
		ProviderCustomerID:    customerID,
		UserID:                p.resolveUserID(ctx, customerID),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := p.transactions.Upsert(ctx, rec); err != nil {
		log.Error("failed to persist transaction", "provider_transaction_id", tx.ID, "error", err)
	}
}

func (p *WebhookProcessor) resolveUserID(ctx context.Context, customerID string) *uuid.UUID {
	if p.users == nil || customerID == "" {
		return nil
	}
	user, err := p.users.GetByProviderCustomerID(ctx, customerID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.FromContext(ctx).Error("failed to resolve user for customer", "customer_id", customerID, "error", err)
		}
		return nil
	}
	return &user.ID
}
