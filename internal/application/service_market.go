package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
	"github.com/google/uuid"
)

// maxPurchaseQuantity caps the hours or months a single purchase can buy.
// The cap keeps the price multiplication and the expiry extension well
// inside int64 nanoseconds; larger windows are bought in installments.
const maxPurchaseQuantity = 1000

func (s *Service) GetModerator(ctx context.Context, moderatorID uuid.UUID) (domain.Moderator, error) {
	return s.moderators.GetByID(ctx, moderatorID)
}

func (s *Service) ListModerators(ctx context.Context, status domain.ModeratorStatus, limit, offset int) ([]domain.Moderator, error) {
	return s.moderators.List(ctx, status, limit, offset)
}

func (s *Service) ListDAOModerators(ctx context.Context, daoID uuid.UUID) ([]domain.Moderator, error) {
	return s.moderators.ListByDAO(ctx, daoID)
}

// SetPricing updates a moderator's prices. Only the current owner may call;
// constraints (nothing negative, buyout >= monthly) are enforced at set time.
func (s *Service) SetPricing(ctx context.Context, moderatorID uuid.UUID, caller string, req SetPricingRequest) (domain.Moderator, error) {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return domain.Moderator{}, domain.ErrUnauthorized
	}
	if err := req.Pricing.Validate(); err != nil {
		return domain.Moderator{}, fmt.Errorf("%w: prices must be non-negative and buyout at least the monthly price", err)
	}

	moderator, err := s.moderators.GetByID(ctx, moderatorID)
	if err != nil {
		return domain.Moderator{}, err
	}
	if moderator.CurrentOwner != caller {
		return domain.Moderator{}, fmt.Errorf("%w: only the current owner may update pricing", domain.ErrUnauthorized)
	}
	return s.moderators.UpdatePricing(ctx, moderatorID, req.Pricing, s.nowFn())
}

// ActivateModerator moves a moderator out of training so it becomes
// purchasable. Only the owner may activate.
func (s *Service) ActivateModerator(ctx context.Context, moderatorID uuid.UUID, caller string) (domain.Moderator, error) {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return domain.Moderator{}, domain.ErrUnauthorized
	}
	moderator, err := s.moderators.GetByID(ctx, moderatorID)
	if err != nil {
		return domain.Moderator{}, err
	}
	if moderator.CurrentOwner != caller {
		return domain.Moderator{}, fmt.Errorf("%w: only the current owner may activate", domain.ErrUnauthorized)
	}
	flipped, err := s.moderators.SetStatus(ctx, moderatorID, domain.ModeratorStatusTraining, domain.ModeratorStatusActive, s.nowFn())
	if err != nil {
		return domain.Moderator{}, err
	}
	if !flipped {
		return domain.Moderator{}, fmt.Errorf("%w: moderator is not in training", domain.ErrInvalidTransition)
	}
	return s.moderators.GetByID(ctx, moderatorID)
}

// Purchase buys hourly, monthly or buyout access. The payment and the
// marketplace application call are submitted as one atomic ledger group; the
// grant, ownership change, revenue record and stats land in one database
// transaction once the group confirms.
func (s *Service) Purchase(ctx context.Context, moderatorID uuid.UUID, buyer string, req PurchaseRequest) (PurchaseResult, error) {
	buyer = strings.TrimSpace(buyer)
	if buyer == "" {
		return PurchaseResult{}, domain.ErrUnauthorized
	}

	moderator, err := s.moderators.GetByID(ctx, moderatorID)
	if err != nil {
		return PurchaseResult{}, err
	}
	if moderator.Status != domain.ModeratorStatusActive {
		return PurchaseResult{}, domain.ErrModeratorUnavailable
	}

	quantity := req.Quantity
	var price int64
	var extendBy time.Duration
	var note string
	switch req.Kind {
	case domain.GrantKindHourly:
		if quantity < 1 || quantity > maxPurchaseQuantity {
			return PurchaseResult{}, fmt.Errorf("%w: hours must be between 1 and %d",
				domain.ErrInvalidInput, maxPurchaseQuantity)
		}
		price = moderator.Pricing.Hourly * quantity
		extendBy = time.Duration(quantity) * time.Hour
		note = fmt.Sprintf("Hourly:%s:%dh", moderatorID, quantity)
	case domain.GrantKindMonthly:
		if quantity < 1 || quantity > maxPurchaseQuantity {
			return PurchaseResult{}, fmt.Errorf("%w: months must be between 1 and %d",
				domain.ErrInvalidInput, maxPurchaseQuantity)
		}
		price = moderator.Pricing.Monthly * quantity
		extendBy = time.Duration(quantity) * s.cfg.MonthDuration
		note = fmt.Sprintf("Monthly:%s:%dm", moderatorID, quantity)
	case domain.GrantKindBuyout:
		if moderator.CurrentOwner == buyer {
			return PurchaseResult{}, domain.ErrAlreadyOwner
		}
		quantity = 1
		price = moderator.Pricing.Buyout
		note = fmt.Sprintf("Buyout:%s:buyout", moderatorID)
	default:
		return PurchaseResult{}, fmt.Errorf("%w: unknown purchase kind %q", domain.ErrInvalidInput, req.Kind)
	}

	conf, err := s.ledger.SubmitPurchaseGroup(ctx,
		ports.PaymentIntent{
			Sender:   buyer,
			Receiver: s.cfg.TreasuryAddress,
			Amount:   price,
			Note:     note,
		},
		ports.AppCallIntent{
			Sender: buyer,
			AppID:  s.cfg.MarketplaceAppID,
			Method: "purchase_" + string(req.Kind),
			Args:   []string{moderatorID.String(), strconv.FormatInt(quantity, 10)},
			Note:   note,
		},
	)
	if err != nil {
		return PurchaseResult{}, err
	}

	ownerShare := price * int64(100-s.cfg.PlatformFeePercent) / 100
	commit := ports.PurchaseCommit{
		ModeratorID:  moderatorID,
		DAOID:        moderator.DAOID,
		BuyerAddress: buyer,
		Kind:         req.Kind,
		Quantity:     quantity,
		GrossAmount:  price,
		OwnerShare:   ownerShare,
		PlatformFee:  price - ownerShare,
		ExtendBy:     extendBy,
		LedgerTxID:   conf.TxID,
		Note:         note,
		ConfirmedAt:  s.nowFn(),
	}
	event, err := s.purchaseConfirmedEvent(commit)
	if err != nil {
		return PurchaseResult{}, s.parkCommit(ctx, ports.ReconcileCommitPurchase, conf, commit, err)
	}
	grant, err := s.grants.CommitPurchaseTx(ctx, commit, event)
	if err != nil {
		return PurchaseResult{}, s.parkCommit(ctx, ports.ReconcileCommitPurchase, conf, commit, err)
	}
	s.invalidateAccess(ctx, moderatorID, buyer)

	updated, err := s.moderators.GetByID(ctx, moderatorID)
	if err != nil {
		updated = moderator
	}
	return PurchaseResult{Grant: grant, Moderator: updated, LedgerTxID: conf.TxID, Charged: price}, nil
}

// HasAccess reports whether an address currently holds access to a
// moderator: a buyout grant is permanent, timed grants confer access until
// expiry. Pure read; expiry is lazy. A Redis read-through cache keeps the
// hot check cheap, with TTLs clamped to the grant's remaining validity.
func (s *Service) HasAccess(ctx context.Context, moderatorID uuid.UUID, address string) (bool, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return false, fmt.Errorf("%w: address must not be empty", domain.ErrInvalidInput)
	}

	if s.accessCache != nil {
		if allowed, found, err := s.accessCache.GetAccess(ctx, moderatorID, address); err == nil && found {
			return allowed, nil
		}
	}

	grant, err := s.grants.Get(ctx, moderatorID, address)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	now := s.nowFn()
	allowed := grant.ActiveAt(now)
	if s.accessCache != nil {
		ttl := 5 * time.Minute
		if allowed && grant.ExpiresAt != nil {
			if remaining := grant.ExpiresAt.Sub(now); remaining < ttl {
				ttl = remaining
			}
		}
		if ttl > 0 {
			_ = s.accessCache.SetAccess(ctx, moderatorID, address, allowed, ttl)
		}
	}
	return allowed, nil
}

func (s *Service) GetGrant(ctx context.Context, moderatorID uuid.UUID, address string) (domain.AccessGrant, error) {
	return s.grants.Get(ctx, moderatorID, address)
}

func (s *Service) invalidateAccess(ctx context.Context, moderatorID uuid.UUID, address string) {
	if s.accessCache == nil {
		return
	}
	if err := s.accessCache.InvalidateAccess(ctx, moderatorID, address); err != nil {
		s.logger.WarnContext(ctx, "access cache invalidation failed",
			"module", "application.market",
			"operation", "invalidate_access",
			"outcome", "failure",
			"moderator_id", moderatorID,
			"error", err,
		)
	}
}
