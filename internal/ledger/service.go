package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
	"gophermart.com/internal/ledger/repo"
	"gophermart.com/internal/market"
)

// Service is the database-backed ledger: balances live in the balances
// table, reads go through an optional cache with singleflight protection,
// and transfers run inside one database transaction.
type Service struct {
	repo  repo.BalancesRepo
	cache Cache
	sf    singleflight.Group
	ttl   time.Duration
}

func NewService(r repo.BalancesRepo, cache Cache) *Service {
	return &Service{
		repo:  r,
		cache: cache,
		ttl:   2 * time.Hour,
	}
}

func (s *Service) BalanceOf(ctx context.Context, account market.AccountID) (uint64, error) {
	ownerID := uint64(account)
	if s.cache != nil {
		if amount, ok, err := s.cache.GetBalance(ctx, ownerID); err == nil && ok {
			return amount, nil
		}
	}

	// singleflight so a cache miss storm issues one query per account
	v, err, _ := s.sf.Do(strconv.FormatUint(ownerID, 10), func() (interface{}, error) {
		amount, err := s.repo.GetBalance(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			_ = s.cache.SetBalance(ctx, ownerID, amount, s.ttl)
		}
		return amount, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

func (s *Service) Transfer(ctx context.Context, payer, payee market.AccountID, amount uint64) error {
	err := s.repo.Transfer(ctx, uint64(payer), uint64(payee), amount)
	if err != nil {
		if errors.Is(err, repo.ErrInsufficient) {
			return fmt.Errorf("transfer %d from %d to %d: %w", amount, payer, payee, market.ErrInsufficientFunds)
		}
		return err
	}
	s.invalidate(ctx, uint64(payer), uint64(payee))
	return nil
}

// Mint credits an account; the faucet for provisioning and tests.
func (s *Service) Mint(ctx context.Context, account market.AccountID, amount uint64) error {
	if err := s.repo.Credit(ctx, uint64(account), amount); err != nil {
		return err
	}
	s.invalidate(ctx, uint64(account))
	return nil
}

func (s *Service) invalidate(ctx context.Context, ownerIDs ...uint64) {
	if s.cache == nil {
		return
	}
	// stale reads self-heal on the next miss; eviction failure is not fatal
	_ = s.cache.DelBalance(ctx, ownerIDs...)
}
