package application

import (
	"context"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/google/uuid"
)

// DAORevenue returns the append-only revenue records for a DAO together with
// the running total. Historical records are never mutated.
func (s *Service) DAORevenue(ctx context.Context, daoID uuid.UUID, limit, offset int) (RevenueSummary, error) {
	if _, err := s.daos.GetByID(ctx, daoID); err != nil {
		return RevenueSummary{}, err
	}
	records, err := s.revenue.ListByDAO(ctx, daoID, limit, offset)
	if err != nil {
		return RevenueSummary{}, err
	}
	total, err := s.revenue.TotalByDAO(ctx, daoID)
	if err != nil {
		return RevenueSummary{}, err
	}
	return RevenueSummary{DAOID: daoID, Total: total, Records: records}, nil
}

// DistributeShares computes each member's proportional-to-stake share of all
// revenue recorded for the DAO. Shares are computed on demand against the
// current membership snapshot: the pot always redistributes over whoever
// holds stake at read time. Zero-stake members receive zero; shares sum
// exactly to the recorded total.
func (s *Service) DistributeShares(ctx context.Context, daoID uuid.UUID) (ShareBreakdown, error) {
	dao, err := s.daos.GetByID(ctx, daoID)
	if err != nil {
		return ShareBreakdown{}, err
	}
	members, err := s.members.ListActiveByDAO(ctx, daoID)
	if err != nil {
		return ShareBreakdown{}, err
	}
	total, err := s.revenue.TotalByDAO(ctx, daoID)
	if err != nil {
		return ShareBreakdown{}, err
	}
	shares := domain.DistributeShares(members, dao.TreasuryBalance, total)
	return ShareBreakdown{DAOID: daoID, Total: total, Shares: shares}, nil
}
