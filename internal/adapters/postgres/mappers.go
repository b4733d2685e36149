package postgres

import (
	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
)

func toDomainDAO(row daoModel) domain.DAO {
	return domain.DAO{
		DAOID:                      row.DAOID,
		Name:                       row.Name,
		Category:                   row.Category,
		Status:                     domain.DAOStatus(row.Status),
		CreatorAddress:             row.CreatorAddress,
		MinStake:                   row.MinStake,
		VotingPeriodDays:           row.VotingPeriodDays,
		ActivationThresholdPercent: row.ActivationThresholdPercent,
		TreasuryBalance:            row.TreasuryBalance,
		MemberCount:                row.MemberCount,
		ActivationTxID:             row.ActivationTxID,
		CreatedAt:                  row.CreatedAt,
		ActivatedAt:                row.ActivatedAt,
	}
}

func toDAOModel(dao domain.DAO) daoModel {
	return daoModel{
		DAOID:                      dao.DAOID,
		Name:                       dao.Name,
		Category:                   dao.Category,
		Status:                     string(dao.Status),
		CreatorAddress:             dao.CreatorAddress,
		MinStake:                   dao.MinStake,
		VotingPeriodDays:           dao.VotingPeriodDays,
		ActivationThresholdPercent: dao.ActivationThresholdPercent,
		TreasuryBalance:            dao.TreasuryBalance,
		MemberCount:                dao.MemberCount,
		ActivationTxID:             dao.ActivationTxID,
		CreatedAt:                  dao.CreatedAt,
		ActivatedAt:                dao.ActivatedAt,
	}
}

func toDomainMember(row memberModel) domain.Member {
	return domain.Member{
		DAOID:        row.DAOID,
		Address:      row.Address,
		StakeAmount:  row.StakeAmount,
		VotingWeight: row.VotingWeight,
		IsActive:     row.IsActive,
		StakeTxID:    row.StakeTxID,
		JoinedAt:     row.JoinedAt,
	}
}

func toDomainProposal(row proposalModel) domain.Proposal {
	return domain.Proposal{
		ProposalID:     row.ProposalID,
		DAOID:          row.DAOID,
		Title:          row.Title,
		Description:    row.Description,
		CreatorAddress: row.CreatorAddress,
		Status:         domain.ProposalStatus(row.Status),
		VotesFor:       row.VotesFor,
		VotesAgainst:   row.VotesAgainst,
		VotesAbstain:   row.VotesAbstain,
		RequiredVotes:  row.RequiredVotes,
		VotingEndsAt:   row.VotingEndsAt,
		CreatedAt:      row.CreatedAt,
		ExecutedAt:     row.ExecutedAt,
		ModeratorID:    row.ModeratorID,
	}
}

func toDomainVote(row voteModel) domain.Vote {
	return domain.Vote{
		ProposalID: row.ProposalID,
		Address:    row.VoterAddress,
		Choice:     domain.VoteChoice(row.Choice),
		Weight:     row.Weight,
		CastAt:     row.CastAt,
	}
}

func toDomainModerator(row moderatorModel) domain.Moderator {
	return domain.Moderator{
		ModeratorID: row.ModeratorID,
		DAOID:       row.DAOID,
		Name:        row.Name,
		Category:    row.Category,
		Description: row.Description,
		Status:      domain.ModeratorStatus(row.Status),
		Pricing: domain.Pricing{
			Hourly:  row.HourlyPrice,
			Monthly: row.MonthlyPrice,
			Buyout:  row.BuyoutPrice,
		},
		AssetID:           row.AssetID,
		MintTxID:          row.MintTxID,
		ContentHash:       row.ContentHash,
		CreatorAddress:    row.CreatorAddress,
		CurrentOwner:      row.CurrentOwner,
		TotalTransactions: row.TotalTransactions,
		TotalRevenue:      row.TotalRevenue,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func toModeratorModel(m domain.Moderator) moderatorModel {
	return moderatorModel{
		ModeratorID:       m.ModeratorID,
		DAOID:             m.DAOID,
		Name:              m.Name,
		Category:          m.Category,
		Description:       m.Description,
		Status:            string(m.Status),
		HourlyPrice:       m.Pricing.Hourly,
		MonthlyPrice:      m.Pricing.Monthly,
		BuyoutPrice:       m.Pricing.Buyout,
		AssetID:           m.AssetID,
		MintTxID:          m.MintTxID,
		ContentHash:       m.ContentHash,
		CreatorAddress:    m.CreatorAddress,
		CurrentOwner:      m.CurrentOwner,
		TotalTransactions: m.TotalTransactions,
		TotalRevenue:      m.TotalRevenue,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toDomainGrant(row grantModel) domain.AccessGrant {
	return domain.AccessGrant{
		ModeratorID:  row.ModeratorID,
		BuyerAddress: row.BuyerAddress,
		Kind:         domain.GrantKind(row.Kind),
		ExpiresAt:    row.ExpiresAt,
		TotalSpent:   row.TotalSpent,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toDomainRevenue(row revenueModel) domain.RevenueRecord {
	return domain.RevenueRecord{
		RecordID:   row.RecordID,
		DAOID:      row.DAOID,
		Amount:     row.Amount,
		SourceTxID: row.SourceTxID,
		Purpose:    row.Purpose,
		RecordedAt: row.RecordedAt,
	}
}

func toReconciliationRecord(row reconciliationModel) ports.ReconciliationRecord {
	return ports.ReconciliationRecord{
		ID:             row.ID,
		Action:         ports.ReconciliationAction(row.Action),
		LedgerTxID:     row.LedgerTxID,
		AssetID:        row.AssetID,
		Payload:        []byte(row.Payload),
		RetryCount:     row.RetryCount,
		LastError:      row.LastError,
		CreatedAt:      row.CreatedAt,
		CompletedAt:    row.CompletedAt,
		LastErrorAt:    row.LastErrorAt,
		ClaimToken:     row.ClaimToken,
		ClaimUntil:     row.ClaimUntil,
		DeadLetteredAt: row.DeadLetteredAt,
	}
}

func toOutboxRecord(row outboxModel) ports.OutboxRecord {
	return ports.OutboxRecord{
		OutboxID:       row.OutboxID,
		EventType:      row.EventType,
		PartitionKey:   row.PartitionKey,
		Payload:        []byte(row.Payload),
		RetryCount:     row.RetryCount,
		LastError:      row.LastError,
		CreatedAt:      row.CreatedAt,
		PublishedAt:    row.PublishedAt,
		LastErrorAt:    row.LastErrorAt,
		ClaimToken:     row.ClaimToken,
		ClaimUntil:     row.ClaimUntil,
		DeadLetteredAt: row.DeadLetteredAt,
	}
}
