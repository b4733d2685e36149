package postgres

import (
	"errors"

	"github.com/citadelx/marketplace/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	DAOs            ports.DAORepository
	Members         ports.MemberRepository
	Proposals       ports.ProposalRepository
	Moderators      ports.ModeratorRepository
	Grants          ports.GrantRepository
	Revenue         ports.RevenueRepository
	Reconciliations ports.ReconciliationRepository
	Outbox          ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		DAOs:            &daoRepository{db: db},
		Members:         &memberRepository{db: db},
		Proposals:       &proposalRepository{db: db},
		Moderators:      &moderatorRepository{db: db},
		Grants:          &grantRepository{db: db},
		Revenue:         &revenueRepository{db: db},
		Reconciliations: &reconciliationRepository{db: db},
		Outbox:          &outboxRepository{db: db},
	}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
