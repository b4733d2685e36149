package domain

import (
	"strconv"
	"time"
)

// ActivationCriteria are the thresholds a pending DAO must meet to become
// active. All three must hold. Values are injected configuration, never
// hard-coded by callers.
type ActivationCriteria struct {
	MinMembers         int
	MinTreasuryBalance int64
	MinAgeHours        int
}

// CriterionStatus reports one criterion's outcome for UI feedback.
type CriterionStatus struct {
	Name     string
	Met      bool
	Required string
	Actual   string
}

// ActivationResult is the outcome of evaluating a DAO snapshot against the
// activation criteria.
type ActivationResult struct {
	CanActivate bool
	Criteria    []CriterionStatus
}

// Unmet returns the names of criteria that did not hold.
func (r ActivationResult) Unmet() []string {
	var out []string
	for _, c := range r.Criteria {
		if !c.Met {
			out = append(out, c.Name)
		}
	}
	return out
}

// EvaluateActivation decides whether a pending DAO may activate given a
// membership/treasury snapshot. Pure and deterministic: identical inputs
// yield identical output and nothing is mutated. Callers act on the result;
// the evaluator never touches DAO status.
func EvaluateActivation(dao DAO, criteria ActivationCriteria, now time.Time) ActivationResult {
	ageHours := int(now.Sub(dao.CreatedAt).Hours())
	if ageHours < 0 {
		ageHours = 0
	}

	checks := []CriterionStatus{
		{
			Name:     "min_members",
			Met:      dao.MemberCount >= criteria.MinMembers,
			Required: itoa(int64(criteria.MinMembers)),
			Actual:   itoa(int64(dao.MemberCount)),
		},
		{
			Name:     "min_treasury_balance",
			Met:      dao.TreasuryBalance >= criteria.MinTreasuryBalance,
			Required: itoa(criteria.MinTreasuryBalance),
			Actual:   itoa(dao.TreasuryBalance),
		},
		{
			Name:     "min_age_hours",
			Met:      ageHours >= criteria.MinAgeHours,
			Required: itoa(int64(criteria.MinAgeHours)),
			Actual:   itoa(int64(ageHours)),
		},
	}

	result := ActivationResult{CanActivate: true, Criteria: checks}
	for _, c := range checks {
		if !c.Met {
			result.CanActivate = false
		}
	}
	return result
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
