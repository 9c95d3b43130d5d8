package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"vendora/internal/model"
)

// Plan looks up one plan from the catalog. Plans are reference data: the
// purchase path only ever reads them.
func (s *Store) Plan(ctx context.Context, planID string) (*model.Plan, error) {
	var (
		plan  model.Plan
		kind  string
		price int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, network, kind, family, provider, external_plan_id, price
		 FROM plans WHERE id = $1`,
		planID,
	).Scan(&plan.ID, &plan.Name, &plan.Network, &kind, &plan.Family,
		&plan.Provider, &plan.ExternalPlanID, &price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.E(model.CodePlanNotFound, "We cannot find this plan")
	}
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", planID, err)
	}
	plan.Kind = model.TransactionKind(kind)
	plan.Price = model.Money(price)
	return &plan, nil
}

// PlansByNetwork lists catalog entries for one network and kind, newest
// first by price.
func (s *Store) PlansByNetwork(ctx context.Context, network string, kind model.TransactionKind) ([]model.Plan, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, network, kind, family, provider, external_plan_id, price
		 FROM plans WHERE network = $1 AND kind = $2 ORDER BY price`,
		network, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list plans for %s/%s: %w", network, kind, err)
	}
	defer rows.Close()

	var plans []model.Plan
	for rows.Next() {
		var (
			p     model.Plan
			k     string
			price int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Network, &k, &p.Family,
			&p.Provider, &p.ExternalPlanID, &price); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		p.Kind = model.TransactionKind(k)
		p.Price = model.Money(price)
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
