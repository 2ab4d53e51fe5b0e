package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/zenith/industry-insights/internal/insights"
)

// ListIndustries returns every tracked industry key in stable order.
// Read-only; the result is the frozen snapshot a refresh run iterates.
func (db *DB) ListIndustries(ctx context.Context) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT industry FROM industry_insights ORDER BY industry`)
	if err != nil {
		return nil, &StoreError{Message: "failed to list industries", Cause: err}
	}
	defer rows.Close()

	var industries []string
	for rows.Next() {
		var industry string
		if err := rows.Scan(&industry); err != nil {
			return nil, &StoreError{Message: "failed to scan industry", Cause: err}
		}
		industries = append(industries, industry)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Message: "failed to read industries", Cause: err}
	}
	return industries, nil
}

// UpdateInsight replaces every computed field of an existing industry row in
// a single statement and stamps the freshness pair
// (last_updated = now, next_update = now + one refresh period).
//
// Update-only by contract: rows are created by the onboarding flow. A
// missing row fails with a NotFound StoreError.
func (db *DB) UpdateInsight(ctx context.Context, industry string, in *insights.Insight, now time.Time) error {
	salaryJSON, err := json.Marshal(in.SalaryRanges)
	if err != nil {
		return &StoreError{Message: "failed to marshal salary ranges", Industry: industry, Cause: err}
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE industry_insights
		 SET salary_ranges = $2, growth_rate = $3, demand_level = $4,
		     market_outlook = $5, top_skills = $6, key_trends = $7,
		     recommended_skills = $8, last_updated = $9, next_update = $10
		 WHERE industry = $1`,
		industry, salaryJSON, in.GrowthRate, string(in.DemandLevel),
		string(in.MarketOutlook), in.TopSkills, in.KeyTrends,
		in.RecommendedSkills, now, now.Add(insights.RefreshPeriod),
	)
	if err != nil {
		return &StoreError{Message: "failed to update insight", Industry: industry, Cause: err}
	}
	if tag.RowsAffected() == 0 {
		return &StoreError{Message: "industry not tracked", Industry: industry, NotFound: true}
	}
	return nil
}

// GetRecord retrieves one industry's full record, or nil when absent.
func (db *DB) GetRecord(ctx context.Context, industry string) (*insights.Record, error) {
	var rec insights.Record
	var salaryJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT industry, salary_ranges, growth_rate, demand_level,
		        market_outlook, top_skills, key_trends, recommended_skills,
		        last_updated, next_update
		 FROM industry_insights WHERE industry = $1`,
		industry,
	).Scan(&rec.Industry, &salaryJSON, &rec.Insight.GrowthRate,
		&rec.Insight.DemandLevel, &rec.Insight.MarketOutlook,
		&rec.Insight.TopSkills, &rec.Insight.KeyTrends,
		&rec.Insight.RecommendedSkills, &rec.LastUpdated, &rec.NextUpdate)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, &StoreError{Message: "failed to get record", Industry: industry, Cause: err}
	}

	if err := json.Unmarshal(salaryJSON, &rec.Insight.SalaryRanges); err != nil {
		return nil, &StoreError{Message: "failed to decode salary ranges", Industry: industry, Cause: err}
	}
	return &rec, nil
}

// FreshSince reports whether the industry was successfully updated at or
// after cutoff. Consulted at step start so a restarted run skips categories
// whose side effects already landed.
func (db *DB) FreshSince(ctx context.Context, industry string, cutoff time.Time) (bool, error) {
	var fresh bool
	err := db.pool.QueryRow(ctx,
		`SELECT last_updated >= $2 FROM industry_insights WHERE industry = $1`,
		industry, cutoff,
	).Scan(&fresh)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, &StoreError{Message: "failed to check freshness", Industry: industry, Cause: err}
	}
	return fresh, nil
}

// ListFreshness returns the freshness pair for every tracked industry.
func (db *DB) ListFreshness(ctx context.Context) ([]Freshness, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT industry, last_updated, next_update
		 FROM industry_insights ORDER BY last_updated`)
	if err != nil {
		return nil, &StoreError{Message: "failed to list freshness", Cause: err}
	}
	defer rows.Close()

	var result []Freshness
	for rows.Next() {
		var f Freshness
		if err := rows.Scan(&f.Industry, &f.LastUpdated, &f.NextUpdate); err != nil {
			return nil, &StoreError{Message: "failed to scan freshness", Cause: err}
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
