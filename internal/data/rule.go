package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
	"github.com/pagereply/pagereply/internal/biz/repo"
)

// ruleRepo implements the Rule repository over sqlite
type ruleRepo struct {
	db *sql.DB
}

// NewRuleRepo creates a rule repository
func NewRuleRepo(db *sql.DB) repo.RuleRepo {
	return &ruleRepo{db: db}
}

const ruleColumns = `id, owner_id, page_id, keyword, response, priority, match_type, case_sensitive, active, created_at`

// ListActive returns active rules in evaluation order: priority
// descending, then keyword length descending so longer keywords win ties
func (r *ruleRepo) ListActive(ctx context.Context, ownerID int64, pageID string) ([]*domain.Rule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM rules
		WHERE owner_id = ? AND page_id = ? AND active = 1
		ORDER BY priority DESC, LENGTH(keyword) DESC
	`, ownerID, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// List returns all rules for an (owner, page) pair, newest first
func (r *ruleRepo) List(ctx context.Context, ownerID int64, pageID string) ([]*domain.Rule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM rules
		WHERE owner_id = ? AND page_id = ?
		ORDER BY created_at DESC
	`, ownerID, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// Create inserts a rule
func (r *ruleRepo) Create(ctx context.Context, rule *domain.Rule) (int64, error) {
	if rule.MatchType == "" {
		rule.MatchType = domain.MatchContains
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO rules (owner_id, page_id, keyword, response, priority, match_type, case_sensitive, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rule.OwnerID,
		rule.PageID,
		rule.Keyword,
		rule.Response,
		rule.Priority,
		string(rule.MatchType),
		boolToInt(rule.CaseSensitive),
		boolToInt(rule.Active),
		rule.CreatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create rule: %w", err)
	}
	return result.LastInsertId()
}

// Delete removes a rule owned by the given user
func (r *ruleRepo) Delete(ctx context.Context, id, ownerID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

// CountActive counts active rules for an owner
func (r *ruleRepo) CountActive(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rules WHERE owner_id = ? AND active = 1
	`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rules: %w", err)
	}
	return count, nil
}

func scanRules(rows *sql.Rows) ([]*domain.Rule, error) {
	var rules []*domain.Rule
	for rows.Next() {
		var rule domain.Rule
		var matchType string
		var caseSensitive, active int
		var createdAt int64
		if err := rows.Scan(
			&rule.ID,
			&rule.OwnerID,
			&rule.PageID,
			&rule.Keyword,
			&rule.Response,
			&rule.Priority,
			&matchType,
			&caseSensitive,
			&active,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rule.MatchType = domain.MatchType(matchType)
		rule.CaseSensitive = caseSensitive != 0
		rule.Active = active != 0
		rule.CreatedAt = time.Unix(createdAt, 0)
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
