package store

import (
	"fmt"
	"slices"
	"strings"

	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

// AccountQuery defines optional filters for account listings.
type AccountQuery struct {
	OwnerUserID *string
	Statuses    []domain.AccountStatus
	Label       *string // case-insensitive substring
	Limit       int     // default 50
	Offset      int
	OrderBy     string // "created_at", "expires_at", "label"
}

const (
	defaultLimit = 50
	maxLimit     = 500

	orderByCreated = "created_at"
	orderByExpires = "expires_at"
	orderByLabel   = "label"
)

// validOrderBy maps allowed OrderBy values to their SQL column expressions.
var validOrderBy = map[string]string{
	orderByCreated: "created_at DESC",
	orderByExpires: "expires_at ASC",
	orderByLabel:   "label ASC",
}

const defaultOrderBy = "created_at DESC"

const accountColumns = `id, owner_user_id, label, external_account_id, external_username,
	access_token, refresh_token, expires_at, granted_scopes, user_selected_scopes,
	status, last_used_at, created_at, updated_at`

const baseAccountsSelect = "SELECT " + accountColumns + "\nFROM seller_accounts"

const countAccountsSelect = "SELECT COUNT(*) FROM seller_accounts"

// ToSQL builds the WHERE clause, ORDER BY, LIMIT, and OFFSET for an account
// query. It returns the data query, the count query, and their positional
// parameters.
func (q *AccountQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	if q.OwnerUserID != nil {
		conditions = append(conditions, fmt.Sprintf("owner_user_id = $%d", paramIdx))
		args = append(args, *q.OwnerUserID)
		paramIdx++
	}

	if len(q.Statuses) > 0 {
		placeholders := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			placeholders[i] = fmt.Sprintf("$%d", paramIdx)
			args = append(args, string(s))
			paramIdx++
		}
		conditions = append(conditions, fmt.Sprintf(
			"status IN (%s)", strings.Join(placeholders, ", "),
		))
	}

	if q.Label != nil {
		conditions = append(conditions, fmt.Sprintf("label ILIKE '%%' || $%d || '%%'", paramIdx))
		args = append(args, *q.Label)
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	orderClause := defaultOrderBy
	if col, ok := validOrderBy[q.OrderBy]; ok {
		orderClause = col
	}

	limit := q.EffectiveLimit()
	offset := max(q.Offset, 0)

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseAccountsSelect, whereClause, orderClause, limit, offset,
	)

	countSQL = countAccountsSelect + whereClause

	return dataSQL, countSQL, args
}

// EffectiveLimit is the page size the query runs with.
func (q *AccountQuery) EffectiveLimit() int {
	return clampLimit(q.Limit, defaultLimit, maxLimit)
}

// Matches reports whether a satisfies the query filters. Paging and ordering
// are not considered.
func (q *AccountQuery) Matches(a *domain.Account) bool {
	if q.OwnerUserID != nil && a.OwnerUserID != *q.OwnerUserID {
		return false
	}
	if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, a.Status) {
		return false
	}
	if q.Label != nil && !strings.Contains(strings.ToLower(a.Label), strings.ToLower(*q.Label)) {
		return false
	}
	return true
}

// less orders accounts the same way ToSQL's ORDER BY does.
func (q *AccountQuery) less(a, b *domain.Account) bool {
	switch q.OrderBy {
	case orderByExpires:
		return a.ExpiresAt.Before(b.ExpiresAt)
	case orderByLabel:
		return a.Label < b.Label
	default:
		return a.CreatedAt.After(b.CreatedAt)
	}
}
