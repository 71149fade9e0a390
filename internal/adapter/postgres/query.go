package postgres

import (
	"strconv"
	"strings"

	"bikemarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

// maxRows bounds every list query regardless of what the caller asks for.
const maxRows = 100

const listingColumns = `l.id, l.owner_id, a.name AS owner_name, l.title, l.price, l.color, l.type,
	l.model_year, l.gear_type, l.brake_type, l.weight, l.condition, l.target_audience, l.material,
	l.brand, l.location, l.description, l.image_ref, l.created_at`

const listingFrom = " FROM listings l LEFT JOIN accounts a ON a.id = l.owner_id"

// predicateColumns is the whitelist of columns a predicate may touch. Nullable
// columns compare as the zero value they read back as, never as NULL.
var predicateColumns = map[domain.Field]string{
	domain.FieldBrand:     "COALESCE(l.brand, '')",
	domain.FieldType:      "COALESCE(l.type, '')",
	domain.FieldColor:     "COALESCE(l.color, '')",
	domain.FieldLocation:  "COALESCE(l.location, '')",
	domain.FieldPrice:     "l.price",
	domain.FieldModelYear: "COALESCE(l.model_year, 0)",
	domain.FieldCondition: "COALESCE(l.condition, '')",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereClause compiles predicates into a WHERE clause with '?' placeholders.
// Values only ever travel as arguments.
func whereClause(preds []domain.Predicate) (string, []any, error) {
	if len(preds) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	for _, p := range preds {
		if err := p.Validate(); err != nil {
			return "", nil, err
		}
		col, ok := predicateColumns[p.Field]
		if !ok {
			return "", nil, domain.NewValidationError(domain.ReasonInvalidFilter, string(p.Field))
		}

		switch p.Op {
		case domain.OpContainsFold:
			conds = append(conds, col+" ILIKE ?")
			args = append(args, "%"+likeEscaper.Replace(p.Value.(string))+"%")
		case domain.OpEqualFold:
			conds = append(conds, col+" ILIKE ?")
			args = append(args, likeEscaper.Replace(p.Value.(string)))
		case domain.OpEqual:
			conds = append(conds, col+" = ?")
			args = append(args, p.Value)
		case domain.OpLessOrEqual:
			conds = append(conds, col+" <= ?")
			args = append(args, p.Value)
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// searchQuery builds the newest-first catalog query. The limit is the only
// value formatted into the text and is clamped first.
func searchQuery(preds []domain.Predicate, limit int) (string, []any, error) {
	where, args, err := whereClause(preds)
	if err != nil {
		return "", nil, err
	}
	q := "SELECT " + listingColumns + listingFrom + where +
		" ORDER BY l.created_at DESC, l.id DESC LIMIT " + strconv.Itoa(clampRows(limit))
	return sqlx.Rebind(sqlx.DOLLAR, q), args, nil
}

func clampRows(limit int) int {
	if limit <= 0 || limit > maxRows {
		return maxRows
	}
	return limit
}
