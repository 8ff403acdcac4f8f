package repository

import (
	"fmt"
	"strings"

	"github.com/localhands/marketplace-api/internal/search"
)

type searchQuery struct {
	listSQL   string
	listArgs  []any
	countSQL  string
	countArgs []any
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildSearchQuery composes the page and count statements for criteria. Only supplied
// filters become clauses; both statements share the same predicate.
func buildSearchQuery(c search.Criteria) searchQuery {
	clauses := []string{"1=1"}
	args := []any{}
	queryArg := 0

	if c.Query != "" {
		args = append(args, "%"+likeEscaper.Replace(c.Query)+"%")
		queryArg = len(args)
		clauses = append(clauses, fmt.Sprintf("(sl.service_name ILIKE $%d OR sl.description ILIKE $%d)", queryArg, queryArg))
	}
	if c.Category != "" {
		args = append(args, string(c.Category))
		clauses = append(clauses, fmt.Sprintf("sl.category=$%d", len(args)))
	}
	if c.City != "" {
		args = append(args, "%"+likeEscaper.Replace(c.City)+"%")
		clauses = append(clauses, fmt.Sprintf("sl.location_city ILIKE $%d", len(args)))
	}
	if c.Zip != "" {
		args = append(args, likeEscaper.Replace(c.Zip)+"%")
		clauses = append(clauses, fmt.Sprintf("sl.location_zip LIKE $%d", len(args)))
	}
	if c.MinPrice != nil {
		args = append(args, *c.MinPrice)
		clauses = append(clauses, fmt.Sprintf("sl.price >= $%d", len(args)))
	}
	if c.MaxPrice != nil {
		args = append(args, *c.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("sl.price <= $%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")
	countArgs := append([]any{}, args...)

	var order string
	switch {
	case c.Sort == search.SortPriceAsc:
		order = "sl.price ASC, sl.created_at DESC, sl.id DESC"
	case c.Sort == search.SortPriceDesc:
		order = "sl.price DESC, sl.created_at DESC, sl.id DESC"
	case c.RanksByText():
		args = append(args, c.Query)
		order = fmt.Sprintf(`CASE
                WHEN LOWER(sl.service_name) = LOWER($%d) THEN 1
                WHEN sl.service_name ILIKE $%d THEN 2
                WHEN sl.description ILIKE $%d THEN 3
                ELSE 4
            END, sl.created_at DESC, sl.id DESC`, len(args), queryArg, queryArg)
	default:
		order = "sl.created_at DESC, sl.id DESC"
	}

	listSQL := fmt.Sprintf(`SELECT %s, u.username
        FROM service_listings sl
        JOIN users u ON u.id = sl.provider_id
        WHERE %s
        ORDER BY %s
        LIMIT %d OFFSET %d`, listingColumns, where, order, c.Limit, c.Offset())

	countSQL := fmt.Sprintf(`SELECT COUNT(*)
        FROM service_listings sl
        JOIN users u ON u.id = sl.provider_id
        WHERE %s`, where)

	return searchQuery{listSQL: listSQL, listArgs: args, countSQL: countSQL, countArgs: countArgs}
}
