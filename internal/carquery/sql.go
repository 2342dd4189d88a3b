package carquery

import (
	"fmt"
	"strings"
)

// likeEscaper экранирует метасимволы LIKE, чтобы ввод пользователя сравнивался буквально.
// В PostgreSQL символ экранирования LIKE по умолчанию обратный слеш.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern возвращает шаблон ILIKE, находящий s в любом месте значения.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// Predicate это параметризованное условие WHERE с позиционными плейсхолдерами ($n).
type Predicate struct {
	Where string
	Args  []any
}

// BuildPredicate строит тело условия WHERE для PostgreSQL из фильтров o.
// Без фильтров условие равно "TRUE".
func BuildPredicate(o Options) Predicate {
	var (
		clauses []string
		args    []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if o.Brand != "" {
		clauses = append(clauses, "brand ILIKE "+next(ContainsPattern(o.Brand)))
	}
	if o.PriceMin != nil {
		clauses = append(clauses, "price >= "+next(*o.PriceMin))
	}
	if o.PriceMax != nil {
		clauses = append(clauses, "price <= "+next(*o.PriceMax))
	}
	if o.Year != nil {
		clauses = append(clauses, "year = "+next(*o.Year))
	}
	if o.FuelType != "" {
		clauses = append(clauses, "fuel_type ILIKE "+next(ContainsPattern(o.FuelType)))
	}
	if o.Transmission != "" {
		clauses = append(clauses, "transmission ILIKE "+next(ContainsPattern(o.Transmission)))
	}
	if o.BodyType != "" {
		clauses = append(clauses, "body_type ILIKE "+next(ContainsPattern(o.BodyType)))
	}
	if o.Search != "" {
		p := next(ContainsPattern(o.Search))
		clauses = append(clauses, fmt.Sprintf("(brand ILIKE %[1]s OR model ILIKE %[1]s OR variant ILIKE %[1]s)", p))
	}

	if len(clauses) == 0 {
		return Predicate{Where: "TRUE"}
	}
	return Predicate{Where: strings.Join(clauses, " AND "), Args: args}
}

// OrderBy возвращает тело ORDER BY для o.
// При равенстве поля сортировки порядок задает id в том же направлении, страницы стабильны.
func OrderBy(o Options) string {
	field, ok := sortFields[o.SortBy]
	if !ok {
		field = sortFields[SortCreatedAt]
	}
	dir := "DESC"
	if o.SortOrder == OrderAsc {
		dir = "ASC"
	}
	return field + " " + dir + ", id " + dir
}

// CountQuery возвращает запрос, считающий строки table, подходящие под o.
func CountQuery(table string, o Options) (string, []any) {
	p := BuildPredicate(o)
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, p.Where), p.Args
}

// PageQuery возвращает запрос, выбирающий columns для страницы o.
func PageQuery(table, columns string, o Options) (string, []any) {
	p := BuildPredicate(o)
	args := append(p.Args, o.Limit, o.Offset())
	n := len(p.Args)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		columns, table, p.Where, OrderBy(o), n+1, n+2)
	return query, args
}
