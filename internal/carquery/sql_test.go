package carquery_test

import (
	"testing"

	"github.com/maynagashev/autoassist/internal/carquery"
	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%Maruti%", carquery.ContainsPattern("Maruti"))
	assert.Equal(t, `%100\%%`, carquery.ContainsPattern("100%"))
	assert.Equal(t, `%a\_b%`, carquery.ContainsPattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, carquery.ContainsPattern(`c:\dir`))
}

func TestBuildPredicate_NoFilters(t *testing.T) {
	p := carquery.BuildPredicate(carquery.Options{}.Normalize())
	assert.Equal(t, "TRUE", p.Where)
	assert.Empty(t, p.Args)
}

func TestBuildPredicate(t *testing.T) {
	tests := []struct {
		name  string
		opts  carquery.Options
		where string
		args  []any
	}{
		{
			name:  "brand substring",
			opts:  carquery.Options{Brand: "Maru"},
			where: "brand ILIKE $1",
			args:  []any{"%Maru%"},
		},
		{
			name:  "price range",
			opts:  carquery.Options{PriceMin: ptrFloat(500000), PriceMax: ptrFloat(1000000)},
			where: "price >= $1 AND price <= $2",
			args:  []any{500000.0, 1000000.0},
		},
		{
			name:  "search and year",
			opts:  carquery.Options{Search: "swift", Year: ptrInt(2020)},
			where: "year = $1 AND (brand ILIKE $2 OR model ILIKE $2 OR variant ILIKE $2)",
			args:  []any{2020, "%swift%"},
		},
		{
			name: "all filters",
			opts: carquery.Options{
				Brand:        "Tata",
				PriceMin:     ptrFloat(1),
				PriceMax:     ptrFloat(2),
				Year:         ptrInt(2019),
				FuelType:     "Diesel",
				Transmission: "Manual",
				BodyType:     "SUV",
				Search:       "nex",
			},
			where: "brand ILIKE $1 AND price >= $2 AND price <= $3 AND year = $4 AND fuel_type ILIKE $5" +
				" AND transmission ILIKE $6 AND body_type ILIKE $7" +
				" AND (brand ILIKE $8 OR model ILIKE $8 OR variant ILIKE $8)",
			args: []any{"%Tata%", 1.0, 2.0, 2019, "%Diesel%", "%Manual%", "%SUV%", "%nex%"},
		},
		{
			name:  "metacharacters match literally",
			opts:  carquery.Options{Search: "50%_off"},
			where: "(brand ILIKE $1 OR model ILIKE $1 OR variant ILIKE $1)",
			args:  []any{`%50\%\_off%`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := carquery.BuildPredicate(tt.opts.Normalize())
			assert.Equal(t, tt.where, p.Where)
			assert.Equal(t, tt.args, p.Args)
		})
	}
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		name string
		opts carquery.Options
		want string
	}{
		{name: "default", opts: carquery.Options{}, want: "created_at DESC, id DESC"},
		{name: "price ascending", opts: carquery.Options{SortBy: "price", SortOrder: "asc"}, want: "price ASC, id ASC"},
		{name: "year descending", opts: carquery.Options{SortBy: "year", SortOrder: "DESC"}, want: "year DESC, id DESC"},
		{name: "injection attempt", opts: carquery.Options{SortBy: "price; DROP TABLE cars"}, want: "created_at DESC, id DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, carquery.OrderBy(tt.opts.Normalize()))
		})
	}
}

func TestCountAndPageQuery(t *testing.T) {
	o := carquery.Options{Brand: "Honda", Page: 2, Limit: 5, SortBy: "price", SortOrder: "asc"}.Normalize()

	count, countArgs := carquery.CountQuery("cars", o)
	assert.Equal(t, "SELECT COUNT(*) FROM cars WHERE brand ILIKE $1", count)
	assert.Equal(t, []any{"%Honda%"}, countArgs)

	page, pageArgs := carquery.PageQuery("cars", "id, brand", o)
	assert.Equal(t, "SELECT id, brand FROM cars WHERE brand ILIKE $1 ORDER BY price ASC, id ASC LIMIT $2 OFFSET $3", page)
	assert.Equal(t, []any{"%Honda%", 5, 5}, pageArgs)
}
