package carquery

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// MongoFilter строит документ запроса MongoDB из фильтров o.
// Текстовые значения экранируются перед подстановкой в регистронезависимое регулярное выражение.
func MongoFilter(o Options) bson.D {
	filter := bson.D{}

	if o.Brand != "" {
		filter = append(filter, bson.E{Key: "brand", Value: containsRegex(o.Brand)})
	}
	if o.PriceMin != nil || o.PriceMax != nil {
		price := bson.D{}
		if o.PriceMin != nil {
			price = append(price, bson.E{Key: "$gte", Value: *o.PriceMin})
		}
		if o.PriceMax != nil {
			price = append(price, bson.E{Key: "$lte", Value: *o.PriceMax})
		}
		filter = append(filter, bson.E{Key: "price", Value: price})
	}
	if o.Year != nil {
		filter = append(filter, bson.E{Key: "year", Value: *o.Year})
	}
	if o.FuelType != "" {
		filter = append(filter, bson.E{Key: "fuel_type", Value: containsRegex(o.FuelType)})
	}
	if o.Transmission != "" {
		filter = append(filter, bson.E{Key: "transmission", Value: containsRegex(o.Transmission)})
	}
	if o.BodyType != "" {
		filter = append(filter, bson.E{Key: "body_type", Value: containsRegex(o.BodyType)})
	}
	if o.Search != "" {
		re := containsRegex(o.Search)
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "brand", Value: re}},
			bson.D{{Key: "model", Value: re}},
			bson.D{{Key: "variant", Value: re}},
		}})
	}
	return filter
}

// MongoSort возвращает документ сортировки для o, при равенстве сортирует по _id.
func MongoSort(o Options) bson.D {
	field, ok := sortFields[o.SortBy]
	if !ok {
		field = sortFields[SortCreatedAt]
	}
	dir := -1
	if o.SortOrder == OrderAsc {
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}
