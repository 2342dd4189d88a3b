package importer

import (
	"strconv"
	"strings"

	"github.com/maynagashev/autoassist/internal/models"
)

// transformedMarker определяет раскладку таблицы характеристик.
const transformedMarker = "Identification_Brand"

// MapRows превращает строки листа в запросы на создание автомобилей. Строки без марки, модели
// или года (и цены для простой раскладки) отбрасываются.
func MapRows(rows []Row) []models.CreateCarRequest {
	out := make([]models.CreateCarRequest, 0, len(rows))
	for _, row := range rows {
		var (
			req models.CreateCarRequest
			ok  bool
		)
		if row.Get(transformedMarker) != "" {
			req, ok = mapTransformed(row)
		} else {
			req, ok = mapPlain(row)
		}
		if ok {
			out = append(out, req)
		}
	}
	return out
}

func mapTransformed(row Row) (models.CreateCarRequest, bool) {
	attrs := Attributes{
		Brand:        row.Get("Identification_Brand"),
		Model:        row.Get("Identification_Model"),
		Variant:      row.Get("Identification_Variant"),
		BodyType:     row.Get("Identification_Body_Type"),
		Segment:      row.Get("Identification_Segment"),
		EngineCC:     parseNumber(row.Get("Engine_Engine_Displacement_cc")),
		PowerBHP:     parseNumber(row.Get("Engine_Power_bhp")),
		Mileage:      row.Get("Fuel_&_Emissions_Mileage_ARAI,_kmpl"),
		Transmission: row.Get("Transmission_Transmission_Type"),
		EmissionStd:  row.Get("Fuel_&_Emissions_Emission_Standard"),
		AdBlue:       row.Get("Fuel_&_Emissions_AdBlue_System"),
	}
	year, hasYear := parseInt(row.Get("Identification_Year_of_Manufacture"))
	if attrs.Brand == "" || attrs.Model == "" || !hasYear {
		return models.CreateCarRequest{}, false
	}

	price := EstimatePrice(attrs)
	seats := Seats(attrs)
	return models.CreateCarRequest{
		Brand:        attrs.Brand,
		Model:        attrs.Model,
		Variant:      optional(attrs.Variant),
		Year:         year,
		Price:        &price,
		FuelType:     optional(FuelType(attrs)),
		Transmission: optional(attrs.Transmission),
		Mileage:      withUnit(attrs.Mileage, "kmpl"),
		EngineCC:     withUnit(row.Get("Engine_Engine_Displacement_cc"), "cc"),
		PowerBHP:     withUnit(row.Get("Engine_Power_bhp"), "bhp"),
		Seats:        &seats,
		BodyType:     optional(attrs.BodyType),
		ImageURL:     optional(row.Get("Image_URL")),
		Description:  optional(Description(attrs)),
	}, true
}

func mapPlain(row Row) (models.CreateCarRequest, bool) {
	brand := row.Get("Brand", "brand", "BRAND")
	model := row.Get("Model", "model", "MODEL")
	year, hasYear := parseInt(row.Get("Year", "year", "YEAR"))
	price, hasPrice := parsePrice(row.Get("Price", "price", "PRICE"))
	if brand == "" || model == "" || !hasYear || !hasPrice {
		return models.CreateCarRequest{}, false
	}

	req := models.CreateCarRequest{
		Brand:        brand,
		Model:        model,
		Variant:      optional(row.Get("Variant", "variant", "VARIANT")),
		Year:         year,
		Price:        &price,
		FuelType:     optional(row.Get("Fuel Type", "Fuel_Type", "fuel_type", "FUEL_TYPE")),
		Transmission: optional(row.Get("Transmission", "transmission", "TRANSMISSION")),
		Mileage:      optional(row.Get("Mileage", "mileage", "MILEAGE")),
		EngineCC:     optional(row.Get("Engine CC", "Engine_CC", "engine_cc", "ENGINE_CC")),
		PowerBHP:     optional(row.Get("Power BHP", "Power_BHP", "power_bhp", "POWER_BHP")),
		BodyType:     optional(row.Get("Body Type", "Body_Type", "body_type", "BODY_TYPE")),
		ImageURL:     optional(row.Get("Image URL", "Image_URL", "image_url", "IMAGE_URL")),
		Description:  optional(row.Get("Description", "description", "DESCRIPTION")),
	}
	if seats, ok := parseInt(row.Get("Seats", "seats", "SEATS")); ok {
		req.Seats = &seats
	}
	return req, true
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func withUnit(v, unit string) *string {
	if v == "" {
		return nil
	}
	s := v + " " + unit
	return &s
}

// parsePrice допускает разделители тысяч, например "1,250,000".
func parsePrice(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseInt допускает целые float вроде "2020.0" из числовых ячеек.
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func parseNumber(s string) float64 {
	f, _ := parsePrice(s)
	return f
}
