package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const basePrice = 500000

var brandMultipliers = map[string]float64{
	"Maruti Suzuki": 1.0,
	"Hyundai":       1.2,
	"Tata":          1.1,
	"Mahindra":      1.3,
	"Kia":           1.4,
	"Honda":         1.5,
	"Toyota":        1.6,
	"Volkswagen":    1.7,
	"Skoda":         1.7,
	"BMW":           3.0,
	"Mercedes-Benz": 3.5,
	"Audi":          3.2,
	"Jaguar":        4.0,
	"Land Rover":    4.5,
}

var bodyTypeMultipliers = map[string]float64{
	"Hatchback":     1.0,
	"Sedan":         1.3,
	"SUV":           1.8,
	"Mini SUV":      1.2,
	"Compact SUV":   1.5,
	"Mid-size SUV":  2.0,
	"Full-size SUV": 2.5,
	"Coupe":         2.2,
	"Convertible":   2.8,
	"MPV":           1.6,
}

var segmentMultipliers = map[string]float64{
	"A-Segment": 0.8,
	"B-Segment": 1.0,
	"C-Segment": 1.4,
	"D-Segment": 1.8,
	"E-Segment": 2.5,
	"F-Segment": 3.0,
}

var seatsByBodyType = map[string]int{
	"Hatchback":     5,
	"Sedan":         5,
	"SUV":           7,
	"Mini SUV":      5,
	"Compact SUV":   5,
	"Mid-size SUV":  7,
	"Full-size SUV": 7,
	"MPV":           7,
	"Coupe":         4,
	"Convertible":   4,
}

const defaultSeats = 5

// Attributes содержит поля строки таблицы характеристик, нужные для оценок.
type Attributes struct {
	Brand        string
	Model        string
	Variant      string
	BodyType     string
	Segment      string
	EngineCC     float64
	PowerBHP     float64
	Mileage      string
	Transmission string
	EmissionStd  string
	AdBlue       string
}

func multiplier(m map[string]float64, key string) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return 1.0
}

// EstimatePrice рассчитывает цену в INR для наборов данных, где ее нет.
func EstimatePrice(s Attributes) float64 {
	price := float64(basePrice)
	price *= multiplier(brandMultipliers, s.Brand)
	price *= multiplier(bodyTypeMultipliers, s.BodyType)

	switch {
	case s.EngineCC > 2000:
		price *= 1.5
	case s.EngineCC > 1500:
		price *= 1.3
	case s.EngineCC > 1000:
		price *= 1.1
	}

	switch {
	case s.PowerBHP > 200:
		price *= 1.4
	case s.PowerBHP > 150:
		price *= 1.2
	case s.PowerBHP > 100:
		price *= 1.1
	}

	price *= multiplier(segmentMultipliers, s.Segment)
	return math.Round(price)
}

// FuelType определяет топливо по данным о выбросах, иначе по объему двигателя.
func FuelType(s Attributes) string {
	switch {
	case s.AdBlue == "Yes":
		return "Diesel"
	case strings.Contains(s.EmissionStd, "CNG"):
		return "CNG"
	case s.EngineCC > 1500:
		return "Diesel"
	default:
		return "Petrol"
	}
}

// Seats возвращает типичное число мест для типа кузова.
func Seats(s Attributes) int {
	if n, ok := seatsByBodyType[s.BodyType]; ok {
		return n
	}
	return defaultSeats
}

// Description формирует короткое рекламное описание.
func Description(s Attributes) string {
	name := strings.Join(strings.Fields(s.Brand+" "+s.Model+" "+s.Variant), " ")
	body := strings.ToLower(s.BodyType)
	if body == "" {
		body = "car"
	}
	return fmt.Sprintf(
		"%s is a %s powered by a %s cc engine producing %s bhp. "+
			"It offers %s kmpl mileage with %s transmission. "+
			"Features include modern infotainment system and safety features.",
		name, body, formatNumber(s.EngineCC), formatNumber(s.PowerBHP), orUnknown(s.Mileage), orUnknown(s.Transmission),
	)
}

func formatNumber(f float64) string {
	if f == 0 {
		return "unknown"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
