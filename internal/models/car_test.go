package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCar_Clean(t *testing.T) {
	blank, padded := "   ", "  Diesel "
	c := &Car{Brand: " Tata ", Model: "Nexon\t", Variant: &blank, FuelType: &padded}

	c.Clean()

	assert.Equal(t, "Tata", c.Brand)
	assert.Equal(t, "Nexon", c.Model)
	assert.Nil(t, c.Variant)
	require.NotNil(t, c.FuelType)
	assert.Equal(t, "Diesel", *c.FuelType)
	assert.Equal(t, "  Diesel ", padded, "caller's string must not change")
}

func TestCreateCarRequest_ToCar(t *testing.T) {
	price := 550000.0
	seats := 5
	req := &CreateCarRequest{Brand: "Honda", Model: "Amaze", Year: 2022, Price: &price, Seats: &seats}

	car := req.ToCar()

	assert.Equal(t, "Honda", car.Brand)
	assert.Equal(t, 2022, car.Year)
	assert.InDelta(t, 550000, car.Price, 0.001)
	assert.Equal(t, &seats, car.Seats)
	assert.Zero(t, car.ID)
}
