package validation

import (
	"errors"
	"testing"

	"natillera-miahorro/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Documento string `json:"documento" validate:"required"`
	Correo    string `json:"correo" validate:"omitempty,email"`
	Telefono  string `json:"telefono" validate:"phone"`
	Estado    string `json:"estado" validate:"omitempty,oneof=ACTIVO INHABILITADO"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{Documento: "123", Telefono: "300 123 4567"}))

	err := Struct(sample{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, "El campo documento es obligatorio", err.Error())

	err = Struct(sample{Documento: "1", Correo: "nope"})
	assert.Equal(t, "El campo correo no es un correo válido", err.Error())

	err = Struct(sample{Documento: "1", Telefono: "abc"})
	assert.Equal(t, "El campo telefono no es un teléfono válido", err.Error())

	err = Struct(sample{Documento: "1", Estado: "OTRO"})
	assert.Equal(t, "El campo estado debe ser uno de: ACTIVO INHABILITADO", err.Error())
}
