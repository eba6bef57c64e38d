package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Taller-api/internal/application/dto"
)

func TestNormalizeID(t *testing.T) {
	const canonical = "8f0c6f0e-3d55-4b8e-9a51-0c6a4d1f0005"
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"canónico", canonical, canonical},
		{"mayúsculas", "8F0C6F0E-3D55-4B8E-9A51-0C6A4D1F0005", canonical},
		{"entre llaves", "{" + canonical + "}", canonical},
		{"urn", "urn:uuid:" + canonical, canonical},
		{"espacios", "  " + canonical + " ", canonical},
		{"no es uuid", " p1 ", "p1"},
		{"vacío", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dto.NormalizeID(tt.in))
		})
	}
}
