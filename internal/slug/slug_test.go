package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Node Developer", "node-developer"},
		{"  Senior   Go Engineer  ", "senior-go-engineer"},
		{"C++ / Rust dev", "c-rust-dev"},
		{"Café Manager", "cafe-manager"},
		{"Ingeniero de Señales", "ingeniero-de-senales"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}
