package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForQuantity(t *testing.T) {
	cases := []struct {
		quantity int
		want     Status
	}{
		{quantity: -3, want: StatusLowStock},
		{quantity: 0, want: StatusLowStock},
		{quantity: 4, want: StatusLowStock},
		{quantity: 5, want: StatusNominal},
		{quantity: 10, want: StatusNominal},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusForQuantity(tc.quantity), "quantity %d", tc.quantity)
	}
}
