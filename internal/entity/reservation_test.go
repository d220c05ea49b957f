package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatus(t *testing.T) {
	tests := []struct {
		status     ReservationStatus
		terminal   bool
		holdsSeats bool
	}{
		{status: ReservationStatusPending, terminal: false, holdsSeats: true},
		{status: ReservationStatusConfirmed, terminal: false, holdsSeats: true},
		{status: ReservationStatusCancelled, terminal: true, holdsSeats: false},
		{status: ReservationStatusExpired, terminal: true, holdsSeats: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.holdsSeats, tt.status.HoldsSeats())
		})
	}
}
