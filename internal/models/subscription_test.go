//go:build unit

package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rokyuddin/billping-api/internal/models"
)

func Test_MonthlyAmount(t *testing.T) {
	cases := []struct {
		name  string
		cycle string
		in    float64
		want  float64
	}{
		{"monthly unchanged", models.CycleMonthly, 10, 10},
		{"yearly spread over 12", models.CycleYearly, 120, 10},
		{"weekly counts 4.33 weeks", models.CycleWeekly, 10, 43.3},
		{"custom treated as monthly", models.CycleCustom, 15, 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := models.Subscription{BillingCycle: tc.cycle, Amount: tc.in}
			assert.InDelta(t, tc.want, sub.MonthlyAmount(), 0.0001)
		})
	}
}

func Test_CurrencySymbol(t *testing.T) {
	assert.Equal(t, "$", models.CurrencySymbol("USD"))
	assert.Equal(t, "€", models.CurrencySymbol("EUR"))
	assert.Equal(t, "£", models.CurrencySymbol("GBP"))
	assert.Equal(t, "৳", models.CurrencySymbol("BDT"))
	assert.Equal(t, "JPY ", models.CurrencySymbol("JPY"))
}

func Test_NotificationDefaults(t *testing.T) {
	var prefs models.Preferences

	// unset preferences mean email on, push off
	assert.True(t, prefs.EmailEnabled())
	assert.False(t, prefs.PushEnabled())

	off := false
	on := true
	prefs.Notifications.Email = &off
	prefs.Notifications.Push = &on

	assert.False(t, prefs.EmailEnabled())
	assert.True(t, prefs.PushEnabled())
}
