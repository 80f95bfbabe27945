package service

import (
	"testing"

	"github.com/groupbuy-next/internal/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestCalculateCommissionRounding(t *testing.T) {
	cases := []struct {
		total string
		rate  string
		want  string
	}{
		{"100.00", "12.00", "12.00"},
		{"33.33", "10.00", "3.33"},
		{"200.00", "15.00", "30.00"},
		{"0.05", "10.00", "0.01"},
		{"99.99", "12.50", "12.50"},
		{"0.00", "12.00", "0.00"},
	}
	for _, tc := range cases {
		got := CalculateCommission(models.MustMoney(tc.total), models.MustMoney(tc.rate))
		if got.StringFixed(2) != tc.want {
			t.Fatalf("commission %s x %s%% want %s got %s", tc.total, tc.rate, tc.want, got.StringFixed(2))
		}
	}
}

func TestCalculateCommissionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	// 以分和万分比为整数，按四舍五入手算结果
	properties.Property("matches integer half-up rounding", prop.ForAll(
		func(totalCents int64, rateBasisPoints int64) bool {
			total := models.NewMoneyFromDecimal(decimal.New(totalCents, -2))
			rate := models.NewMoneyFromDecimal(decimal.New(rateBasisPoints, -2))
			got := CalculateCommission(total, rate)

			expectedCents := (totalCents*rateBasisPoints + 5000) / 10000
			return got.Equal(decimal.New(expectedCents, -2))
		},
		gen.Int64Range(0, 10_000_000),
		gen.Int64Range(0, 10_000),
	))

	properties.Property("is deterministic and has at most two decimals", prop.ForAll(
		func(totalCents int64, rateBasisPoints int64) bool {
			total := models.NewMoneyFromDecimal(decimal.New(totalCents, -2))
			rate := models.NewMoneyFromDecimal(decimal.New(rateBasisPoints, -2))
			first := CalculateCommission(total, rate)
			second := CalculateCommission(total, rate)
			return first.Equal(second.Decimal) && first.Equal(first.Round(2))
		},
		gen.Int64Range(0, 10_000_000),
		gen.Int64Range(0, 10_000),
	))

	properties.Property("never exceeds order total", prop.ForAll(
		func(totalCents int64, rateBasisPoints int64) bool {
			total := models.NewMoneyFromDecimal(decimal.New(totalCents, -2))
			rate := models.NewMoneyFromDecimal(decimal.New(rateBasisPoints, -2))
			return CalculateCommission(total, rate).LessThanOrEqual(total.Decimal)
		},
		gen.Int64Range(0, 10_000_000),
		gen.Int64Range(0, 10_000),
	))

	properties.TestingRun(t)
}
