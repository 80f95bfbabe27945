package shared

import (
	"encoding/json"
	"strings"

	"github.com/groupbuy-next/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// 金额校验 tag
const (
	TagMoneyPositive = "money_positive"
	TagDecimal2      = "decimal2"
)

// RegisterValidators 注册金额相关的绑定校验
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation(TagMoneyPositive, validateMoneyPositive); err != nil {
		return err
	}
	return v.RegisterValidation(TagDecimal2, validateDecimal2)
}

func validateMoneyPositive(fl validator.FieldLevel) bool {
	amount, ok := parseDecimal2(fieldText(fl))
	return ok && amount.IsPositive()
}

func validateDecimal2(fl validator.FieldLevel) bool {
	_, ok := parseDecimal2(fieldText(fl))
	return ok
}

func fieldText(fl validator.FieldLevel) string {
	field := fl.Field()
	if number, ok := field.Interface().(json.Number); ok {
		return number.String()
	}
	return field.String()
}

// parseDecimal2 最多两位小数
func parseDecimal2(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	if parsed.Exponent() < -2 && !parsed.Equal(parsed.Round(2)) {
		return decimal.Zero, false
	}
	return parsed, true
}

// ParseMoneyNumber 把已通过校验的请求金额转为 Money
func ParseMoneyNumber(raw json.Number) (models.Money, bool) {
	parsed, ok := parseDecimal2(raw.String())
	if !ok {
		return models.ZeroMoney(), false
	}
	return models.NewMoneyFromDecimal(parsed.Round(2)), true
}

// ParseOptionalMoneyNumber 可选金额，缺失时返回 nil
func ParseOptionalMoneyNumber(raw *json.Number) (*models.Money, bool) {
	if raw == nil {
		return nil, true
	}
	parsed, ok := ParseMoneyNumber(*raw)
	if !ok {
		return nil, false
	}
	return &parsed, true
}
