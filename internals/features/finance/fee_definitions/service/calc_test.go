package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"schoolfee_backend/internals/features/finance/fee_definitions/model"
	"schoolfee_backend/internals/helpers/apperror"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEffectiveAmountByMethod(t *testing.T) {
	flat := model.FeeDefinitionModel{FeeDefinitionBaseAmount: d("12000"), FeeDefinitionCalculationMethod: model.CalculationFlat}
	got, err := EffectiveAmount(flat, d("3"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("12000")))

	perUnit := model.FeeDefinitionModel{FeeDefinitionBaseAmount: d("250.50"), FeeDefinitionCalculationMethod: model.CalculationPerUnit}
	got, err = EffectiveAmount(perUnit, d("4"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("1002")))

	got, err = EffectiveAmount(perUnit, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, got.Equal(d("250.5")), "units default to 1")

	formula := model.FeeDefinitionModel{
		FeeDefinitionCode:              "lab",
		FeeDefinitionBaseAmount:        d("1000"),
		FeeDefinitionCalculationMethod: model.CalculationFormula,
		FeeDefinitionMetadata:          datatypes.JSONMap{"formula": "base_amount * 0.9 + units * 50"},
	}
	got, err = EffectiveAmount(formula, d("2"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("1000")), got.String())
}

func TestEffectiveAmountRejectsNegativeAndBadFormula(t *testing.T) {
	neg := model.FeeDefinitionModel{
		FeeDefinitionBaseAmount:        d("100"),
		FeeDefinitionCalculationMethod: model.CalculationFormula,
		FeeDefinitionMetadata:          datatypes.JSONMap{"formula": "base_amount - 500"},
	}
	_, err := EffectiveAmount(neg, d("1"))
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)

	bad := neg
	bad.FeeDefinitionMetadata = datatypes.JSONMap{"formula": "base_amount * ("}
	_, err = EffectiveAmount(bad, d("1"))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	missing := neg
	missing.FeeDefinitionMetadata = nil
	_, err = EffectiveAmount(missing, d("1"))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestEvaluateFormulaKeepsCentPrecision(t *testing.T) {
	got, err := EvaluateFormula("base_amount * 0.1 + base_amount * 0.2", d("100.10"), d("1"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("30.03")), got.String())

	got, err = EvaluateFormula("base_amount * units", d("999999999.99"), d("1000"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("999999999990")), got.String())

	for _, f := range []string{"base_amount / 0", "base_amount * 10000000000000"} {
		_, err := EvaluateFormula(f, d("100"), d("1"))
		assert.ErrorIs(t, err, apperror.ErrValidation, f)
	}
}

func TestDeriveTemplatesFromFrequency(t *testing.T) {
	monthly := DeriveTemplates(model.FrequencyMonthly)
	require.Len(t, monthly, 12)
	assert.Equal(t, 0, monthly[0].DueOffsetMonths)
	assert.Equal(t, 11, monthly[11].DueOffsetMonths)

	term := DeriveTemplates(model.FrequencyTerm)
	require.Len(t, term, 3)
	assert.Equal(t, []int{0, 4, 8}, []int{term[0].DueOffsetMonths, term[1].DueOffsetMonths, term[2].DueOffsetMonths})

	assert.Len(t, DeriveTemplates(model.FrequencyYearly), 1)
	assert.Len(t, DeriveTemplates(model.FrequencyOneTime), 1)
}

func TestSplitAmountSumsExactly(t *testing.T) {
	third := decimal.NewFromInt(1).Div(decimal.NewFromInt(3))
	parts := SplitAmount(d("100"), []decimal.Decimal{third, third, third})
	require.Len(t, parts, 3)
	assert.True(t, parts[0].Equal(d("33.33")))
	assert.True(t, parts[1].Equal(d("33.33")))
	assert.True(t, parts[2].Equal(d("33.34")))

	sum := decimal.Zero
	for _, p := range SplitAmount(d("12000"), []decimal.Decimal{d("0.4"), d("0.3"), d("0.3")}) {
		sum = sum.Add(p)
	}
	assert.True(t, sum.Equal(d("12000")))
	assert.Nil(t, SplitAmount(d("10"), nil))
}

func TestSplitAmountSmallTotalNeverNegative(t *testing.T) {
	twelfth := decimal.NewFromInt(1).Div(decimal.NewFromInt(12))
	portions := make([]decimal.Decimal, 12)
	for i := range portions {
		portions[i] = twelfth
	}

	for _, total := range []string{"0.07", "0.11", "1.00", "0.01", "999.99"} {
		parts := SplitAmount(d(total), portions)
		require.Len(t, parts, 12)
		sum := decimal.Zero
		for i, p := range parts {
			assert.False(t, p.IsNegative(), "total %s part %d = %s", total, i, p)
			assert.True(t, p.Equal(p.Round(2)))
			sum = sum.Add(p)
		}
		assert.True(t, sum.Equal(d(total)), "total %s sum %s", total, sum)
	}

	parts := SplitAmount(d("0.07"), portions)
	for i := 0; i < 11; i++ {
		assert.True(t, parts[i].IsZero())
	}
	assert.True(t, parts[11].Equal(d("0.07")))

	parts = SplitAmount(d("100.05"), portions)
	assert.True(t, parts[0].Equal(d("8.33")))
	assert.True(t, parts[11].Equal(d("8.42")))
}

func TestSplitAmountUnevenPortions(t *testing.T) {
	parts := SplitAmount(d("10"), []decimal.Decimal{d("0.333"), d("0.333"), d("0.334")})
	require.Len(t, parts, 3)
	assert.True(t, parts[0].Equal(d("3.33")))
	assert.True(t, parts[1].Equal(d("3.33")))
	assert.True(t, parts[2].Equal(d("3.34")))

	assert.True(t, SplitAmount(d("0"), []decimal.Decimal{d("0.5"), d("0.5")})[0].IsZero())

	over := SplitAmount(d("10"), []decimal.Decimal{d("0.7"), d("0.7"), d("0.1")})
	assert.True(t, over[0].Equal(d("7")))
	assert.True(t, over[1].Equal(d("3")), "shares never exceed what is left")
	assert.True(t, over[2].IsZero())
}

func TestValidateTemplates(t *testing.T) {
	ok := []model.InstallmentTemplate{{Portion: d("0.5")}, {Portion: d("0.5"), DueOffsetMonths: 6}}
	assert.Nil(t, ValidateTemplates(ok))

	bad := []model.InstallmentTemplate{{Portion: d("0.5")}, {Portion: d("0"), DueOffsetDays: -1}}
	errs := ValidateTemplates(bad)
	assert.Contains(t, errs, "fee_definition_installments[1].portion")
	assert.Contains(t, errs, "fee_definition_installments[1]")
	assert.Contains(t, errs, "fee_definition_installments")
}

func TestValidateDefinition(t *testing.T) {
	m := model.FeeDefinitionModel{FeeDefinitionBaseAmount: d("-1"), FeeDefinitionCalculationMethod: model.CalculationFlat}
	err := ValidateDefinition(m)
	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "fee_definition_base_amount")

	m.FeeDefinitionBaseAmount = d("10")
	assert.NoError(t, ValidateDefinition(m))
}
