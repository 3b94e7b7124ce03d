// file: internals/features/finance/fee_definitions/service/calc.go
package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/shopspring/decimal"

	"schoolfee_backend/internals/features/finance/fee_definitions/model"
	"schoolfee_backend/internals/helpers/apperror"
)

var portionTolerance = decimal.RequireFromString("0.0001")

// batas kolom numeric(14,2)
const maxFormulaAmount = 999999999999.99

/* =========================================================
   Effective amount per fee definition
========================================================= */

// EffectiveAmount menghitung nominal satu fee untuk satu siswa.
// units dipakai oleh per_unit & formula (default 1 bila <= 0).
func EffectiveAmount(def model.FeeDefinitionModel, units decimal.Decimal) (decimal.Decimal, error) {
	if units.LessThanOrEqual(decimal.Zero) {
		units = decimal.NewFromInt(1)
	}
	base := def.FeeDefinitionBaseAmount

	var out decimal.Decimal
	switch def.FeeDefinitionCalculationMethod {
	case model.CalculationPerUnit:
		out = base.Mul(units)
	case model.CalculationFormula:
		v, err := EvaluateFormula(def.Formula(), base, units)
		if err != nil {
			return decimal.Zero, err
		}
		out = v
	default:
		out = base
	}

	out = out.Round(2)
	if out.IsNegative() {
		return decimal.Zero, apperror.Newf(apperror.KindInvalidAmount,
			"fee %s resolves to a negative amount", def.FeeDefinitionCode)
	}
	return out, nil
}

// EvaluateFormula menjalankan ekspresi govaluate dengan parameter base_amount & units.
func EvaluateFormula(formula string, base, units decimal.Decimal) (decimal.Decimal, error) {
	formula = strings.TrimSpace(formula)
	if formula == "" {
		return decimal.Zero, apperror.Validation("formula is empty", map[string][]string{
			"fee_definition_metadata.formula": {"is required for calculation_method=formula"},
		})
	}
	expr, err := govaluate.NewEvaluableExpression(formula)
	if err != nil {
		return decimal.Zero, apperror.Validation("invalid formula", map[string][]string{
			"fee_definition_metadata.formula": {err.Error()},
		})
	}

	params := map[string]interface{}{
		"base_amount": base.InexactFloat64(),
		"units":       units.InexactFloat64(),
	}
	result, err := expr.Evaluate(params)
	if err != nil {
		return decimal.Zero, apperror.Validation("formula evaluation failed", map[string][]string{
			"fee_definition_metadata.formula": {err.Error()},
		})
	}
	f, ok := result.(float64)
	if !ok {
		return decimal.Zero, apperror.Validation("formula result is not a number", map[string][]string{
			"fee_definition_metadata.formula": {fmt.Sprintf("got %T", result)},
		})
	}
	// govaluate hanya mengenal float64; di bawah batas numeric(14,2) float64 masih
	// presisi sampai sen, jadi hasil dibulatkan 2dp dan di luar batas ditolak.
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxFormulaAmount {
		return decimal.Zero, apperror.Validation("formula result is out of range", map[string][]string{
			"fee_definition_metadata.formula": {fmt.Sprintf("result %v is not a finite amount up to %.2f", f, maxFormulaAmount)},
		})
	}
	return decimal.NewFromFloat(f).Round(2), nil
}

/* =========================================================
   Installment templates
========================================================= */

// TemplatesFor: daftar template milik definisi; kalau kosong diturunkan dari frequency.
func TemplatesFor(def model.FeeDefinitionModel) []model.InstallmentTemplate {
	if len(def.FeeDefinitionInstallments) > 0 {
		return def.FeeDefinitionInstallments
	}
	return DeriveTemplates(def.FeeDefinitionFrequency)
}

// DeriveTemplates: monthly 12x sebulan sekali, term 3x tiap 4 bulan, selain itu 1x.
func DeriveTemplates(freq model.Frequency) []model.InstallmentTemplate {
	var (
		n      int
		step   int
		prefix string
	)
	switch freq {
	case model.FrequencyMonthly:
		n, step, prefix = 12, 1, "Month"
	case model.FrequencyTerm:
		n, step, prefix = 3, 4, "Term"
	case model.FrequencyOneTime:
		return []model.InstallmentTemplate{{Label: "One-time", Portion: decimal.NewFromInt(1)}}
	default:
		return []model.InstallmentTemplate{{Label: "Annual", Portion: decimal.NewFromInt(1)}}
	}

	portion := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(n)))
	out := make([]model.InstallmentTemplate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.InstallmentTemplate{
			Label:           fmt.Sprintf("%s %d", prefix, i+1),
			Portion:         portion,
			DueOffsetMonths: i * step,
		})
	}
	return out
}

// ValidateTemplates: portion > 0, offset >= 0, total portion = 1 (toleransi 0.0001).
func ValidateTemplates(list []model.InstallmentTemplate) map[string][]string {
	if len(list) == 0 {
		return nil
	}
	errs := map[string][]string{}
	sum := decimal.Zero
	for i, t := range list {
		key := fmt.Sprintf("fee_definition_installments[%d]", i)
		if !t.Portion.IsPositive() {
			errs[key+".portion"] = append(errs[key+".portion"], "must be greater than 0")
		}
		if t.DueOffsetDays < 0 || t.DueOffsetMonths < 0 {
			errs[key] = append(errs[key], "due offsets must not be negative")
		}
		sum = sum.Add(t.Portion)
	}
	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(portionTolerance) {
		errs["fee_definition_installments"] = append(errs["fee_definition_installments"],
			"portions must add up to 1 (got "+sum.String()+")")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// SplitAmount membagi total ke porsi: tiap bagian kecuali terakhir = total*porsi
// dibulatkan ke bawah ke sen (noise presisi 1/n dibuang dulu) dan tidak melebihi sisa;
// bagian terakhir menyerap sisanya. Σ hasil = total (2dp), tidak ada bagian negatif.
func SplitAmount(total decimal.Decimal, portions []decimal.Decimal) []decimal.Decimal {
	if len(portions) == 0 {
		return nil
	}
	if total.IsNegative() {
		out := SplitAmount(total.Neg(), portions)
		for i := range out {
			out[i] = out[i].Neg()
		}
		return out
	}
	total = total.Round(2)

	out := make([]decimal.Decimal, len(portions))
	acc := decimal.Zero
	last := len(portions) - 1
	for i := 0; i < last; i++ {
		share := decimal.Zero
		if portions[i].IsPositive() {
			share = total.Mul(portions[i]).Round(6).RoundDown(2)
		}
		share = decimal.Min(share, total.Sub(acc))
		out[i] = share
		acc = acc.Add(share)
	}
	out[last] = total.Sub(acc)
	return out
}
