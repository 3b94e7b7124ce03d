// file: internals/features/finance/fee_assignments/service/resolver.go
package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"schoolfee_backend/internals/features/finance/fee_assignments/model"
	enrModel "schoolfee_backend/internals/features/school/enrollments/model"
	"schoolfee_backend/internals/helpers/dbtime"
)

// ResolveContext: atribut siswa yang dicocokkan dengan scope assignment.
// Field bus hanya terisi untuk admission Transport.
type ResolveContext struct {
	StudentID     *uuid.UUID `json:"student_id,omitempty"`
	ClassID       *uuid.UUID `json:"class_id,omitempty"`
	DivisionID    *uuid.UUID `json:"division_id,omitempty"`
	BusRouteID    *uuid.UUID `json:"bus_route_id,omitempty"`
	BusStopID     *uuid.UUID `json:"bus_stop_id,omitempty"`
	AdmissionType string     `json:"admission_type,omitempty"`
	AsOf          time.Time  `json:"as_of"`
}

// ContextFromEnrollment membangun konteks dari enrollment.
func ContextFromEnrollment(e enrModel.EnrollmentModel, asOf time.Time) ResolveContext {
	studentID := e.EnrollmentStudentID
	classID := e.EnrollmentClassID
	rc := ResolveContext{
		StudentID:     &studentID,
		ClassID:       &classID,
		DivisionID:    e.EnrollmentDivisionID,
		AdmissionType: string(e.EnrollmentAdmissionType),
		AsOf:          asOf,
	}
	if e.HasTransport() {
		rc.BusRouteID = e.EnrollmentBusRouteID
		rc.BusStopID = e.EnrollmentBusStopID
	}
	return rc
}

// scopeMatches: nil di assignment = wildcard; nil di konteks tidak pernah cocok dengan nilai terisi.
func scopeMatches(want, have *uuid.UUID) bool {
	if want == nil {
		return true
	}
	return have != nil && *want == *have
}

// InWindow: start <= asOf dan (end nil atau asOf <= end), dibanding per tanggal.
func InWindow(a model.FeeAssignmentModel, asOf time.Time) bool {
	if !dbtime.SameOrBefore(a.FeeAssignmentStartDate, asOf) {
		return false
	}
	return a.FeeAssignmentEndDate == nil || dbtime.SameOrBefore(asOf, *a.FeeAssignmentEndDate)
}

// Matches mengecek scope, window, dan conditions.admission_types.
func Matches(a model.FeeAssignmentModel, rc ResolveContext) bool {
	if !scopeMatches(a.FeeAssignmentStudentID, rc.StudentID) ||
		!scopeMatches(a.FeeAssignmentClassID, rc.ClassID) ||
		!scopeMatches(a.FeeAssignmentDivisionID, rc.DivisionID) ||
		!scopeMatches(a.FeeAssignmentBusRouteID, rc.BusRouteID) ||
		!scopeMatches(a.FeeAssignmentBusStopID, rc.BusStopID) {
		return false
	}
	if !InWindow(a, rc.AsOf) {
		return false
	}
	if types := AdmissionTypes(a.FeeAssignmentConditions); len(types) > 0 {
		return lo.ContainsBy(types, func(t string) bool {
			return strings.EqualFold(t, rc.AdmissionType)
		})
	}
	return true
}

// Resolve memilih assignment yang berlaku: filter, urut (priority asc, id asc),
// lalu ambil satu per fee definition.
func Resolve(all []model.FeeAssignmentModel, rc ResolveContext) []model.FeeAssignmentModel {
	matched := lo.Filter(all, func(a model.FeeAssignmentModel, _ int) bool {
		return Matches(a, rc)
	})
	SortByPrecedence(matched)
	return lo.UniqBy(matched, func(a model.FeeAssignmentModel) uuid.UUID {
		return a.FeeAssignmentFeeDefinitionID
	})
}

// SortByPrecedence: priority kecil dulu; seri -> id (string kanonik) terkecil.
func SortByPrecedence(rows []model.FeeAssignmentModel) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].FeeAssignmentPriority != rows[j].FeeAssignmentPriority {
			return rows[i].FeeAssignmentPriority < rows[j].FeeAssignmentPriority
		}
		return rows[i].FeeAssignmentID.String() < rows[j].FeeAssignmentID.String()
	})
}

/* =========================================================
   Conditions (JSONB)
========================================================= */

// AdmissionTypes membaca conditions.admission_types (list string).
func AdmissionTypes(cond datatypes.JSONMap) []string {
	if cond == nil {
		return nil
	}
	raw, ok := cond["admission_types"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{strings.TrimSpace(v)}
	}
	return nil
}

// Units membaca conditions.units (default 1).
func Units(cond datatypes.JSONMap) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if cond == nil {
		return one
	}
	var (
		out decimal.Decimal
		err error
	)
	switch v := cond["units"].(type) {
	case float64:
		out = decimal.NewFromFloat(v)
	case int:
		out = decimal.NewFromInt(int64(v))
	case int64:
		out = decimal.NewFromInt(v)
	case json.Number:
		out, err = decimal.NewFromString(v.String())
	case string:
		out, err = decimal.NewFromString(strings.TrimSpace(v))
	default:
		return one
	}
	if err != nil || !out.IsPositive() {
		return one
	}
	return out
}

// ValidateConditions memastikan bentuk JSON conditions yang dikenali masuk akal.
func ValidateConditions(cond map[string]any) map[string][]string {
	errs := map[string][]string{}
	if raw, ok := cond["admission_types"]; ok {
		list, ok := raw.([]interface{})
		if !ok {
			errs["fee_assignment_conditions.admission_types"] = []string{"must be a list of strings"}
		} else {
			for _, x := range list {
				s, ok := x.(string)
				if !ok || !lo.Contains(validAdmissionTypes, s) {
					errs["fee_assignment_conditions.admission_types"] = []string{
						fmt.Sprintf("must contain only: %s", strings.Join(validAdmissionTypes, ", ")),
					}
					break
				}
			}
		}
	}
	if raw, ok := cond["units"]; ok {
		if f, ok := raw.(float64); !ok || f <= 0 {
			errs["fee_assignment_conditions.units"] = []string{"must be a positive number"}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

var validAdmissionTypes = []string{
	string(enrModel.AdmissionTransport),
	string(enrModel.AdmissionHostel),
	string(enrModel.AdmissionSelf),
	string(enrModel.AdmissionTuitionOnly),
}
