// file: internals/features/finance/payment_schedules/service/generator.go
package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	faModel "schoolfee_backend/internals/features/finance/fee_assignments/model"
	faService "schoolfee_backend/internals/features/finance/fee_assignments/service"
	fdModel "schoolfee_backend/internals/features/finance/fee_definitions/model"
	fdService "schoolfee_backend/internals/features/finance/fee_definitions/service"
	"schoolfee_backend/internals/features/finance/payment_schedules/model"
	enrModel "schoolfee_backend/internals/features/school/enrollments/model"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/apperror"
	"schoolfee_backend/internals/helpers/dbtime"
)

const msgScheduleExists = "payment schedule already exists for enrollment"

/* =========================================================
   Pure expansion: fee -> items
========================================================= */

// PlannedFee: satu definisi yang akan dipecah jadi item, beserta assignment asalnya.
type PlannedFee struct {
	Definition fdModel.FeeDefinitionModel
	Assignment *faModel.FeeAssignmentModel
	Units      decimal.Decimal
}

// DueDate: anchor = awal tahun ajaran (jika template minta & tersedia), selain itu date_enrolled.
func DueDate(enr enrModel.EnrollmentModel, t fdModel.InstallmentTemplate) time.Time {
	anchor := enr.EnrollmentDateEnrolled
	if t.FromAcademicYearStart && enr.EnrollmentAcademicYearStart != nil {
		anchor = *enr.EnrollmentAcademicYearStart
	}
	return dbtime.AddOffset(anchor, t.DueOffsetMonths, t.DueOffsetDays)
}

// templatesForPreference: preferensi "full" melipat semua cicilan jadi satu,
// jatuh tempo di cicilan pertama.
func templatesForPreference(def fdModel.FeeDefinitionModel, pref enrModel.PaymentPreference) []fdModel.InstallmentTemplate {
	list := fdService.TemplatesFor(def)
	if pref != enrModel.PreferenceFull || len(list) <= 1 {
		return list
	}
	first := list[0]
	return []fdModel.InstallmentTemplate{{
		Label:                 "Full payment",
		Portion:               decimal.NewFromInt(1),
		DueOffsetDays:         first.DueOffsetDays,
		DueOffsetMonths:       first.DueOffsetMonths,
		FromAcademicYearStart: first.FromAcademicYearStart,
	}}
}

func describe(name, label string, n int) string {
	if n <= 1 || strings.TrimSpace(label) == "" {
		return name
	}
	return name + " - " + label
}

// BuildItems mengekspansi fee yang sudah di-resolve menjadi item cicilan.
// Σ amount per definisi selalu sama persis dengan effective amount-nya.
func BuildItems(enr enrModel.EnrollmentModel, fees []PlannedFee) ([]model.PaymentItemModel, error) {
	items := make([]model.PaymentItemModel, 0, len(fees)*2)
	for _, f := range fees {
		def := f.Definition
		total, err := fdService.EffectiveAmount(def, f.Units)
		if err != nil {
			return nil, err
		}
		templates := templatesForPreference(def, enr.EnrollmentPaymentPreference)
		portions := lo.Map(templates, func(t fdModel.InstallmentTemplate, _ int) decimal.Decimal { return t.Portion })
		amounts := fdService.SplitAmount(total, portions)

		defID := def.FeeDefinitionID
		var assignmentID *uuid.UUID
		if f.Assignment != nil {
			id := f.Assignment.FeeAssignmentID
			assignmentID = &id
		}
		// cicilan yang jatuh 0.00 (nominal kecil dibagi banyak porsi) tidak dibuat;
		// nomor cicilan & sequence key tetap berurutan 1..k.
		kept := lo.CountBy(amounts, func(a decimal.Decimal) bool { return a.IsPositive() })
		n := 0
		for i, t := range templates {
			if !amounts[i].IsPositive() {
				continue
			}
			n++
			items = append(items, model.PaymentItemModel{
				PaymentItemFeeDefinitionID:   &defID,
				PaymentItemFeeAssignmentID:   assignmentID,
				PaymentItemDescription:       describe(def.FeeDefinitionName, t.Label, kept),
				PaymentItemAmount:            amounts[i],
				PaymentItemDiscountAmount:    decimal.Zero,
				PaymentItemNetAmount:         amounts[i],
				PaymentItemDueDate:           DueDate(enr, t),
				PaymentItemInstallmentNumber: n,
				PaymentItemSequenceKey:       model.SequenceKey(&defID, n),
				PaymentItemStatus:            model.ItemPending,
				PaymentItemPaidAmount:        decimal.Zero,
				PaymentItemLateFeeApplied:    decimal.Zero,
				PaymentItemTransactionIDs:    pq.StringArray{},
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PaymentItemDueDate.Before(items[j].PaymentItemDueDate)
	})
	return items, nil
}

// scheduleCurrency: semua fee dalam satu schedule wajib satu mata uang.
func scheduleCurrency(fees []PlannedFee, fallback string) (string, error) {
	codes := lo.Uniq(lo.Map(fees, func(f PlannedFee, _ int) string {
		return strings.ToUpper(f.Definition.FeeDefinitionCurrency)
	}))
	switch len(codes) {
	case 0:
		return fallback, nil
	case 1:
		return codes[0], nil
	default:
		return "", apperror.Validation("fees resolve to mixed currencies", map[string][]string{
			"fee_definition_currency": {"all fees of a schedule must share one currency, got " + strings.Join(codes, ", ")},
		})
	}
}

/* =========================================================
   Planning (DB)
========================================================= */

// planFees: assignment yang cocok per date_enrolled; fallback ke default tuition.
func planFees(ctx context.Context, tx *gorm.DB, enr enrModel.EnrollmentModel) ([]PlannedFee, bool, error) {
	rc := faService.ContextFromEnrollment(enr, dbtime.DateOf(enr.EnrollmentDateEnrolled))
	assignments, err := faService.ResolveFor(ctx, tx, rc)
	if err != nil {
		return nil, false, err
	}

	ids := lo.Map(assignments, func(a faModel.FeeAssignmentModel, _ int) uuid.UUID { return a.FeeAssignmentFeeDefinitionID })
	defs, err := fdService.FindByIDs(ctx, tx, ids)
	if err != nil {
		return nil, false, err
	}

	fees := make([]PlannedFee, 0, len(assignments))
	for i := range assignments {
		a := assignments[i]
		def, ok := defs[a.FeeAssignmentFeeDefinitionID]
		if !ok {
			continue
		}
		fees = append(fees, PlannedFee{Definition: def, Assignment: &a, Units: faService.Units(a.FeeAssignmentConditions)})
	}
	if len(fees) > 0 {
		return fees, false, nil
	}

	defaults, err := fdService.FindDefaultTuition(ctx, tx)
	if err != nil {
		return nil, false, err
	}
	for _, d := range defaults {
		fees = append(fees, PlannedFee{Definition: d, Units: decimal.NewFromInt(1)})
	}
	return fees, len(fees) > 0, nil
}

/* =========================================================
   Generate / Preview / Regenerate
========================================================= */

type GenerateResult struct {
	Schedule           model.PaymentScheduleModel
	NoApplicableFees   bool
	UsedDefaultTuition bool
	AlreadyGenerated   bool
}

func loadEnrollment(tx *gorm.DB, id uuid.UUID, lock bool) (*enrModel.EnrollmentModel, error) {
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var enr enrModel.EnrollmentModel
	if err := q.First(&enr, "enrollment_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("enrollment")
		}
		return nil, err
	}
	return &enr, nil
}

// build menjalankan langkah resolve + ekspansi tanpa menulis apa pun.
func (s *Service) build(ctx context.Context, tx *gorm.DB, enr enrModel.EnrollmentModel) (*GenerateResult, error) {
	fees, usedDefault, err := planFees(ctx, tx, enr)
	if err != nil {
		return nil, err
	}
	items, err := BuildItems(enr, fees)
	if err != nil {
		return nil, err
	}
	currency, err := scheduleCurrency(fees, s.defaultCurrency())
	if err != nil {
		return nil, err
	}

	t := ComputeTotals(items)
	sched := model.PaymentScheduleModel{
		PaymentScheduleNumber:         helper.GenNumber("PS", s.now()),
		PaymentScheduleEnrollmentID:   enr.EnrollmentID,
		PaymentScheduleStudentID:      enr.EnrollmentStudentID,
		PaymentScheduleCurrency:       currency,
		PaymentScheduleTotalAmount:    t.Total,
		PaymentSchedulePaidAmount:     t.Paid,
		PaymentScheduleLateFeeAmount:  t.LateFee,
		PaymentScheduleLateFeePaid:    t.LateFeePaid,
		PaymentScheduleOverpaidAmount: t.Overpaid,
		PaymentScheduleStatus:         t.Status,
		Items:                         items,
	}
	return &GenerateResult{
		Schedule:           sched,
		NoApplicableFees:   len(items) == 0,
		UsedDefaultTuition: usedDefault,
	}, nil
}

func (s *Service) defaultCurrency() string {
	if c := strings.TrimSpace(s.Settings.DefaultCurrency); c != "" {
		return strings.ToUpper(c)
	}
	return "INR"
}

// generateTx: cek eksistensi, bangun, simpan header + item dalam tx yang sama.
func (s *Service) generateTx(ctx context.Context, tx *gorm.DB, enr enrModel.EnrollmentModel) (*GenerateResult, error) {
	existing, err := findByEnrollment(tx, enr.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.AlreadyExists(msgScheduleExists)
	}

	res, err := s.build(ctx, tx, enr)
	if err != nil {
		return nil, err
	}
	sched := res.Schedule
	items := sched.Items
	sched.Items = nil
	if err := tx.Omit(clause.Associations).Create(&sched).Error; err != nil {
		return nil, err
	}
	for i := range items {
		items[i].PaymentItemScheduleID = sched.PaymentScheduleID
	}
	if len(items) > 0 {
		if err := tx.CreateInBatches(&items, 100).Error; err != nil {
			return nil, err
		}
	}
	sched.Items = items
	res.Schedule = sched
	return res, nil
}

// Generate membuat schedule untuk enrollment. Kedua kalinya -> AlreadyExists.
func (s *Service) Generate(ctx context.Context, enrollmentID uuid.UUID) (*GenerateResult, error) {
	var out *GenerateResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enr, err := loadEnrollment(tx, enrollmentID, true)
		if err != nil {
			return err
		}
		out, err = s.generateTx(ctx, tx, *enr)
		return err
	})
	if err != nil {
		return nil, helper.MapDBError("generate payment schedule", err, msgScheduleExists)
	}
	s.logger().Info("payment schedule generated",
		"enrollment_id", enrollmentID,
		"payment_schedule_id", out.Schedule.PaymentScheduleID,
		"items", len(out.Schedule.Items),
		"no_applicable_fees", out.NoApplicableFees,
	)
	return out, nil
}

// Preview: algoritma yang sama tanpa menulis. Kalau schedule sudah ada,
// hasil tetap dihitung dan AlreadyGenerated = true.
func (s *Service) Preview(ctx context.Context, enrollmentID uuid.UUID) (*GenerateResult, error) {
	db := s.DB.WithContext(ctx)
	enr, err := loadEnrollment(db, enrollmentID, false)
	if err != nil {
		return nil, helper.MapDBError("preview payment schedule", err, "")
	}
	res, err := s.build(ctx, db, *enr)
	if err != nil {
		return nil, helper.MapDBError("preview payment schedule", err, "")
	}
	var n int64
	if err := db.Model(&model.PaymentScheduleModel{}).
		Where("payment_schedule_enrollment_id = ?", enrollmentID).
		Count(&n).Error; err != nil {
		return nil, apperror.Internal("preview payment schedule", err)
	}
	res.AlreadyGenerated = n > 0
	res.Schedule.PaymentScheduleNumber = ""
	return res, nil
}

type RegenerateInput struct {
	PaymentPreference *enrModel.PaymentPreference
	Force             bool
}

// Regenerate: hapus schedule + item lalu generate ulang dalam satu tx.
// Ditolak bila ada item yang sudah dibayar, kecuali Force.
func (s *Service) Regenerate(ctx context.Context, enrollmentID uuid.UUID, in RegenerateInput) (*GenerateResult, error) {
	var (
		out        *GenerateResult
		paidLoss   decimal.Decimal
		hadRecords bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enr, err := loadEnrollment(tx, enrollmentID, true)
		if err != nil {
			return err
		}
		if in.PaymentPreference != nil && *in.PaymentPreference != enr.EnrollmentPaymentPreference {
			if err := tx.Model(&enrModel.EnrollmentModel{}).
				Where("enrollment_id = ?", enr.EnrollmentID).
				Update("enrollment_payment_preference", *in.PaymentPreference).Error; err != nil {
				return err
			}
			enr.EnrollmentPaymentPreference = *in.PaymentPreference
		}

		existing, err := findByEnrollment(tx, enr.EnrollmentID)
		if err != nil {
			return err
		}
		if existing != nil {
			paidItems := lo.Filter(existing.Items, func(it model.PaymentItemModel, _ int) bool {
				return it.PaymentItemPaidAmount.IsPositive()
			})
			if len(paidItems) > 0 && !in.Force {
				return apperror.Conflict("payment schedule has recorded payments; pass force=true to regenerate")
			}
			for _, it := range paidItems {
				paidLoss = paidLoss.Add(it.PaymentItemPaidAmount)
			}
			hadRecords = len(paidItems) > 0

			if err := tx.Where("payment_item_schedule_id = ?", existing.PaymentScheduleID).
				Delete(&model.PaymentItemModel{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&model.PaymentScheduleModel{}, "payment_schedule_id = ?", existing.PaymentScheduleID).Error; err != nil {
				return err
			}
		}

		out, err = s.generateTx(ctx, tx, *enr)
		return err
	})
	if err != nil {
		return nil, helper.MapDBError("regenerate payment schedule", err, msgScheduleExists)
	}
	if hadRecords {
		s.logger().Warn("payment schedule force-regenerated over recorded payments",
			"enrollment_id", enrollmentID,
			"paid_amount_detached", paidLoss.StringFixed(2),
		)
	}
	return out, nil
}

/* =========================================================
   Bulk: generate-missing & per-student listing
========================================================= */

type GeneratedEntry struct {
	EnrollmentID   uuid.UUID `json:"enrollment_id"`
	ScheduleID     uuid.UUID `json:"payment_schedule_id"`
	ScheduleNumber string    `json:"payment_schedule_number"`
	Items          int       `json:"items"`
}

type GenerateFailure struct {
	EnrollmentID uuid.UUID     `json:"enrollment_id"`
	Kind         apperror.Kind `json:"kind"`
	Error        string        `json:"error"`
}

type GenerateReport struct {
	Generated []GeneratedEntry  `json:"generated"`
	Skipped   int               `json:"skipped"`
	Failed    []GenerateFailure `json:"failed"`
}

func failureOf(enrollmentID uuid.UUID, err error) GenerateFailure {
	f := GenerateFailure{EnrollmentID: enrollmentID, Kind: apperror.KindOf(err), Error: "internal error"}
	var ae *apperror.Error
	if errors.As(err, &ae) && ae.Kind != apperror.KindInternal {
		f.Error = ae.Message
	}
	return f
}

// GenerateAllMissing: tiap enrollment Enrolled tanpa schedule; error per enrollment
// dicatat dan loop jalan terus.
func (s *Service) GenerateAllMissing(ctx context.Context) (*GenerateReport, error) {
	var ids []uuid.UUID
	if err := s.DB.WithContext(ctx).
		Model(&enrModel.EnrollmentModel{}).
		Where("enrollment_status = ?", enrModel.EnrollmentEnrolled).
		Where("NOT EXISTS (SELECT 1 FROM payment_schedules ps WHERE ps.payment_schedule_enrollment_id = enrollments.enrollment_id)").
		Order("enrollment_date_enrolled ASC, enrollment_id ASC").
		Pluck("enrollment_id", &ids).Error; err != nil {
		return nil, apperror.Internal("list enrollments without schedule", err)
	}

	rep := &GenerateReport{Generated: []GeneratedEntry{}, Failed: []GenerateFailure{}}
	for _, id := range ids {
		if ctx.Err() != nil {
			rep.Failed = append(rep.Failed, GenerateFailure{EnrollmentID: id, Kind: apperror.KindInternal, Error: ctx.Err().Error()})
			continue
		}
		res, err := s.Generate(ctx, id)
		switch {
		case err == nil:
			rep.Generated = append(rep.Generated, GeneratedEntry{
				EnrollmentID:   id,
				ScheduleID:     res.Schedule.PaymentScheduleID,
				ScheduleNumber: res.Schedule.PaymentScheduleNumber,
				Items:          len(res.Schedule.Items),
			})
		case errors.Is(err, apperror.ErrAlreadyExists):
			rep.Skipped++
		default:
			s.logger().Warn("generate schedule failed", "enrollment_id", id, "error", err)
			rep.Failed = append(rep.Failed, failureOf(id, err))
		}
	}
	return rep, nil
}

type StudentSchedules struct {
	StudentID uuid.UUID                    `json:"student_id"`
	Schedules []model.PaymentScheduleModel `json:"schedules"`
	Failed    []GenerateFailure            `json:"failed"`
}

// ListForStudent: semua enrollment siswa; schedule yang belum ada dibuat saat itu juga
// (kecuali enrollment Rejected). Gagal generate tidak menggagalkan listing.
func (s *Service) ListForStudent(ctx context.Context, studentID uuid.UUID) (*StudentSchedules, error) {
	var enrollments []enrModel.EnrollmentModel
	if err := s.DB.WithContext(ctx).
		Where("enrollment_student_id = ?", studentID).
		Order("enrollment_date_enrolled ASC, enrollment_id ASC").
		Find(&enrollments).Error; err != nil {
		return nil, apperror.Internal("list student enrollments", err)
	}

	out := &StudentSchedules{StudentID: studentID, Schedules: []model.PaymentScheduleModel{}, Failed: []GenerateFailure{}}
	for _, enr := range enrollments {
		sched, err := findByEnrollment(s.DB.WithContext(ctx), enr.EnrollmentID)
		if err != nil {
			return nil, apperror.Internal("load payment schedule", err)
		}
		if sched == nil {
			if enr.EnrollmentStatus == enrModel.EnrollmentRejected {
				continue
			}
			res, err := s.Generate(ctx, enr.EnrollmentID)
			switch {
			case err == nil:
				out.Schedules = append(out.Schedules, res.Schedule)
			case errors.Is(err, apperror.ErrAlreadyExists):
				// dibuat request lain barusan
				again, ferr := findByEnrollment(s.DB.WithContext(ctx), enr.EnrollmentID)
				if ferr != nil || again == nil {
					out.Failed = append(out.Failed, failureOf(enr.EnrollmentID, err))
					continue
				}
				out.Schedules = append(out.Schedules, *again)
			default:
				out.Failed = append(out.Failed, failureOf(enr.EnrollmentID, err))
			}
			continue
		}
		out.Schedules = append(out.Schedules, *sched)
	}
	return out, nil
}
