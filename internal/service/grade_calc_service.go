package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

// Trimester weights grow towards the end of the year (1:2:3), matching the
// weighting applied by the legacy report cards.
var trimesterWeights = map[int]float64{1: 1, 2: 2, 3: 3}

type gradeUnitReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.TeachingUnit, error)
}

type gradeEvaluationLister interface {
	ListByUnitAndStudent(ctx context.Context, tenantID, unitID, studentID string) ([]models.Evaluation, error)
}

type gradeConfigReader interface {
	FindByTenant(ctx context.Context, tenantID string) (*models.InstitutionConfig, error)
}

// GradeCalcService computes final averages and pass/fail status per
// institution-type formula.
type GradeCalcService struct {
	units       gradeUnitReader
	evaluations gradeEvaluationLister
	configs     gradeConfigReader
	logger      *zap.Logger
}

// NewGradeCalcService constructs the service.
func NewGradeCalcService(units gradeUnitReader, evaluations gradeEvaluationLister, configs gradeConfigReader, logger *zap.Logger) *GradeCalcService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeCalcService{units: units, evaluations: evaluations, configs: configs, logger: logger}
}

// Calculate resolves the tenant configuration and delegates to
// CalculateWithConfig.
func (s *GradeCalcService) Calculate(ctx context.Context, tenantID, unitID, studentID string) (*models.GradeSummary, error) {
	if tenantID == "" || unitID == "" || studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant, unit and student are required")
	}
	cfg, err := s.configs.FindByTenant(ctx, tenantID)
	if err != nil {
		return s.safeFailure(unitID, studentID, fmt.Sprintf("load institution config: %v", err)), nil
	}
	return s.CalculateWithConfig(ctx, tenantID, unitID, studentID, cfg)
}

// CalculateWithConfig computes the grade summary for one student. Internal
// failures never surface as errors: the summary comes back zeroed and FAILED
// with the reason in Note, so batch callers keep going.
func (s *GradeCalcService) CalculateWithConfig(ctx context.Context, tenantID, unitID, studentID string, cfg *models.InstitutionConfig) (*models.GradeSummary, error) {
	if cfg == nil {
		cfg = models.DefaultInstitutionConfig(tenantID)
	}

	unit, err := s.units.FindByID(ctx, tenantID, unitID)
	if err != nil {
		return s.safeFailure(unitID, studentID, fmt.Sprintf("load teaching unit: %v", err)), nil
	}

	all, err := s.evaluations.ListByUnitAndStudent(ctx, tenantID, unitID, studentID)
	if err != nil {
		return s.safeFailure(unitID, studentID, fmt.Sprintf("list evaluations: %v", err)), nil
	}

	// Only evaluations authored by the unit's own teacher count, so scores
	// entered by other teachers never contaminate the average.
	evals := make([]models.Evaluation, 0, len(all))
	for _, e := range all {
		if e.TeacherID == unit.TeacherID {
			evals = append(evals, e)
		}
	}

	summary := &models.GradeSummary{UnitID: unitID, StudentID: studentID, Status: models.GradeFailed}
	if len(evals) == 0 {
		summary.Note = "no evaluations recorded"
		return summary, nil
	}

	switch cfg.InstitutionType {
	case models.InstitutionExam:
		s.calculateExamScheme(summary, evals, cfg)
	default:
		s.calculateTrimesterScheme(summary, evals, cfg)
	}
	return summary, nil
}

func (s *GradeCalcService) calculateTrimesterScheme(summary *models.GradeSummary, evals []models.Evaluation, cfg *models.InstitutionConfig) {
	periodSums := make(map[int]float64)
	periodCounts := make(map[int]int)
	recoveries := make(map[int]float64)

	for _, e := range evals {
		switch e.Type {
		case models.EvaluationTrimester:
			periodSums[e.Period] += e.Score
			periodCounts[e.Period]++
		case models.EvaluationRecovery:
			if e.Score > recoveries[e.Period] {
				recoveries[e.Period] = e.Score
			}
		}
	}

	var weightedSum, weightTotal float64
	for period, weight := range trimesterWeights {
		avg := 0.0
		if periodCounts[period] > 0 {
			avg = periodSums[period] / float64(periodCounts[period])
		}
		if recovery, ok := recoveries[period]; ok && recovery > avg {
			avg = recovery
		}
		weightedSum += avg * weight
		weightTotal += weight
	}

	final := round2(weightedSum / weightTotal)
	partial := partialAverage(periodSums, periodCounts)

	summary.FinalAverage = final
	summary.PartialAverage = partial
	if final >= cfg.PassingAverage {
		summary.Status = models.GradeApproved
	}
	summary.DisplayOrder = trimesterDisplayOrder(evals)
}

func (s *GradeCalcService) calculateExamScheme(summary *models.GradeSummary, evals []models.Evaluation, cfg *models.InstitutionConfig) {
	var exams, assignments, recoveries, finalExams []models.Evaluation
	for _, e := range evals {
		switch e.Type {
		case models.EvaluationExam:
			exams = append(exams, e)
		case models.EvaluationAssignment:
			assignments = append(assignments, e)
		case models.EvaluationRecovery:
			recoveries = append(recoveries, e)
		case models.EvaluationFinalExam:
			finalExams = append(finalExams, e)
		}
	}
	sortByDate(exams)

	scores := make([]float64, 0, len(exams)+1)
	for _, e := range exams {
		scores = append(scores, e.Score)
	}
	for _, a := range assignments {
		scores = append(scores, a.Score)
	}
	if len(scores) == 0 {
		summary.Note = "no exam scores recorded"
		return
	}

	// The best recovery score replaces the lowest slot when it improves it.
	if len(recoveries) > 0 {
		best := recoveries[0].Score
		for _, r := range recoveries[1:] {
			if r.Score > best {
				best = r.Score
			}
		}
		lowest := 0
		for i, v := range scores {
			if v < scores[lowest] {
				lowest = i
			}
		}
		if best > scores[lowest] {
			scores[lowest] = best
		}
	}

	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	base := sum / float64(len(scores))
	partial := round2(base)
	summary.PartialAverage = &partial

	final := base
	if base < cfg.PassingAverage && len(finalExams) > 0 {
		sortByDate(finalExams)
		final = (base + finalExams[len(finalExams)-1].Score) / 2
	}
	summary.FinalAverage = round2(final)
	if summary.FinalAverage >= cfg.PassingAverage {
		summary.Status = models.GradeApproved
	}
	summary.DisplayOrder = examDisplayOrder(exams, assignments, recoveries, finalExams)
}

func (s *GradeCalcService) safeFailure(unitID, studentID, reason string) *models.GradeSummary {
	s.logger.Sugar().Warnw("grade calculation failed", "unit_id", unitID, "student_id", studentID, "reason", reason)
	return &models.GradeSummary{
		UnitID:    unitID,
		StudentID: studentID,
		Status:    models.GradeFailed,
		Note:      reason,
	}
}

// trimesterDisplayOrder sorts by (period asc, date asc).
func trimesterDisplayOrder(evals []models.Evaluation) []models.EvaluationView {
	ordered := make([]models.Evaluation, len(evals))
	copy(ordered, evals)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Period != ordered[j].Period {
			return ordered[i].Period < ordered[j].Period
		}
		return ordered[i].HeldOn.Before(ordered[j].HeldOn)
	})

	views := make([]models.EvaluationView, 0, len(ordered))
	for _, e := range ordered {
		views = append(views, models.EvaluationView{
			EvaluationID: e.ID,
			Label:        fmt.Sprintf("%s trimester", ordinal(e.Period)),
			Type:         e.Type,
			Period:       e.Period,
			HeldOn:       e.HeldOn,
			Score:        e.Score,
		})
	}
	return views
}

// examDisplayOrder labels timed exams sequentially by date, then appends the
// non-exam types in fixed priority order (assignment, recovery, final exam),
// each tie-broken by date.
func examDisplayOrder(exams, assignments, recoveries, finalExams []models.Evaluation) []models.EvaluationView {
	views := make([]models.EvaluationView, 0, len(exams)+len(assignments)+len(recoveries)+len(finalExams))
	for i, e := range exams {
		views = append(views, models.EvaluationView{
			EvaluationID: e.ID,
			Label:        fmt.Sprintf("%s exam", ordinal(i+1)),
			Type:         e.Type,
			HeldOn:       e.HeldOn,
			Score:        e.Score,
		})
	}
	for _, group := range []struct {
		label string
		evals []models.Evaluation
	}{
		{"assignment", assignments},
		{"recovery", recoveries},
		{"final exam", finalExams},
	} {
		sortByDate(group.evals)
		for _, e := range group.evals {
			views = append(views, models.EvaluationView{
				EvaluationID: e.ID,
				Label:        group.label,
				Type:         e.Type,
				HeldOn:       e.HeldOn,
				Score:        e.Score,
			})
		}
	}
	return views
}

func partialAverage(sums map[int]float64, counts map[int]int) *float64 {
	var total float64
	var n int
	for period, count := range counts {
		if count == 0 {
			continue
		}
		total += sums[period] / float64(count)
		n++
	}
	if n == 0 {
		return nil
	}
	avg := round2(total / float64(n))
	return &avg
}

func sortByDate(evals []models.Evaluation) {
	sort.SliceStable(evals, func(i, j int) bool {
		return evals[i].HeldOn.Before(evals[j].HeldOn)
	})
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}
