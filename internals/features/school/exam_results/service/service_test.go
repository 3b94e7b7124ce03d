package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateRow(t *testing.T) {
	ok := RowInput{SubjectID: uuid.New(), MarksObtained: d("35"), TotalMarks: d("50")}
	assert.Nil(t, ValidateRow(ok))

	errs := ValidateRow(RowInput{MarksObtained: d("-1"), TotalMarks: d("0")})
	assert.Contains(t, errs, "subject_id")
	assert.Contains(t, errs, "total_marks")
	assert.Contains(t, errs, "marks_obtained")

	errs = ValidateRow(RowInput{SubjectID: uuid.New(), MarksObtained: d("60"), TotalMarks: d("50")})
	assert.Equal(t, []string{"must not exceed total_marks"}, errs["marks_obtained"])
}

func TestBuildResultComputesScore(t *testing.T) {
	student, exam := uuid.New(), uuid.New()
	m := BuildResult(student, exam, RowInput{SubjectID: uuid.New(), MarksObtained: d("19.999"), TotalMarks: d("50")})

	assert.Equal(t, student, m.ExamResultStudentID)
	assert.Equal(t, exam, m.ExamResultExamID)
	assert.True(t, m.ExamResultPercentage.Equal(d("40")))
	assert.Equal(t, "F", m.ExamResultGrade)
	assert.False(t, m.ExamResultIsPass)
}
