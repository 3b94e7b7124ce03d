// file: internals/features/school/class_thresholds/model/class_threshold_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// ClassThresholdModel: kapasitas maksimum per kelas/divisi.
// DivisionID NULL = batas untuk kelas secara keseluruhan.
type ClassThresholdModel struct {
	ClassThresholdID          uuid.UUID  `json:"class_threshold_id" gorm:"column:class_threshold_id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClassThresholdClassID     uuid.UUID  `json:"class_threshold_class_id" gorm:"column:class_threshold_class_id;type:uuid;not null;uniqueIndex:uq_class_thresholds_class_division,priority:1"`
	ClassThresholdDivisionID  *uuid.UUID `json:"class_threshold_division_id,omitempty" gorm:"column:class_threshold_division_id;type:uuid;uniqueIndex:uq_class_thresholds_class_division,priority:2"`
	ClassThresholdMaxCapacity int        `json:"class_threshold_max_capacity" gorm:"column:class_threshold_max_capacity;not null"`

	ClassThresholdCreatedAt time.Time `json:"class_threshold_created_at" gorm:"column:class_threshold_created_at;type:timestamptz;not null;autoCreateTime"`
	ClassThresholdUpdatedAt time.Time `json:"class_threshold_updated_at" gorm:"column:class_threshold_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (ClassThresholdModel) TableName() string { return "class_thresholds" }
