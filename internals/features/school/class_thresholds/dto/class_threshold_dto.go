// file: internals/features/school/class_thresholds/dto/class_threshold_dto.go
package dto

import (
	"github.com/google/uuid"

	"schoolfee_backend/internals/features/school/class_thresholds/model"
)

type ClassThresholdCreateDTO struct {
	ClassThresholdClassID     uuid.UUID  `json:"class_threshold_class_id" validate:"required"`
	ClassThresholdDivisionID  *uuid.UUID `json:"class_threshold_division_id,omitempty"`
	ClassThresholdMaxCapacity int        `json:"class_threshold_max_capacity" validate:"required,min=1,max=10000"`
}

type ClassThresholdUpdateDTO struct {
	ClassThresholdMaxCapacity int `json:"class_threshold_max_capacity" validate:"required,min=1,max=10000"`
}

func (in ClassThresholdCreateDTO) ToModel() model.ClassThresholdModel {
	return model.ClassThresholdModel{
		ClassThresholdClassID:     in.ClassThresholdClassID,
		ClassThresholdDivisionID:  in.ClassThresholdDivisionID,
		ClassThresholdMaxCapacity: in.ClassThresholdMaxCapacity,
	}
}
