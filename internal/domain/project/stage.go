package project

import (
	"strings"

	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// Stage is a production stage the client signs off on
type Stage string

const (
	StageDesign   Stage = "DESIGN"
	StageEditing  Stage = "EDITING"
	StagePrinting Stage = "PRINTING"
	StageDelivery Stage = "DELIVERY"
)

// Stages lists every stage in production order
var Stages = []Stage{StageDesign, StageEditing, StagePrinting, StageDelivery}

func ParseStage(s string) (Stage, error) {
	stage := Stage(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Stages {
		if stage == known {
			return stage, nil
		}
	}
	return "", shared.Validation("unknown stage %q", s)
}

// StageConfirmations holds one set-once flag per stage
type StageConfirmations struct {
	Design   bool `json:"design_confirmed"`
	Editing  bool `json:"editing_confirmed"`
	Printing bool `json:"printing_confirmed"`
	Delivery bool `json:"delivery_confirmed"`
}

func (c *StageConfirmations) flag(stage Stage) (*bool, error) {
	switch stage {
	case StageDesign:
		return &c.Design, nil
	case StageEditing:
		return &c.Editing, nil
	case StagePrinting:
		return &c.Printing, nil
	case StageDelivery:
		return &c.Delivery, nil
	}
	return nil, shared.Validation("unknown stage %q", stage)
}

// Confirm sets the flag for stage and reports whether it changed
func (c *StageConfirmations) Confirm(stage Stage) (bool, error) {
	f, err := c.flag(stage)
	if err != nil {
		return false, err
	}
	if *f {
		return false, nil
	}
	*f = true
	return true, nil
}

func (c StageConfirmations) IsConfirmed(stage Stage) bool {
	f, err := c.flag(stage)
	return err == nil && *f
}
