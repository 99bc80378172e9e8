package intake

import (
	"context"

	"partner-intake/internal/models"
)

// Snapshot is the serialisable state of a Form.
type Snapshot struct {
	SessionID string         `json:"sessionId"`
	Step      int            `json:"step"`
	Phase     Phase          `json:"phase"`
	IsUpdate  bool           `json:"isUpdate"`
	Answers   models.Contact `json:"answers"`
}

func (f *Form) Snapshot() Snapshot {
	return Snapshot{
		SessionID: f.sessionID,
		Step:      f.machine.Step(),
		Phase:     f.machine.Phase(),
		IsUpdate:  f.isUpdate,
		Answers:   draft(f.answers),
	}
}

// RestoreForm rebuilds a Form from a snapshot. The market configuration is looked
// up again so a market removed since the snapshot is reported as missing.
func RestoreForm(ctx context.Context, deps Dependencies, snap Snapshot) (*Form, error) {
	market, err := lookupMarket(ctx, deps.Markets, snap.Answers.MarketType, snap.Answers.TargetMarket)
	if err != nil {
		return nil, err
	}
	machine, err := RestoreStepMachine(snap.Step, snap.Phase)
	if err != nil {
		return nil, err
	}
	return newForm(deps, snap.SessionID, market, AnswersFromContact(snap.Answers), machine, snap.IsUpdate), nil
}
