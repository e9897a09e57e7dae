package tables

import "context"

// LayoutModel is strategy A (spec §4.7.1): an external ML table-layout
// collaborator. The core ships no model; callers that have one wire it
// through Processor.LayoutModel. With none configured, strategy A simply
// contributes no candidates and arbitration falls to strategy B.
type LayoutModel interface {
	Detect(ctx context.Context, in Input) (*Candidate, bool, error)
}

// noLayoutModel is the default no-op LayoutModel.
type noLayoutModel struct{}

func (noLayoutModel) Detect(context.Context, Input) (*Candidate, bool, error) {
	return nil, false, nil
}
