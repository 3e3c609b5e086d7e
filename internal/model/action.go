package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ActionType is the wire discriminant of an Action.
type ActionType string

const (
	ActionUpdateStakeholderRole ActionType = "update_stakeholder_role"
	ActionAddMetric             ActionType = "add_metric"
	ActionAddNote               ActionType = "add_note"
	ActionMarkAreaIrrelevant    ActionType = "mark_area_irrelevant"
	ActionUnmarkAreaIrrelevant  ActionType = "unmark_area_irrelevant"
	ActionSetAreaPriority       ActionType = "set_area_priority"
	ActionUpdateStage           ActionType = "update_stage"
	ActionUpdateVertical        ActionType = "update_vertical"
	ActionUpdateOwnership       ActionType = "update_ownership"
	ActionResolveGap            ActionType = "resolve_gap"
	ActionAddGap                ActionType = "add_gap"
	ActionRenameAccount         ActionType = "rename_account"
	ActionDeleteAccount         ActionType = "delete_account"
)

// Action is a typed point-edit against an Account. The set of implementations
// is closed; see DecodeAction for the wire mapping.
type Action interface {
	Type() ActionType
	action()
}

// UpdateStakeholderRole sets the role of an existing stakeholder.
type UpdateStakeholderRole struct {
	Name    string `json:"name"`
	NewRole Role   `json:"newRole"`
}

// AddMetric sets a metric value.
type AddMetric struct {
	MetricID string `json:"metricId"`
	Value    any    `json:"value"`
	Context  string `json:"context,omitempty"`
}

// AddNote appends a free-text note.
type AddNote struct {
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// MarkAreaIrrelevant flags a business area as not applicable.
type MarkAreaIrrelevant struct {
	AreaID string `json:"areaId"`
	Reason string `json:"reason,omitempty"`
}

// UnmarkAreaIrrelevant clears the irrelevant flag on a business area.
type UnmarkAreaIrrelevant struct {
	AreaID string `json:"areaId"`
}

// SetAreaPriority sets the priority of a business area.
type SetAreaPriority struct {
	AreaID   string   `json:"areaId"`
	Priority Priority `json:"priority"`
}

// UpdateStage moves the account to another pipeline stage.
type UpdateStage struct {
	Stage string `json:"stage"`
}

// UpdateVertical sets the industry vertical.
type UpdateVertical struct {
	Vertical string `json:"vertical"`
}

// UpdateOwnership sets the ownership classification.
type UpdateOwnership struct {
	Ownership string `json:"ownership"`
}

// ResolveGap answers an information gap, matched by id or question text.
type ResolveGap struct {
	GapID      string `json:"gapId,omitempty"`
	Question   string `json:"question,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// AddGap records a new open question.
type AddGap struct {
	Question        string `json:"question"`
	Category        string `json:"category,omitempty"`
	MEDDICCCategory string `json:"meddiccCategory,omitempty"`
}

// RenameAccount changes the display name.
type RenameAccount struct {
	Name string `json:"name"`
}

// DeleteAccount removes the account entirely.
type DeleteAccount struct{}

// UnknownAction carries a type the applier does not recognise.
type UnknownAction struct {
	Kind string `json:"-"`
}

func (UpdateStakeholderRole) Type() ActionType { return ActionUpdateStakeholderRole }
func (AddMetric) Type() ActionType             { return ActionAddMetric }
func (AddNote) Type() ActionType               { return ActionAddNote }
func (MarkAreaIrrelevant) Type() ActionType    { return ActionMarkAreaIrrelevant }
func (UnmarkAreaIrrelevant) Type() ActionType  { return ActionUnmarkAreaIrrelevant }
func (SetAreaPriority) Type() ActionType       { return ActionSetAreaPriority }
func (UpdateStage) Type() ActionType           { return ActionUpdateStage }
func (UpdateVertical) Type() ActionType        { return ActionUpdateVertical }
func (UpdateOwnership) Type() ActionType       { return ActionUpdateOwnership }
func (ResolveGap) Type() ActionType            { return ActionResolveGap }
func (AddGap) Type() ActionType                { return ActionAddGap }
func (RenameAccount) Type() ActionType         { return ActionRenameAccount }
func (DeleteAccount) Type() ActionType         { return ActionDeleteAccount }
func (u UnknownAction) Type() ActionType       { return ActionType(u.Kind) }

func (UpdateStakeholderRole) action() {}
func (AddMetric) action()             {}
func (AddNote) action()               {}
func (MarkAreaIrrelevant) action()    {}
func (UnmarkAreaIrrelevant) action()  {}
func (SetAreaPriority) action()       {}
func (UpdateStage) action()           {}
func (UpdateVertical) action()        {}
func (UpdateOwnership) action()       {}
func (ResolveGap) action()            {}
func (AddGap) action()                {}
func (RenameAccount) action()         {}
func (DeleteAccount) action()         {}
func (UnknownAction) action()         {}

// DecodeAction reads one action from its wire shape {type, ...fields}.
// It never fails: an unreadable envelope becomes an UnknownAction and a
// known type with unreadable fields decodes to its zero value, which the
// applier treats as a no-op.
func DecodeAction(raw json.RawMessage) Action {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		zap.L().Debug("action: unreadable envelope", zap.Error(err))
		return UnknownAction{}
	}

	switch ActionType(env.Type) {
	case ActionUpdateStakeholderRole:
		return decodeInto[UpdateStakeholderRole](raw)
	case ActionAddMetric:
		return decodeInto[AddMetric](raw)
	case ActionAddNote:
		return decodeInto[AddNote](raw)
	case ActionMarkAreaIrrelevant:
		return decodeInto[MarkAreaIrrelevant](raw)
	case ActionUnmarkAreaIrrelevant:
		return decodeInto[UnmarkAreaIrrelevant](raw)
	case ActionSetAreaPriority:
		return decodeInto[SetAreaPriority](raw)
	case ActionUpdateStage:
		return decodeInto[UpdateStage](raw)
	case ActionUpdateVertical:
		return decodeInto[UpdateVertical](raw)
	case ActionUpdateOwnership:
		return decodeInto[UpdateOwnership](raw)
	case ActionResolveGap:
		return decodeInto[ResolveGap](raw)
	case ActionAddGap:
		return decodeInto[AddGap](raw)
	case ActionRenameAccount:
		return decodeInto[RenameAccount](raw)
	case ActionDeleteAccount:
		return DeleteAccount{}
	default:
		return UnknownAction{Kind: env.Type}
	}
}

func decodeInto[T Action](raw json.RawMessage) Action {
	var a T
	if err := json.Unmarshal(raw, &a); err != nil {
		zap.L().Debug("action: unreadable fields",
			zap.String("type", string(a.Type())),
			zap.Error(err),
		)
		var zero T
		return zero
	}
	return a
}

// DecodeActions reads a JSON array of actions.
func DecodeActions(data []byte) ([]Action, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, eris.Wrap(err, "action: decode list")
	}
	out := make([]Action, 0, len(raws))
	for _, r := range raws {
		out = append(out, DecodeAction(r))
	}
	return out, nil
}

// EncodeAction writes an action in its wire shape.
func EncodeAction(a Action) (json.RawMessage, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, eris.Wrapf(err, "action: encode %s", a.Type())
	}
	fields := map[string]any{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, eris.Wrapf(err, "action: encode %s", a.Type())
	}
	fields["type"] = string(a.Type())
	out, err := json.Marshal(fields)
	return out, eris.Wrapf(err, "action: encode %s", a.Type())
}

// ActionList is a JSON-decodable batch of actions.
type ActionList []Action

// UnmarshalJSON implements json.Unmarshaler.
func (l *ActionList) UnmarshalJSON(data []byte) error {
	actions, err := DecodeActions(data)
	if err != nil {
		return err
	}
	*l = actions
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l ActionList) MarshalJSON() ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(l))
	for _, a := range l {
		r, err := EncodeAction(a)
		if err != nil {
			return nil, err
		}
		raws = append(raws, r)
	}
	return json.Marshal(raws)
}

// MessageLevel grades an outcome message.
type MessageLevel string

const (
	MessageSuccess MessageLevel = "success"
	MessageWarning MessageLevel = "warning"
)

// Message is a user-facing outcome of applying one action.
type Message struct {
	Level MessageLevel `json:"level"`
	Text  string       `json:"text"`
}
