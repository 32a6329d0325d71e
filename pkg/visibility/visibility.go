package visibility

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-requestform/pkg/model"
)

var (
	// ErrUnknownConditionField signals a condition referencing a field name
	// that does not exist in the form's field set.
	ErrUnknownConditionField = errors.New("visibility: condition references unknown field")
	// ErrConditionCycle signals a cyclic or self-referential condition graph.
	ErrConditionCycle = errors.New("visibility: condition cycle")
	// ErrUnknownEffect signals a condition effect outside the sealed set.
	ErrUnknownEffect = errors.New("visibility: unknown condition effect")
)

// State exposes the current value of each field. The form state controller
// satisfies this; tests can supply a map-backed stub.
type State interface {
	Value(name string) (model.Value, bool)
}

// MapState adapts a plain map into a State for tests and one-off evaluations.
type MapState map[string]model.Value

// Value returns the value stored under name.
func (m MapState) Value(name string) (model.Value, bool) {
	v, ok := m[name]
	return v, ok
}

type rule struct {
	condition model.Condition
	order     int
}

type targetRules struct {
	shows []rule
	hides []rule
	// required overrides keyed by the rule order that carries them
	required map[int]bool
}

// RuleSet is the validated, compiled form of a condition list. Compilation
// rejects unknown field references and cycles so evaluation never has to
// re-interpret raw schema data.
type RuleSet struct {
	fields  []model.Field
	byName  map[string]int
	targets map[string]*targetRules
	// evaluation order for targeted fields; triggers always resolve before
	// their targets
	order []string

	dueDate *model.Field
	gate    string
}

// Compile validates the form's condition list against its field set and
// returns the rule set used for every subsequent evaluation. Schema errors are
// fatal at load time per the error taxonomy.
func Compile(form model.RequestForm) (*RuleSet, error) {
	rs := &RuleSet{
		fields:  form.Fields,
		byName:  make(map[string]int, len(form.Fields)),
		targets: make(map[string]*targetRules),
	}
	for i, f := range form.Fields {
		rs.byName[f.Name] = i
	}

	edges := make(map[string][]string)
	for i, cond := range form.Conditions {
		if _, ok := rs.byName[cond.Field]; !ok {
			return nil, fmt.Errorf("%w: trigger %q", ErrUnknownConditionField, cond.Field)
		}
		if cond.Effect != model.EffectShow && cond.Effect != model.EffectHide {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, cond.Effect)
		}
		for _, target := range cond.Targets {
			if _, ok := rs.byName[target.Field]; !ok {
				return nil, fmt.Errorf("%w: target %q", ErrUnknownConditionField, target.Field)
			}
			if target.Field == cond.Field {
				return nil, fmt.Errorf("%w: %q targets itself", ErrConditionCycle, cond.Field)
			}
			entry := rs.targets[target.Field]
			if entry == nil {
				entry = &targetRules{required: make(map[int]bool)}
				rs.targets[target.Field] = entry
			}
			r := rule{condition: cond, order: i}
			if cond.Effect == model.EffectShow {
				entry.shows = append(entry.shows, r)
			} else {
				entry.hides = append(entry.hides, r)
			}
			if target.Required {
				entry.required[i] = true
			}
			edges[cond.Field] = append(edges[cond.Field], target.Field)
		}
	}

	order, err := topoOrder(rs.targets, edges)
	if err != nil {
		return nil, err
	}
	rs.order = order

	if form.DueDateField != nil {
		dd := form.DueDateField.Clone()
		rs.dueDate = &dd
		for _, f := range form.Fields {
			if f.Type.DueDateGate() {
				rs.gate = f.Name
				break
			}
		}
	}

	return rs, nil
}

// topoOrder sorts targeted fields so every trigger resolves before the fields
// it controls. A back edge means the configuration chains conditions into a
// cycle, which is rejected.
func topoOrder(targets map[string]*targetRules, edges map[string][]string) ([]string, error) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int)
	var order []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("%w: through %q", ErrConditionCycle, name)
		case done:
			return nil
		}
		state[name] = visiting
		for _, next := range edges[name] {
			if err := visit(next); err != nil {
				return err
			}
		}
		state[name] = done
		if _, targeted := targets[name]; targeted {
			order = append(order, name)
		}
		return nil
	}

	for _, trigger := range sortedKeys(edges) {
		if err := visit(trigger); err != nil {
			return nil, err
		}
	}
	for _, target := range sortedKeys(targets) {
		if err := visit(target); err != nil {
			return nil, err
		}
	}
	// post-order DFS emits targets before their triggers; evaluation needs
	// triggers first
	reverse(order)
	return order, nil
}

// Visible returns the ordered subset of fields that should currently render,
// in original schema order, with conditional required overrides applied and
// current values substituted from state. The result is deterministic for a
// given state and safe to call repeatedly.
func (rs *RuleSet) Visible(state State) []model.Field {
	visible := make(map[string]bool, len(rs.fields))
	required := make(map[string]bool)

	for _, f := range rs.fields {
		visible[f.Name] = true
	}
	for _, name := range rs.order {
		entry := rs.targets[name]
		visible[name] = rs.resolve(name, entry, visible, state, required)
	}

	out := make([]model.Field, 0, len(rs.fields))
	for _, f := range rs.fields {
		if !visible[f.Name] {
			continue
		}
		field := f.Clone()
		if v, ok := state.Value(f.Name); ok {
			field.Value = model.CloneValue(v)
		}
		if required[f.Name] {
			field.Required = true
		}
		out = append(out, field)

		// the due-date picker renders directly after the dropdown that gates
		// it, and only while that dropdown holds the task sentinel
		if rs.dueDate != nil && f.Name == rs.gate {
			if v, ok := state.Value(f.Name); ok && model.ValueString(v) == model.TaskSentinel {
				dd := rs.dueDate.Clone()
				if ddv, ok := state.Value(dd.Name); ok {
					dd.Value = model.CloneValue(ddv)
				}
				out = append(out, dd)
			}
		}
	}
	return out
}

// resolve computes one targeted field's visibility. Hide wins over show when
// satisfied rules conflict; a field targeted only by show rules is hidden
// until one of them is satisfied. A rule whose trigger is itself hidden is
// treated as not satisfied.
func (rs *RuleSet) resolve(name string, entry *targetRules, visible map[string]bool, state State, required map[string]bool) bool {
	if entry == nil {
		return true
	}

	showSatisfied := false
	for _, r := range entry.shows {
		if rs.satisfied(r.condition, visible, state) {
			showSatisfied = true
			if entry.required[r.order] {
				required[name] = true
			}
		}
	}
	for _, r := range entry.hides {
		if rs.satisfied(r.condition, visible, state) {
			return false
		}
	}
	if len(entry.shows) > 0 {
		return showSatisfied
	}
	return true
}

func (rs *RuleSet) satisfied(cond model.Condition, visible map[string]bool, state State) bool {
	if !visible[cond.Field] {
		return false
	}
	current, ok := state.Value(cond.Field)
	if !ok {
		return false
	}
	return matches(current, cond.Values)
}
