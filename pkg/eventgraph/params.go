package eventgraph

import "fmt"

// Values is a parameter snapshot taken at bake time.
type Values map[string]any

// Get returns the value of a parameter and whether it exists.
func (v Values) Get(name string) (any, bool) {
	val, ok := v[name]
	return val, ok
}

// Parameter is a named graph input with a current value.
type Parameter struct {
	Name  string
	Value any
}

// Parameters holds the parameters of a graph in definition order.
type Parameters struct {
	order  []string
	byName map[string]*Parameter
}

// NewParameters creates an empty parameter set.
func NewParameters() *Parameters {
	return &Parameters{byName: make(map[string]*Parameter)}
}

// Set defines a parameter, or updates its value if it already exists.
func (p *Parameters) Set(name string, value any) *Parameters {
	if param, ok := p.byName[name]; ok {
		param.Value = value
		return p
	}
	p.byName[name] = &Parameter{Name: name, Value: value}
	p.order = append(p.order, name)
	return p
}

// Get returns the named parameter.
func (p *Parameters) Get(name string) (*Parameter, bool) {
	param, ok := p.byName[name]
	return param, ok
}

// Names returns parameter names in definition order.
func (p *Parameters) Names() []string {
	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

// Snapshot copies the current values.
func (p *Parameters) Snapshot() Values {
	values := make(Values, len(p.byName))
	for name, param := range p.byName {
		values[name] = param.Value
	}
	return values
}

// ParameterOverride temporarily replaces one parameter value.
// Overwrite swaps the override in; Restore puts the original back.
type ParameterOverride interface {
	Overwrite()
	Restore()
}

// OverrideSet is a group of overrides applied around a single bake.
type OverrideSet interface {
	Parameters() []ParameterOverride
}

// Overrides is the standard OverrideSet, bound to one graph's parameters.
//
// Example:
//
//	overrides := eventgraph.NewOverrides(graph.Parameters())
//	if err := overrides.Set("speaker", "guard"); err != nil {
//	    return err
//	}
//	err := processor.BakeWithOverrides(overrides)
type Overrides struct {
	params  *Parameters
	entries []*override
}

// NewOverrides creates an empty override set for params.
func NewOverrides(params *Parameters) *Overrides {
	return &Overrides{params: params}
}

// Set records an override for the named parameter.
// Setting the same name twice keeps the last value.
func (o *Overrides) Set(name string, value any) error {
	param, ok := o.params.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	for _, e := range o.entries {
		if e.param == param {
			e.value = value
			return nil
		}
	}
	o.entries = append(o.entries, &override{param: param, value: value})
	return nil
}

// Len returns the number of overridden parameters.
func (o *Overrides) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

// Values returns the snapshot a bake with these overrides would see,
// without touching the parameters.
func (o *Overrides) Values() Values {
	if o == nil {
		return nil
	}
	values := o.params.Snapshot()
	for _, e := range o.entries {
		values[e.param.Name] = e.value
	}
	return values
}

// Parameters implements OverrideSet.
func (o *Overrides) Parameters() []ParameterOverride {
	if o == nil {
		return nil
	}
	list := make([]ParameterOverride, len(o.entries))
	for i, e := range o.entries {
		list[i] = e
	}
	return list
}

type override struct {
	param  *Parameter
	value  any
	saved  any
	active bool
}

func (o *override) Overwrite() {
	if o.active {
		return
	}
	o.saved = o.param.Value
	o.param.Value = o.value
	o.active = true
}

func (o *override) Restore() {
	if !o.active {
		return
	}
	o.param.Value = o.saved
	o.saved = nil
	o.active = false
}
