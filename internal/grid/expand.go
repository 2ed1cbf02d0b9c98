package grid

import (
	"strconv"

	"github.com/matzegoebel/run-wrf/internal/namelist"
)

// axis position: the ordered assignments contributed by choosing one
// value of one grid entry.
type position struct {
	keys   []string
	values []namelist.Value
}

func (e Entry) positions() ([]position, error) {
	if !e.IsComposite() {
		if len(e.Values) == 0 {
			return nil, &EmptyAxisError{Axis: e.Name}
		}
		out := make([]position, len(e.Values))
		for i, v := range e.Values {
			out[i] = position{keys: []string{e.Name}, values: []namelist.Value{v}}
		}
		return out, nil
	}

	length := len(e.Sub[0].Values)
	if length == 0 {
		return nil, &EmptyAxisError{Axis: e.Name}
	}
	for _, s := range e.Sub {
		if len(s.Values) != length {
			return nil, &CompositeLengthError{Composite: e.Name}
		}
	}
	out := make([]position, length)
	for i := 0; i < length; i++ {
		p := position{}
		for _, s := range e.Sub {
			p.keys = append(p.keys, s.Name)
			p.values = append(p.values, s.Values[i])
		}
		// synthetic index parameter records which lockstep position
		// was chosen; resolved to a label later
		p.keys = append(p.keys, e.Name+"_idx")
		p.values = append(p.values, namelist.Int(int64(i)))
		out[i] = p
	}
	return out, nil
}

// Expand computes the Cartesian product of all grid axes in declaration
// order, merges the base parameters into every combination (grid values
// take precedence) and derives the run identifier for each. An empty
// grid yields exactly one configuration holding the base parameters.
func Expand(g ParameterGrid, base *namelist.Params, labels Labels, seriesID string) ([]Configuration, error) {
	if err := requireLabelsForComposites(g, labels); err != nil {
		return nil, err
	}

	axes := make([][]position, 0, len(g.Entries))
	for _, e := range g.Entries {
		ps, err := e.positions()
		if err != nil {
			return nil, err
		}
		axes = append(axes, ps)
	}

	var configs []Configuration
	indices := make([]int, len(axes))
	for {
		varied := namelist.NewParams()
		for ai, axis := range axes {
			p := axis[indices[ai]]
			for ki, k := range p.keys {
				varied.Set(k, p.values[ki])
			}
		}
		full := varied.Clone()
		full.Merge(base)

		name, err := runID(g, labels, varied, seriesID)
		if err != nil {
			return nil, err
		}
		configs = append(configs, Configuration{Name: name, Params: full, Varied: varied})

		// advance odometer, last axis fastest
		done := true
		for ai := len(axes) - 1; ai >= 0; ai-- {
			indices[ai]++
			if indices[ai] < len(axes[ai]) {
				done = false
				break
			}
			indices[ai] = 0
		}
		if done {
			break
		}
	}
	return configs, nil
}

func requireLabelsForComposites(g ParameterGrid, labels Labels) error {
	for _, e := range g.Entries {
		if e.IsComposite() && labels == nil {
			return &LabelsRequiredError{Composite: e.Name}
		}
	}
	return nil
}

// runID builds the display identifier: one token per grid axis in
// declaration order, with friendly labels substituted where available,
// prefixed by the series identifier.
func runID(g ParameterGrid, labels Labels, varied *namelist.Params, seriesID string) (string, error) {
	tokens := make([]string, 0, len(g.Entries))
	for _, e := range g.Entries {
		if e.IsComposite() {
			idxVal, _ := varied.Get(e.Name + "_idx")
			idx, _ := idxVal.AsInt()
			ls, ok := labels[e.Name]
			if !ok {
				// unnamed composite: the lockstep index itself is the token
				tokens = append(tokens, strconv.FormatInt(idx, 10))
				continue
			}
			if ls.ByIndex == nil || int(idx) >= len(ls.ByIndex) {
				return "", &LabelsRequiredError{Composite: e.Name}
			}
			tokens = append(tokens, ls.ByIndex[idx])
			continue
		}

		v, _ := varied.Get(e.Name)
		if ls, ok := labels[e.Name]; ok {
			if ls.ByValue != nil {
				if label, ok := ls.ByValue[v.String()]; ok {
					tokens = append(tokens, label)
					continue
				}
			}
			if ls.ByIndex != nil {
				for i, gv := range e.Values {
					if gv.Equal(v) && i < len(ls.ByIndex) {
						tokens = append(tokens, ls.ByIndex[i])
						break
					}
				}
				continue
			}
		}
		tokens = append(tokens, v.String())
	}

	id := ""
	for i, t := range tokens {
		if i > 0 {
			id += "_"
		}
		id += t
	}
	if seriesID != "" {
		if id == "" {
			return seriesID, nil
		}
		id = seriesID + "_" + id
	}
	return id, nil
}
