package common

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Key is a single point on a Curve.
type Key struct {
	Time  float64 `yaml:"t"`
	Value float64 `yaml:"v"`
}

// Curve is a piecewise-linear function used for tuning tables such as
// "acceleration factor as a function of relative speed". Evaluate clamps to
// the first and last keys outside the keyed range.
type Curve struct {
	Keys []Key
}

// NewCurve builds a curve from (time, value) pairs.
func NewCurve(pairs ...[2]float64) Curve {
	c := Curve{Keys: make([]Key, 0, len(pairs))}
	for _, p := range pairs {
		c.Keys = append(c.Keys, Key{Time: p[0], Value: p[1]})
	}
	c.sort()
	return c
}

// ConstantCurve returns a curve that evaluates to v everywhere.
func ConstantCurve(v float64) Curve {
	return Curve{Keys: []Key{{Time: 0, Value: v}}}
}

// LinearCurve returns the identity curve over [0, 1].
func LinearCurve() Curve {
	return NewCurve([2]float64{0, 0}, [2]float64{1, 1})
}

func (c *Curve) sort() {
	sort.SliceStable(c.Keys, func(i, j int) bool { return c.Keys[i].Time < c.Keys[j].Time })
}

// Evaluate samples the curve at t.
func (c Curve) Evaluate(t float64) float64 {
	n := len(c.Keys)
	switch {
	case n == 0:
		return 0
	case n == 1 || t <= c.Keys[0].Time:
		return c.Keys[0].Value
	case t >= c.Keys[n-1].Time:
		return c.Keys[n-1].Value
	}

	i := sort.Search(n, func(i int) bool { return c.Keys[i].Time >= t })
	a, b := c.Keys[i-1], c.Keys[i]
	if b.Time == a.Time {
		return b.Value
	}
	return Lerp(a.Value, b.Value, (t-a.Time)/(b.Time-a.Time))
}

// UnmarshalYAML accepts either a scalar (constant curve), a list of
// [t, v] pairs, or a list of {t, v} maps.
func (c *Curve) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := value.Decode(&v); err != nil {
			return fmt.Errorf("curve: %w", err)
		}
		*c = ConstantCurve(v)
		return nil
	case yaml.SequenceNode:
		keys := make([]Key, 0, len(value.Content))
		for _, item := range value.Content {
			switch item.Kind {
			case yaml.SequenceNode:
				var pair []float64
				if err := item.Decode(&pair); err != nil {
					return fmt.Errorf("curve: %w", err)
				}
				if len(pair) != 2 {
					return fmt.Errorf("curve: key must have 2 values, got %d", len(pair))
				}
				keys = append(keys, Key{Time: pair[0], Value: pair[1]})
			case yaml.MappingNode:
				var k Key
				if err := item.Decode(&k); err != nil {
					return fmt.Errorf("curve: %w", err)
				}
				keys = append(keys, k)
			default:
				return fmt.Errorf("curve: unexpected key node at line %d", item.Line)
			}
		}
		c.Keys = keys
		c.sort()
		return nil
	default:
		return fmt.Errorf("curve: must be a number or a list of keys")
	}
}
