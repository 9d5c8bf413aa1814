package bench

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/randomizedcoder/msqueue/internal/queue"
)

// ErrEmptyPlan is returned when a plan expands to no runs.
var ErrEmptyPlan = errors.New("plan has no runs")

// Plan is a sweep of benchmark runs loaded from YAML:
//
//	runs:
//	  - queues: [lockfree, blocking]
//	    producers: [1, 2, 4, 8]
//	    consumers: [1, 2, 4, 8]
//	    elements: 1000000
//	    repeat: 3
type Plan struct {
	Runs []PlanEntry `yaml:"runs"`
}

// PlanEntry expands to the cartesian product of its queues, producers and
// consumers, each repeated Repeat times.
type PlanEntry struct {
	Queues    []string `yaml:"queues"`
	Producers []int    `yaml:"producers"`
	Consumers []int    `yaml:"consumers"`
	Elements  int      `yaml:"elements"`
	Repeat    int      `yaml:"repeat"`
	Pin       bool     `yaml:"pin"`

	// Verify defaults to true when omitted.
	Verify *bool `yaml:"verify"`
}

// ParsePlan decodes a plan. Unknown fields are rejected.
func ParsePlan(r io.Reader) (Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(r, yaml.Strict())
	if err := dec.Decode(&p); err != nil {
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}
	return p, nil
}

// LoadPlan reads and decodes the plan file at path.
func LoadPlan(path string) (Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return Plan{}, fmt.Errorf("open plan: %w", err)
	}
	defer f.Close()

	return ParsePlan(f)
}

// Configs expands the plan into run configurations. Fields the plan does
// not set (the progress interval) are taken from base. Every expanded
// configuration is validated.
func (p Plan) Configs(base Config) ([]Config, error) {
	var out []Config
	for i, e := range p.Runs {
		verify := true
		if e.Verify != nil {
			verify = *e.Verify
		}
		repeat := max(e.Repeat, 1)

		for _, name := range e.Queues {
			kind, err := queue.ParseKind(name)
			if err != nil {
				return nil, fmt.Errorf("run %d: %w", i, err)
			}
			for _, producers := range e.Producers {
				for _, consumers := range e.Consumers {
					cfg := base
					cfg.Kind = kind
					cfg.Producers = producers
					cfg.Consumers = consumers
					cfg.Elements = e.Elements
					cfg.Pin = e.Pin
					cfg.Verify = verify
					if err := cfg.Validate(); err != nil {
						return nil, fmt.Errorf("run %d: %w", i, err)
					}
					for r := 0; r < repeat; r++ {
						out = append(out, cfg)
					}
				}
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyPlan
	}
	return out, nil
}
