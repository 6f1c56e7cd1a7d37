package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/c3kit/c3"
	"github.com/joshuapare/c3kit/c3/address"
	"github.com/joshuapare/c3kit/c3/keys"
	"github.com/joshuapare/c3kit/internal/logger"
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVar(&charsetFlag, "charset", "", "Payload charset (utf-8, latin1, windows-1252, ...)")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a scripted allocate/store/read/free scenario",
		Long: `The run command executes the steps of a YAML scenario against one
space. Allocations are named so later steps can refer to them; steps may run
in any declared key domain and may assert their outcome.

Example scenario:
  config:
    mode: cipher
  domains:
    - name: attacker
  steps:
    - {op: alloc, name: buf, size: 64}
    - {op: store, name: buf, data: "secret"}
    - {op: read, name: buf, length: 6, want: "secret"}
    - {op: read, name: buf, length: 6, domain: attacker, expect: violation}
    - {op: free, name: buf}

Example:
  c3ctl run uaf.yaml
  c3ctl run uaf.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(args[0])
		},
	}
}

// Scenario is a scripted session.
type Scenario struct {
	Config  c3.Config `yaml:"config"`
	Domains []Domain  `yaml:"domains" validate:"dive"`
	Steps   []Step    `yaml:"steps" validate:"required,min=1,dive"`
}

// Domain declares an extra key domain. Zero keys are random.
type Domain struct {
	Name       string `yaml:"name" validate:"required,ne=main"`
	PointerKey uint32 `yaml:"pointer_key" validate:"lte=16777215"`
	DataKey    uint32 `yaml:"data_key" validate:"lte=16777215"`
}

// Step is one operation. Domain defaults to "main".
type Step struct {
	Op     string  `yaml:"op" validate:"required,oneof=alloc store read free"`
	Name   string  `yaml:"name" validate:"required"`
	Domain string  `yaml:"domain"`
	Size   uint64  `yaml:"size" validate:"required_if=Op alloc"`
	Hint   *uint64 `yaml:"hint"`
	Offset uint64  `yaml:"offset"`
	Data   string  `yaml:"data" validate:"required_if=Op store"`
	Length uint64  `yaml:"length" validate:"required_if=Op read"`
	Want   *string `yaml:"want"`
	Expect string  `yaml:"expect" validate:"omitempty,oneof=ok violation error"`
}

// StepResult is the outcome of a Step.
type StepResult struct {
	Index     int            `json:"index"`
	Op        string         `json:"op"`
	Name      string         `json:"name"`
	Domain    string         `json:"domain"`
	Outcome   string         `json:"outcome"`
	CA        string         `json:"ca,omitempty"`
	Data      string         `json:"data,omitempty"`
	Violation map[string]int `json:"violation,omitempty"`
	Error     string         `json:"error,omitempty"`
	Passed    bool           `json:"passed"`
}

var scenarioValidate = validator.New(validator.WithRequiredStructEnabled())

// loadScenario reads path over the effective config.
func loadScenario(path string) (*Scenario, error) {
	base, err := loadConfig()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	sc := &Scenario{Config: base}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	// flags win over the scenario's own config
	if err := applyFlags(&sc.Config); err != nil {
		return nil, err
	}
	if err := scenarioValidate.Struct(sc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, fmt.Errorf("scenario %s: %s fails %q", path, fe.Namespace(), fe.Tag())
		}
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

type handle struct {
	ca    address.CA
	owner string
}

// scenarioRunner holds the domains and named allocations of a run.
type scenarioRunner struct {
	domains map[string]*c3.Model
	handles map[string]handle
	pc      payloadCodec
}

func runScenario(path string) error {
	pc, err := newPayloadCodec(charsetFlag)
	if err != nil {
		return err
	}
	sc, err := loadScenario(path)
	if err != nil {
		return err
	}

	root, err := c3.New(sc.Config, c3.WithLogger(logger.L))
	if err != nil {
		return err
	}
	r := &scenarioRunner{
		domains: map[string]*c3.Model{"main": root},
		handles: make(map[string]handle),
		pc:      pc,
	}
	defer r.close()

	for _, d := range sc.Domains {
		if _, dup := r.domains[d.Name]; dup {
			return fmt.Errorf("scenario: duplicate domain %q", d.Name)
		}
		m, err := root.Sibling(keys.Pair{Pointer: keys.PointerKey(d.PointerKey), Data: keys.DataKey(d.DataKey)})
		if err != nil {
			return fmt.Errorf("scenario: domain %q: %w", d.Name, err)
		}
		r.domains[d.Name] = m
	}

	printVerbose("Running %d step(s) from %s\n", len(sc.Steps), path)
	if !jsonOut {
		printInfo("%s\n", render(headerStyle, "scenario "+path))
	}

	results := make([]StepResult, 0, len(sc.Steps))
	failed := 0
	for i, st := range sc.Steps {
		res := r.step(i, st)
		if !res.Passed {
			failed++
		}
		results = append(results, res)
		if !jsonOut {
			printResult(res)
		}
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("scenario: %d of %d step(s) did not match expectations", failed, len(sc.Steps))
	}
	return nil
}

func (r *scenarioRunner) close() {
	for _, m := range r.domains {
		_ = m.Close()
	}
}

func (r *scenarioRunner) step(i int, st Step) StepResult {
	dom := st.Domain
	if dom == "" {
		dom = "main"
	}
	res := StepResult{Index: i, Op: st.Op, Name: st.Name, Domain: dom}

	m, ok := r.domains[dom]
	if !ok {
		res.Outcome = "error"
		res.Error = fmt.Sprintf("unknown domain %q", dom)
		return res
	}

	var err error
	switch st.Op {
	case "alloc":
		var ca address.CA
		if ca, err = m.AllocateAt(st.Size, st.Hint); err == nil {
			r.handles[st.Name] = handle{ca: ca, owner: dom}
			res.CA = ca.String()
		}
	case "store":
		err = r.withHandle(st, m, &res, func(ca address.CA) error {
			b, err := r.pc.Encode(st.Data)
			if err != nil {
				return err
			}
			return m.Store(ca, b)
		})
	case "read":
		err = r.withHandle(st, m, &res, func(ca address.CA) error {
			data, err := m.Read(ca, st.Length)
			if err == nil {
				res.Data = r.pc.Decode(data)
			}
			return err
		})
	case "free":
		err = r.withHandle(st, m, &res, func(ca address.CA) error {
			return m.Free(ca)
		})
	}

	var v *c3.Violation
	switch {
	case err == nil:
		res.Outcome = "ok"
	case errors.As(err, &v):
		res.Outcome = "violation"
		res.Violation = violationCounts(v)
	default:
		res.Outcome = "error"
		res.Error = err.Error()
	}

	expect := st.Expect
	if expect == "" {
		expect = "ok"
	}
	res.Passed = res.Outcome == expect
	if res.Passed && st.Want != nil && res.Data != *st.Want {
		res.Passed = false
		res.Error = fmt.Sprintf("read %q, want %q", res.Data, *st.Want)
	}
	return res
}

// withHandle resolves st.Name and its offset in domain m.
func (r *scenarioRunner) withHandle(st Step, m *c3.Model, res *StepResult, fn func(address.CA) error) error {
	h, ok := r.handles[st.Name]
	if !ok {
		return fmt.Errorf("unknown allocation %q", st.Name)
	}
	ca := h.ca
	if st.Offset > 0 {
		ca = m.Advance(ca, st.Offset)
	}
	res.CA = ca.String()
	return fn(ca)
}

func printResult(res StepResult) {
	status := render(okStyle, "PASS")
	if !res.Passed {
		status = render(violationStyle, "FAIL")
	}
	line := fmt.Sprintf("%s %2d %-5s %-10s %-8s %s", status, res.Index, res.Op, res.Name, res.Domain, render(caStyle, res.CA))
	switch res.Outcome {
	case "violation":
		line += " " + render(violationStyle, "VIOLATION") + fmt.Sprintf(" %v", res.Violation)
	case "error":
		line += " " + render(warnStyle, res.Error)
	default:
		if res.Data != "" {
			line += fmt.Sprintf(" %q", res.Data)
		}
		if res.Error != "" {
			line += " " + render(warnStyle, res.Error)
		}
	}
	printInfo("%s\n", line)
}
