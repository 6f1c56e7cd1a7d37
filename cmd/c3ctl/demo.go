package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/c3kit/c3"
	"github.com/joshuapare/c3kit/c3/address"
	"github.com/joshuapare/c3kit/c3/keys"
)

var (
	demoSize    uint64
	demoHint    string
	demoPayload string
)

func init() {
	cmd := newDemoCmd()
	cmd.Flags().Uint64Var(&demoSize, "size", 12888, "Allocation size in bytes")
	cmd.Flags().StringVar(&demoHint, "hint", "", "Lowest acceptable base address")
	cmd.Flags().StringVar(&demoPayload, "payload", "AAAA", "Bytes to store and read back")
	cmd.Flags().StringVar(&charsetFlag, "charset", "", "Payload charset (utf-8, latin1, windows-1252, ...)")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Allocate, store and read, then show use-after-free and cross-domain detection",
		Long: `The demo command allocates --size bytes, prints the capability
address, stores --payload and reads it back. It then frees the allocation,
reallocates the same bytes and reads through the stale CA, and finally reads
the live allocation from a second key domain.

Example:
  c3ctl demo
  c3ctl demo --size 64 --payload hello --mode random --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
}

// demoStep is one reported outcome.
type demoStep struct {
	Step      string         `json:"step"`
	CA        string         `json:"ca,omitempty"`
	Power     uint           `json:"power,omitempty"`
	Data      string         `json:"data,omitempty"`
	Stored    string         `json:"ciphertext,omitempty"`
	Violation map[string]int `json:"violation,omitempty"`
	Error     string         `json:"error,omitempty"`
}

type demoReport struct {
	Space string     `json:"space"`
	Mode  string     `json:"mode"`
	Steps []demoStep `json:"steps"`
	Stats c3.Stats   `json:"stats"`
}

func runDemo() error {
	pc, err := newPayloadCodec(charsetFlag)
	if err != nil {
		return err
	}
	payload, err := pc.Encode(demoPayload)
	if err != nil {
		return err
	}

	m, err := newModel()
	if err != nil {
		return err
	}
	defer m.Close()

	var hint *uint64
	if demoHint != "" {
		h, err := parseUint(demoHint, 64)
		if err != nil {
			return fmt.Errorf("invalid --hint: %w", err)
		}
		hint = &h
	}

	rep := demoReport{Space: m.SpaceID().String(), Mode: m.Mode().String()}
	report := func(s demoStep) {
		rep.Steps = append(rep.Steps, s)
		if !jsonOut {
			printStep(s)
		}
	}

	ca, err := m.AllocateAt(demoSize, hint)
	if err != nil {
		return err
	}
	report(demoStep{Step: "allocate", CA: ca.String(), Power: ca.Power()})

	if err := m.Store(ca, payload); err != nil {
		return err
	}
	report(readStep(m, "read", ca, len(payload), pc))

	// use-after-free: the stale CA outlives a free and a reallocation
	if err := m.Free(ca); err != nil {
		return err
	}
	fresh, err := m.AllocateAt(demoSize, hint)
	if err != nil {
		return err
	}
	report(demoStep{Step: "reallocate", CA: fresh.String(), Power: fresh.Power()})
	report(readStep(m, "stale read", ca, len(payload), pc))

	if err := m.Store(fresh, payload); err != nil {
		return err
	}
	report(readStep(m, "fresh read", fresh, len(payload), pc))

	// cross-domain: a second key pair over the same space
	other, err := m.Sibling(keys.Pair{})
	if err != nil {
		return err
	}
	defer other.Close()
	report(readStep(other, "foreign read", fresh, len(payload), pc))

	rep.Stats = m.Stats()
	if jsonOut {
		return printJSON(rep)
	}
	printVerbose("records %d (live %d), pages %d\n",
		rep.Stats.Monitor.Records, rep.Stats.Monitor.Live, rep.Stats.Pages)
	return nil
}

func readStep(m *c3.Model, name string, ca address.CA, n int, pc payloadCodec) demoStep {
	s := demoStep{Step: name, CA: ca.String()}
	data, err := m.Read(ca, uint64(n))
	var v *c3.Violation
	switch {
	case errors.As(err, &v):
		s.Violation = violationCounts(v)
	case err != nil:
		s.Error = err.Error()
	default:
		s.Data = pc.Decode(data)
	}
	if raw, err := m.Ciphertext(ca, uint64(n)); err == nil {
		s.Stored = hex.EncodeToString(raw)
	}
	return s
}

func violationCounts(v *c3.Violation) map[string]int {
	out := make(map[string]int)
	for r, n := range v.Counts() {
		out[r.String()] = n
	}
	return out
}

func printStep(s demoStep) {
	switch {
	case s.Error != "":
		printInfo("%-13s %s %s\n", s.Step, render(caStyle, s.CA), render(warnStyle, s.Error))
	case s.Violation != nil:
		printInfo("%-13s %s %s %v\n", s.Step, render(caStyle, s.CA), render(violationStyle, "VIOLATION"), s.Violation)
	case s.Data != "":
		printInfo("%-13s %s %s %q\n", s.Step, render(caStyle, s.CA), render(okStyle, "OK"), s.Data)
	default:
		printInfo("%-13s %s power %d\n", s.Step, render(caStyle, s.CA), s.Power)
	}
	if s.Stored != "" {
		printVerbose("%-13s stored %s\n", "", s.Stored)
	}
}
