package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uafScenario = `
config:
  pointer_key: 3951121
  data_key: 765424
domains:
  - name: attacker
steps:
  - {op: alloc, name: buf, size: 64}
  - {op: store, name: buf, data: "secret"}
  - {op: read, name: buf, length: 6, want: "secret"}
  - {op: read, name: buf, offset: 2, length: 4, want: "cret"}
  - {op: read, name: buf, length: 6, domain: attacker, expect: violation}
  - {op: free, name: buf}
  - {op: alloc, name: again, size: 64}
  - {op: read, name: buf, length: 6, expect: violation}
  - {op: free, name: again}
  - {op: free, name: buf, expect: error}
`

func TestRunScenario(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	path := writeFile(t, "uaf.yaml", uafScenario)

	out, err := captureOutput(t, func() error { return runScenario(path) })
	require.NoError(t, err)

	var results []StepResult
	decodeJSON(t, out, &results)
	require.Len(t, results, 10)
	for _, r := range results {
		assert.True(t, r.Passed, "step %d %s %s: %s", r.Index, r.Op, r.Name, r.Outcome)
	}
	assert.Equal(t, "cret", results[3].Data)
	assert.Equal(t, map[string]int{"no_record": 6}, results[4].Violation)
	assert.Equal(t, "attacker", results[4].Domain)
	assert.Equal(t, results[0].CA, results[6].CA)
	assert.Equal(t, map[string]int{"key_mismatch": 6}, results[7].Violation)
	assert.Contains(t, results[9].Error, "not a live allocation")
}

func TestRunScenario_FailedExpectation(t *testing.T) {
	resetFlags(t)
	path := writeFile(t, "bad.yaml", `
steps:
  - {op: alloc, name: buf, size: 16}
  - {op: read, name: buf, length: 4}
  - {op: store, name: buf, data: "hi"}
  - {op: read, name: buf, length: 2, want: "ho"}
`)

	out, err := captureOutput(t, func() error { return runScenario(path) })
	assert.ErrorContains(t, err, "2 of 4 step(s)")
	assert.Contains(t, out, "PASS  0 alloc")
	assert.Contains(t, out, "FAIL  1 read")
	assert.Contains(t, out, "VIOLATION")
	assert.Contains(t, out, `read "hi", want "ho"`)
}

func TestRunScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"no steps", "steps: []\n", "Steps"},
		{"bad op", "steps:\n  - {op: poke, name: x}\n", "Op"},
		{"alloc without size", "steps:\n  - {op: alloc, name: x}\n", "Size"},
		{"reserved domain", "domains:\n  - name: main\nsteps:\n  - {op: alloc, name: x, size: 1}\n", "Name"},
		{"bad config", "config:\n  mode: lazy\nsteps:\n  - {op: alloc, name: x, size: 1}\n", "Mode"},
		{"not yaml", "steps: [\n", "parse scenario"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			path := writeFile(t, "s.yaml", tt.yaml)
			_, err := captureOutput(t, func() error { return runScenario(path) })
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRunScenario_UnknownRefs(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	path := writeFile(t, "refs.yaml", `
steps:
  - {op: read, name: ghost, length: 1, expect: error}
  - {op: alloc, name: x, size: 4, domain: nobody, expect: error}
`)
	out, err := captureOutput(t, func() error { return runScenario(path) })
	require.NoError(t, err)

	var results []StepResult
	decodeJSON(t, out, &results)
	require.Len(t, results, 2)
	assert.Contains(t, results[0].Error, `unknown allocation "ghost"`)
	assert.Contains(t, results[1].Error, `unknown domain "nobody"`)
}

func TestRunScenario_FlagsOverrideConfig(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	modeFlag = "random"
	seedFlag = "5"
	path := writeFile(t, "random.yaml", `
config:
  mode: cipher
steps:
  - {op: alloc, name: a, size: 32}
  - {op: store, name: a, data: "xyz"}
  - {op: read, name: a, length: 3, want: "xyz"}
`)
	s, err := loadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "random", s.Config.Mode)
	require.NotNil(t, s.Config.Seed)

	_, err = captureOutput(t, func() error { return runScenario(path) })
	require.NoError(t, err)
}
