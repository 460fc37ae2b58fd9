package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vmTestCase is a fluent builder for end-to-end VM scenarios: each with*
// method stages input, each expect* method stages an assertion, and
// run(t) builds a fresh VM, feeds it the staged input, and checks every
// staged assertion. scripts/gen_vm_expects.go scrapes this type's method
// set to emit free-function wrappers (withVMInput, expectVMStack, ...).
type vmTestCase struct {
	name  string
	opts  []VMOption
	input string

	expectErr    string
	expectStack  []Cell
	expectOutput string
	expectWords  []string
}

func vmTest(name string) vmTestCase { return vmTestCase{name: name} }

func (vmt vmTestCase) withInput(s string) vmTestCase {
	vmt.input += s
	return vmt
}

func (vmt vmTestCase) withOptions(opts ...VMOption) vmTestCase {
	vmt.opts = append(vmt.opts, opts...)
	return vmt
}

func (vmt vmTestCase) withArenaCapacity(n int) vmTestCase {
	vmt.opts = append(vmt.opts, WithArenaCapacity(n))
	return vmt
}

func (vmt vmTestCase) expectError(substr string) vmTestCase {
	vmt.expectErr = substr
	return vmt
}

func (vmt vmTestCase) expectStack(cells ...Cell) vmTestCase {
	vmt.expectStack = cells
	return vmt
}

func (vmt vmTestCase) expectOutputString(s string) vmTestCase {
	vmt.expectOutput = s
	return vmt
}

func (vmt vmTestCase) expectWord(name string) vmTestCase {
	vmt.expectWords = append(vmt.expectWords, name)
	return vmt
}

func (vmt vmTestCase) run(t *testing.T) {
	t.Helper()
	t.Run(vmt.name, func(t *testing.T) {
		var out bytes.Buffer
		var errOut bytes.Buffer
		opts := append([]VMOption{
			WithInput(strings.NewReader(vmt.input)),
			WithOutput(&out),
			WithErrOutput(&errOut),
		}, vmt.opts...)
		vm := New(opts...)

		err := vm.Run(context.Background())
		require.NoError(t, err, "VM.Run should only fail on I/O or context errors, not language errors")

		if vmt.expectOutput != "" {
			assert.Equal(t, vmt.expectOutput, out.String())
		}
		if vmt.expectStack != nil {
			assert.Equal(t, vmt.expectStack, append([]Cell{}, vm.data...))
		}
		for _, name := range vmt.expectWords {
			_, ok := vm.lookup(name)
			assert.True(t, ok, "expected word %q to be defined", name)
		}
		if vmt.expectErr != "" {
			assert.Contains(t, out.String()+errOut.String(), vmt.expectErr)
		}
	})
}
