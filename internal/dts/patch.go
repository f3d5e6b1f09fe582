package dts

import (
	"fmt"
	"os"
	"strings"

	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// Rule is a single substitution applied to the device-tree text.
//
// A rule with a non-empty Old replaces every occurrence of Old with New.
// A rule with an empty Old is a prologue rule: New is prepended as the
// first line when the source does not already contain it. Both forms are
// idempotent as long as the replacement still matches the absence check,
// which DefaultRules maintains.
type Rule struct {
	// Old is the literal text to replace. Empty marks a prologue rule.
	Old string

	// New is the replacement text, or the prologue line to prepend.
	New string
}

// DefaultRules returns the fixups applied to every generated tree:
//
//  1. The generator emits the pre-CCF clock include; the distribution
//     kernels use the common clock framework, so the include is rewritten
//     to the ccf variant.
//  2. The generator omits the /dts-v1/; version prologue, which dtc
//     requires for the source to compile standalone; it is prepended
//     when absent.
func DefaultRules() []Rule {
	return []Rule{
		{
			Old: `#include "zynqmp-clk.dtsi"`,
			New: `#include "zynqmp-clk-ccf.dtsi"`,
		},
		{
			Old: "",
			New: "/dts-v1/;",
		},
	}
}

// Apply runs the rules over the source text in order and returns the
// patched text plus the number of rules that matched.
func Apply(src string, rules []Rule) (string, int) {
	matched := 0
	for _, rule := range rules {
		if rule.Old == "" {
			if !strings.Contains(src, rule.New) {
				src = rule.New + "\n" + src
				matched++
			}
			continue
		}
		if strings.Contains(src, rule.Old) {
			src = strings.ReplaceAll(src, rule.Old, rule.New)
			matched++
		}
	}
	return src, matched
}

// PatchFile applies the rules to a device-tree file in place. A file
// that matches no rule is left byte-identical (the write is skipped).
func PatchFile(path string, rules []Rule) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, model.WrapCLIError(model.ExitEDAFailed,
			fmt.Sprintf("failed to read device tree %s", path), err)
	}

	patched, matched := Apply(string(data), rules)
	if matched == 0 {
		return 0, nil
	}

	if err := os.WriteFile(path, []byte(patched), 0o644); err != nil {
		return 0, model.WrapCLIError(model.ExitEDAFailed,
			fmt.Sprintf("failed to write patched device tree %s", path), err)
	}
	return matched, nil
}
