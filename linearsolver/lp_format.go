// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package linearsolver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/salesopt/leadassign/cpmodel"
)

// ExportOptions groups all options for exporting models to text formats.
type ExportOptions struct {
	// Obfuscate replaces variable and constraint names by V<index> and C<index>.
	Obfuscate bool
	// ShowUnusedVariables lists in the Bounds section the variables that appear in no
	// constraint and not in the objective.
	ShowUnusedVariables bool
	// MaxLineLength wraps long expressions. Zero means no wrapping.
	MaxLineLength int
}

// ExportModelAsLpFormat outputs the model as a string in CPLEX LP format.
//
// Usage:
//
//	m, err := solver.Model()
//	modelStr, err := ExportModelAsLpFormat(m, ExportOptions{Obfuscate: true})
func ExportModelAsLpFormat(model *cpmodel.CpModel, options ExportOptions) (string, error) {
	if model == nil {
		return "", errors.New("cannot export a nil model as LP format")
	}
	if err := model.Validate(); err != nil {
		return "", fmt.Errorf("cannot export an invalid model as LP format: %w", err)
	}
	e := &lpExporter{model: model, options: options}
	return e.export(), nil
}

type lpExporter struct {
	model   *cpmodel.CpModel
	options ExportOptions
	sb      strings.Builder
}

func (e *lpExporter) varName(v cpmodel.VarIndex) string {
	name := e.model.Variables[v].Name
	if e.options.Obfuscate || !validLpName(name) {
		return fmt.Sprintf("V%d", v)
	}
	return name
}

func (e *lpExporter) constraintName(i int) string {
	name := e.model.Constraints[i].Name
	if e.options.Obfuscate || !validLpName(name) {
		return fmt.Sprintf("C%d", i)
	}
	return name
}

// validLpName reports whether `name` can be written as is: non-empty, made of
// letters, digits and `_.`, and not starting with a digit or a period.
func validLpName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case (r >= '0' && r <= '9') || r == '.':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func formatTerm(coeff int64, name string) string {
	if coeff < 0 {
		return "- " + strconv.FormatInt(-coeff, 10) + " " + name
	}
	return "+ " + strconv.FormatInt(coeff, 10) + " " + name
}

// writeExpr writes ` label: terms` wrapping at MaxLineLength.
func (e *lpExporter) writeExpr(label string, vars []cpmodel.VarIndex, coeffs []int64, tail string) {
	line := " " + label + ":"
	flush := func() {
		e.sb.WriteString(line)
		e.sb.WriteString("\n")
		line = "  "
	}
	add := func(tok string) {
		if e.options.MaxLineLength > 0 && len(line)+1+len(tok) > e.options.MaxLineLength && strings.TrimSpace(line) != "" {
			flush()
		}
		line += " " + tok
	}
	if len(vars) == 0 {
		add("0")
	}
	for k, v := range vars {
		add(formatTerm(coeffs[k], e.varName(v)))
	}
	if tail != "" {
		add(tail)
	}
	flush()
}

func (e *lpExporter) export() string {
	m := e.model
	name := m.Name
	if e.options.Obfuscate || name == "" {
		name = "model"
	}
	fmt.Fprintf(&e.sb, "\\ Generated by leadassign linearsolver\n\\ Name: %s\n", name)

	obj := m.Objective
	if obj != nil && obj.Maximize {
		e.sb.WriteString("Maximize\n")
	} else {
		e.sb.WriteString("Minimize\n")
	}
	used := make([]bool, len(m.Variables))
	if obj != nil {
		tail := ""
		if obj.Offset != 0 {
			tail = formatTerm(obj.Offset, "")
			tail = strings.TrimSpace(tail)
		}
		e.writeExpr("Obj", obj.Vars, obj.Coeffs, tail)
		for _, v := range obj.Vars {
			used[v] = true
		}
	} else {
		e.writeExpr("Obj", nil, nil, "")
	}

	e.sb.WriteString("Subject To\n")
	for i, ct := range m.Constraints {
		for _, v := range ct.Vars {
			used[v] = true
		}
		b := cpmodel.ClosedInterval{Start: ct.Lb, End: ct.Ub}
		cn := e.constraintName(i)
		switch {
		case b.IsFixed():
			e.writeExpr(cn, ct.Vars, ct.Coeffs, "= "+strconv.FormatInt(ct.Lb, 10))
		case b.HasLowerBound() && b.HasUpperBound():
			e.writeExpr(cn+"_lhs", ct.Vars, ct.Coeffs, ">= "+strconv.FormatInt(ct.Lb, 10))
			e.writeExpr(cn+"_rhs", ct.Vars, ct.Coeffs, "<= "+strconv.FormatInt(ct.Ub, 10))
		case b.HasLowerBound():
			e.writeExpr(cn, ct.Vars, ct.Coeffs, ">= "+strconv.FormatInt(ct.Lb, 10))
		case b.HasUpperBound():
			e.writeExpr(cn, ct.Vars, ct.Coeffs, "<= "+strconv.FormatInt(ct.Ub, 10))
		}
	}

	var binaries, generals []string
	e.sb.WriteString("Bounds\n")
	for i, v := range m.Variables {
		if !used[i] && !e.options.ShowUnusedVariables {
			continue
		}
		n := e.varName(cpmodel.VarIndex(i))
		d := v.Domain
		switch {
		case d.IsFixed():
			fmt.Fprintf(&e.sb, " %s = %d\n", n, d.Start)
		case d.Start == 0 && d.End == 1:
			binaries = append(binaries, n)
			continue
		case d.HasLowerBound() && d.HasUpperBound():
			fmt.Fprintf(&e.sb, " %d <= %s <= %d\n", d.Start, n, d.End)
		case d.HasLowerBound():
			fmt.Fprintf(&e.sb, " %s >= %d\n", n, d.Start)
		case d.HasUpperBound():
			fmt.Fprintf(&e.sb, " -inf <= %s <= %d\n", n, d.End)
		default:
			fmt.Fprintf(&e.sb, " %s free\n", n)
		}
		generals = append(generals, n)
	}
	if len(binaries) > 0 {
		e.sb.WriteString("Binaries\n")
		for _, n := range binaries {
			fmt.Fprintf(&e.sb, " %s\n", n)
		}
	}
	if len(generals) > 0 {
		e.sb.WriteString("Generals\n")
		for _, n := range generals {
			fmt.Fprintf(&e.sb, " %s\n", n)
		}
	}
	e.sb.WriteString("End\n")
	return e.sb.String()
}
