// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

import (
	"fmt"
	"log"
)

// Result is the complete output of one evaluation.
type Result struct {
	Derivation *Derivation
	Plan       *Plan
	Exports    map[string]string
	Trace      *Trace
}

// Evaluate runs the full pipeline once:
//
//	parameter validation -> derivation -> topology -> identity bindings -> exports
//
// Control flow is strictly one directional and acyclic; every optional subsystem is
// determined by the flags resolved here, never by another subsystem's runtime value.
// Evaluating twice with identical inputs yields an identical result.
func Evaluate(dctx DeploymentContext, p Parameters) (*Result, error) {
	if err := p.Validate(dctx); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	trace := NewTrace()

	derivation, err := Derive(dctx, p, trace)
	if err != nil {
		return nil, fmt.Errorf("deriving deployment values: %w", err)
	}

	plan, err := BuildPlan(derivation, trace)
	if err != nil {
		return nil, fmt.Errorf("building resource plan: %w", err)
	}

	log.Printf(
		"evaluated plan for %s: setup=%s, %d resources, %d bindings, %d warnings",
		dctx.EnvironmentName, derivation.Setup, len(plan.Resources), len(plan.Bindings),
		len(plan.Warnings),
	)

	return &Result{
		Derivation: derivation,
		Plan:       plan,
		Exports:    BuildExports(derivation, plan),
		Trace:      trace,
	}, nil
}
