// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

// NameSource records how a resource name was chosen.
type NameSource string

const (
	nameSourceOverride  NameSource = "override"
	nameSourceGenerated NameSource = "generated"
	nameSourceExisting  NameSource = "existing"
)

// NameResolution is one entry in the trace's name ledger.
type NameResolution struct {
	Kind   string
	Name   string
	Source NameSource
}

// Trace is the single structured record of every decision taken during one evaluation:
// the chosen branch, the derived token, each name resolution, dropped capabilities and
// skipped bindings. It is collected as evaluation runs and emitted once at the end.
type Trace struct {
	Setup           SetupChoice
	ResourceToken   string
	Names           []NameResolution
	Warnings        []string
	SkippedBindings []string
}

func NewTrace() *Trace {
	return &Trace{}
}

func (t *Trace) recordName(kind string, name string, source NameSource) {
	t.Names = append(t.Names, NameResolution{Kind: kind, Name: name, Source: source})
}

func (t *Trace) warn(message string) {
	t.Warnings = append(t.Warnings, message)
}

func (t *Trace) skipBinding(reason string) {
	t.SkippedBindings = append(t.SkippedBindings, reason)
}
