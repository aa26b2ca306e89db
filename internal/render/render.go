// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render prints a research bundle as plain text for the terminal.
// Absent sections print a placeholder with the reason recorded in the
// bundle's agent status.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const noData = "(no data)"

// Bundle writes a text rendering of b to w.
func Bundle(w io.Writer, b *types.ResearchBundle) error {
	p := &printer{w: w}

	p.linef("Query:  %s", b.Query)
	if b.RunID != "" {
		p.linef("Run ID: %s", b.RunID)
	}

	p.heading("Planner Analysis")
	if b.Planner == nil {
		p.placeholder(b, types.AgentPlanner)
	} else {
		planner(p, b.Planner)
	}

	p.heading("Papers")
	if b.Papers == nil {
		p.placeholder(b, types.AgentPaper)
	} else {
		papers(p, b.Papers)
	}

	p.heading("Datasets")
	if b.Datasets == nil {
		p.placeholder(b, types.AgentDataset)
	} else {
		datasets(p, b.Datasets)
	}

	p.heading("Action Plan")
	if b.ActionPlan == nil || len(b.ActionPlan.Raw) == 0 {
		p.placeholder(b, types.AgentActionPlan)
	} else {
		actionPlan(p, b.ActionPlan)
	}

	if len(b.AgentStatus) > 0 {
		p.heading("Agent Status")
		for _, name := range append([]types.AgentName{types.AgentPlanner}, types.DownstreamAgents...) {
			st, ok := b.AgentStatus[name]
			if !ok {
				continue
			}
			p.linef("  %-18s %s", name, describe(st))
		}
	}
	return p.err
}

func planner(p *printer, r *types.PlannerResult) {
	a := r.Analysis
	p.field("Research domain", a.ResearchDomain)
	p.field("Sub-domain", a.SubDomain)
	p.field("Problem type", a.ProblemType)
	p.field("Data modality", strings.Join(a.DataModality, ", "))
	p.field("Key techniques", strings.Join(a.KeyTechniques, ", "))
	p.field("Expected outputs", strings.Join(a.ExpectedOutputs, ", "))

	p.line("")
	if len(r.Subtasks) == 0 {
		p.line("  Subtasks: none")
		return
	}
	p.line("  Subtasks:")
	for _, s := range r.Subtasks {
		p.linef("  - %s: %s (%s)", s.Agent, s.Goal, s.Rationale)
	}
}

func papers(p *printer, r *types.PaperAgentResult) {
	if len(r.Papers) == 0 {
		p.line("  No papers summarized.")
	}
	for _, paper := range r.Papers {
		p.linef("  %s (%s)", paper.Title, orUnknown(paper.Year.String()))
		p.field("Methodology", paper.Methodology.String())
		p.field("Data used", paper.DataUsed.String())
		p.field("Key contribution", paper.KeyContribution.String())
		p.line("")
	}
	if len(r.OverallTrends) > 0 {
		p.line("  Overall trends:")
		for _, t := range r.OverallTrends {
			p.linef("  - %s", t)
		}
	}
}

func datasets(p *printer, r *types.DatasetAgentResult) {
	if len(r.Datasets) == 0 {
		p.line("  No datasets described.")
	}
	for _, d := range r.Datasets {
		p.linef("  %s (%s)", d.Name, orUnknown(d.Source.String()))
		p.field("Task", d.TaskType.String())
		p.field("Data type", d.DataType.String())
		p.field("Labels", d.Labels.String())
		if d.URL != "" {
			p.field("URL", d.URL)
		}
		p.line("")
	}
	if len(r.CoverageNotes) > 0 {
		p.line("  Coverage notes:")
		for _, n := range r.CoverageNotes {
			p.linef("  - %s", n)
		}
	}
}

// researchPlan is the plan layout most models produce. Plans in any other
// shape are printed as indented JSON.
type researchPlan struct {
	ResearchPlan *struct {
		Title       string `json:"title"`
		Objective   string `json:"objective"`
		Methodology []struct {
			Step        types.Text `json:"step"`
			Description string     `json:"description"`
			Papers      []struct {
				Title string     `json:"title"`
				Year  types.Text `json:"year"`
			} `json:"papers"`
			Datasets []struct {
				Name string `json:"name"`
			} `json:"datasets"`
		} `json:"methodology"`
	} `json:"research_plan"`
}

func actionPlan(p *printer, a *types.ActionPlanResult) {
	var rp researchPlan
	if err := a.Decode(&rp); err != nil || rp.ResearchPlan == nil {
		var buf bytes.Buffer
		if err := json.Indent(&buf, a.Raw, "  ", "  "); err != nil {
			p.linef("  %s", a.Raw)
			return
		}
		p.linef("  %s", buf.String())
		return
	}

	plan := rp.ResearchPlan
	title := plan.Title
	if title == "" {
		title = "Research Plan"
	}
	p.linef("  %s", title)
	if plan.Objective != "" {
		p.field("Objective", plan.Objective)
	}
	for _, step := range plan.Methodology {
		p.linef("  - %s: %s", step.Step, step.Description)
		if len(step.Papers) > 0 {
			p.line("      Papers:")
			for _, paper := range step.Papers {
				p.linef("        - %s (%s)", paper.Title, orUnknown(paper.Year.String()))
			}
		}
		if len(step.Datasets) > 0 {
			p.line("      Datasets:")
			for _, d := range step.Datasets {
				p.linef("        - %s", d.Name)
			}
		}
	}
}

// describe summarizes an agent status on one line.
func describe(st types.AgentStatus) string {
	switch st.State {
	case types.StateFailed:
		return fmt.Sprintf("failed (%s): %s", st.ErrorKind, st.Error)
	case types.StateSkipped:
		names := make([]string, len(st.MissingInputs))
		for i, m := range st.MissingInputs {
			names[i] = string(m)
		}
		return "skipped, missing " + strings.Join(names, ", ")
	default:
		return string(st.State)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// printer accumulates the first write error so callers can ignore it
// until the end.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) linef(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *printer) heading(title string) {
	p.line("")
	p.line(title)
	p.line(strings.Repeat("-", len(title)))
}

func (p *printer) field(label, value string) {
	if value == "" {
		value = "-"
	}
	p.linef("  %s: %s", label, value)
}

func (p *printer) placeholder(b *types.ResearchBundle, agent types.AgentName) {
	st, ok := b.AgentStatus[agent]
	if !ok {
		p.linef("  %s", noData)
		return
	}
	p.linef("  %s %s", noData, describe(st))
}
