package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"homefix/internal/model"
)

func emitJSON(v interface{}) {
	writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func renderDiagnosis(w io.Writer, st styles, d model.Diagnosis) {
	fmt.Fprintln(w, st.sectionHeader("Diagnosis"))
	fmt.Fprintln(w, st.kv("Issue", d.IssueType))
	fmt.Fprintln(w, st.kv("Risk", st.risk(d.RiskLevel)))
	fmt.Fprintln(w, st.kv("Recommendation", string(d.Recommendation)))
	fmt.Fprintln(w, st.kv("Confidence", fmt.Sprintf("%d%%", d.Confidence)))
	fmt.Fprintln(w, st.kv("Diagnosis ID", st.dim(d.ID)))
	if d.DIYDisabled {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.warnPrefix(), "DIY disabled:", d.SafetyGateReason)
		fmt.Fprintln(w, "  Hire a licensed professional for this repair.")
	}
	if len(d.SafetyConcerns) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.sectionHeader("Safety concerns"))
		for _, c := range d.SafetyConcerns {
			fmt.Fprintln(w, "  - "+c)
		}
	}
	if strings.TrimSpace(d.Summary) != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.dim(d.Summary))
	}
}

func renderBOM(w io.Writer, st styles, bom model.BillOfMaterials) {
	fmt.Fprintln(w, st.sectionHeader("Materials"))
	renderItems(w, st, "Parts", bom.Parts)
	renderItems(w, st, "Tools", bom.Tools)
	fmt.Fprintln(w, st.separator(40))
	fmt.Fprintln(w, st.kv("Estimated", fmt.Sprintf("$%.2f - $%.2f", bom.Total.Min, bom.Total.Max)))
}

func renderItems(w io.Writer, st styles, title string, items []model.BillOfMaterialsItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, "  "+title)
	for _, item := range items {
		line := fmt.Sprintf("    %s x%g  $%.2f-$%.2f", item.Name, item.Quantity, item.PriceMin, item.PriceMax)
		if item.Optional {
			line += st.dim(" (optional)")
		}
		fmt.Fprintln(w, line)
	}
}

func renderPlan(w io.Writer, st styles, p model.Plan) {
	title := p.Title
	if title == "" {
		title = "Repair plan"
	}
	fmt.Fprintln(w, st.sectionHeader(title))
	fmt.Fprintln(w, st.kv("Difficulty", string(p.Difficulty)))
	fmt.Fprintln(w, st.kv("Total time", fmt.Sprintf("%g min", p.TotalTimeMinutes)))
	if p.SafetyWarning != "" {
		fmt.Fprintln(w, st.warnPrefix(), p.SafetyWarning)
	}
	fmt.Fprintln(w)
	for _, step := range p.Steps {
		fmt.Fprintf(w, "%d. %s %s\n", step.StepNumber, step.Title, st.dim(fmt.Sprintf("(%g min)", step.DurationMinutes)))
		if step.Description != "" {
			fmt.Fprintln(w, "   "+step.Description)
		}
		if step.SafetyNote != "" {
			fmt.Fprintln(w, "   "+st.warnPrefix()+" "+step.SafetyNote)
		}
	}
}
