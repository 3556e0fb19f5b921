// Package safety flags repairs that must never be attempted as DIY.
package safety

import (
	"strings"

	"homefix/internal/model"
)

// Category groups keywords for one class of high-risk work.
type Category struct {
	Name     string
	Keywords []string
}

// Categories is scanned in order; the first keyword that matches decides the
// reported reason.
var Categories = []Category{
	{Name: "gas", Keywords: []string{"gas", "natural gas", "propane", "gas line", "gas leak", "gas smell"}},
	{Name: "electrical", Keywords: []string{"electrical panel", "breaker box", "main panel", "service panel", "live wire", "electrical shock"}},
	{Name: "structural", Keywords: []string{"structural", "foundation", "load bearing", "beam", "joist", "support beam", "foundation crack"}},
	{Name: "roof", Keywords: []string{"roof", "roofing", "shingles", "flashing", "chimney", "roof height"}},
	{Name: "hazmat", Keywords: []string{"asbestos", "mold", "black mold", "toxic", "hazardous material"}},
	{Name: "plumbing_major", Keywords: []string{"sewer", "main water line", "septic", "sewer backup", "main drain"}},
}

// Check scans text case-insensitively and returns on the first keyword hit.
func Check(text string) model.SafetyGateResult {
	lower := strings.ToLower(text)
	for _, cat := range Categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) {
				return model.SafetyGateResult{
					Triggered: true,
					Reason:    "Detected high-risk category: " + kw,
					ForceHire: true,
				}
			}
		}
	}
	return model.SafetyGateResult{}
}
