// Package materials builds a bill of materials for a repair from a JSON
// model reply, treating every field of that reply as untrusted.
package materials

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"homefix/internal/logging"
	"homefix/internal/model"
	"homefix/internal/modeljson"
)

// MaxItemsPerCategory caps parts and tools independently.
const MaxItemsPerCategory = 10

const temperature = 0.3

const systemPrompt = `You are a home repair expert creating a bill of materials (BOM) for DIY repairs.

REQUIREMENTS:
- List all parts and tools needed
- For each item provide:
  * Name (specific product type)
  * Category (part or tool)
  * Quantity needed
  * Price range (min-max in USD, realistic retail prices)
  * Optional flag (true if not strictly required)
  * Notes (size, specifications, alternatives)

- Separate parts (consumed) from tools (reusable)
- Include common household items if needed
- Price ranges should be current retail (Home Depot, Lowe's, Amazon)
- Be specific: "1/2 inch PVC pipe" not just "pipe"

Return JSON format:
{
  "parts": [
    {"name": "...", "category": "part", "quantity": 2, "unit": "piece|foot|gallon|etc", "price_min": 5.99, "price_max": 12.99, "optional": false, "notes": "..."}
  ],
  "tools": [
    {"name": "...", "category": "tool", "quantity": 1, "price_min": 15.00, "price_max": 50.00, "optional": false, "notes": "Can use alternatives like..."}
  ],
  "total_cost_min": 50.00,
  "total_cost_max": 150.00
}`

type Estimator struct {
	vision model.VisionModel
	logger *slog.Logger
}

func NewEstimator(vision model.VisionModel, logger *slog.Logger) *Estimator {
	return &Estimator{vision: vision, logger: logging.OrDefault(logger)}
}

// Estimate asks the model for a parts and tools list for issueType.
func (e *Estimator) Estimate(ctx context.Context, issueType string) (model.BillOfMaterials, error) {
	issueType = strings.TrimSpace(issueType)
	if issueType == "" {
		return model.BillOfMaterials{}, fmt.Errorf("%w: issue_type is required", model.ErrValidation)
	}
	if e.vision == nil {
		return model.BillOfMaterials{}, fmt.Errorf("%w: no vision model configured", model.ErrUpstreamCall)
	}

	reply, err := e.vision.Complete(ctx, model.CompletionRequest{
		System:      systemPrompt,
		Text:        "Create a bill of materials for: " + issueType,
		JSON:        true,
		Temperature: temperature,
	})
	if err != nil {
		e.logger.Error("bom generation failed", "error", err)
		return model.BillOfMaterials{}, fmt.Errorf("generate bom: %w", model.WrapUpstream(err))
	}

	obj, err := modeljson.Object(reply)
	if err != nil {
		return model.BillOfMaterials{}, fmt.Errorf("%w: bom: %v", model.ErrUpstreamParse, err)
	}
	bom, err := Normalize(obj)
	if err != nil {
		return model.BillOfMaterials{}, err
	}

	e.logger.Info("bom generated",
		"part_count", len(bom.Parts),
		"tool_count", len(bom.Tools),
		"total_min", bom.Total.Min,
		"total_max", bom.Total.Max,
	)
	return bom, nil
}

// Normalize validates the reply shape and applies the item defaults. parts
// and tools may be absent but must be arrays when present.
func Normalize(obj map[string]interface{}) (model.BillOfMaterials, error) {
	parts, err := normalizeList(obj, "parts", "part")
	if err != nil {
		return model.BillOfMaterials{}, err
	}
	tools, err := normalizeList(obj, "tools", "tool")
	if err != nil {
		return model.BillOfMaterials{}, err
	}

	var sumMin, sumMax float64
	for _, list := range [][]model.BillOfMaterialsItem{parts, tools} {
		for _, item := range list {
			sumMin += item.PriceMin
			sumMax += item.PriceMax
		}
	}

	total := model.CostRange{Min: sumMin, Max: sumMax}
	if v, ok := modeljson.Number(obj["total_cost_min"]); ok {
		total.Min = v
	}
	if v, ok := modeljson.Number(obj["total_cost_max"]); ok {
		total.Max = v
	}
	total.Min, total.Max = priceBounds(total.Min, total.Max)

	return model.BillOfMaterials{Parts: parts, Tools: tools, Total: total}, nil
}

func normalizeList(obj map[string]interface{}, key, category string) ([]model.BillOfMaterialsItem, error) {
	raw, present := obj[key]
	if !present || raw == nil {
		return []model.BillOfMaterialsItem{}, nil
	}
	entries, ok := modeljson.Objects(raw)
	if !ok {
		return nil, fmt.Errorf("%w: bom %s must be an array", model.ErrUpstreamParse, key)
	}

	out := make([]model.BillOfMaterialsItem, 0, min(len(entries), MaxItemsPerCategory))
	for _, entry := range entries {
		if len(out) == MaxItemsPerCategory {
			break
		}
		item, ok := normalizeItem(entry, category)
		if !ok {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func normalizeItem(entry map[string]interface{}, category string) (model.BillOfMaterialsItem, bool) {
	name := modeljson.String(entry["name"])
	if name == "" {
		return model.BillOfMaterialsItem{}, false
	}

	quantity, ok := modeljson.Number(entry["quantity"])
	if !ok || quantity <= 0 {
		quantity = 1
	}

	priceMin, _ := modeljson.Number(entry["price_min"])
	priceMax, _ := modeljson.Number(entry["price_max"])
	priceMin, priceMax = priceBounds(priceMin, priceMax)

	return model.BillOfMaterialsItem{
		Name:     name,
		Category: category,
		Quantity: quantity,
		Unit:     modeljson.String(entry["unit"]),
		PriceMin: priceMin,
		PriceMax: priceMax,
		Optional: modeljson.Bool(entry["optional"], false),
		Notes:    modeljson.String(entry["notes"]),
		HaveIt:   false,
	}, true
}

// priceBounds clamps negatives to zero, rounds to cents, and orders the pair.
func priceBounds(lo, hi float64) (float64, float64) {
	lo = modeljson.Currency(max(lo, 0))
	hi = modeljson.Currency(max(hi, 0))
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}
