package quotes

import (
	"context"

	"homefix/internal/model"
)

// MockMatcher returns a fixed contractor list for any ZIP code. It stands in
// for a real contractor directory.
type MockMatcher struct{}

func (MockMatcher) Match(_ context.Context, _ string) ([]model.Contractor, error) {
	return []model.Contractor{
		{
			Name:                "ABC Home Repair",
			Rating:              4.8,
			ReviewCount:         234,
			YearsInBusiness:     12,
			Licensed:            true,
			Insured:             true,
			Specialties:         []string{"Plumbing", "Electrical", "General Repair"},
			TypicalResponseTime: "2-4 hours",
			DistanceMiles:       3.2,
		},
		{
			Name:                "Quality Fix Pros",
			Rating:              4.9,
			ReviewCount:         156,
			YearsInBusiness:     8,
			Licensed:            true,
			Insured:             true,
			Specialties:         []string{"Plumbing", "HVAC", "Handyman"},
			TypicalResponseTime: "1-3 hours",
			DistanceMiles:       5.7,
		},
		{
			Name:                "Reliable Home Services",
			Rating:              4.7,
			ReviewCount:         312,
			YearsInBusiness:     15,
			Licensed:            true,
			Insured:             true,
			Specialties:         []string{"General Contractor", "Remodeling", "Repair"},
			TypicalResponseTime: "4-8 hours",
			DistanceMiles:       7.1,
		},
	}, nil
}
