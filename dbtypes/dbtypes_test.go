package dbtypes

import "testing"

func TestValidCategory(t *testing.T) {
	for _, c := range EventCategories {
		if !ValidCategory(c) {
			t.Errorf("Expected %q to be a valid category", c)
		}
	}

	for _, c := range []string{"", "tech", "Cooking"} {
		if ValidCategory(c) {
			t.Errorf("Expected %q to be rejected", c)
		}
	}
}
