package model

import "testing"

// TestCategoryRoundTrip tests name and code conversions for all categories.
func TestCategoryRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range Categories() {
		parsed, err := ParseCategory(c.String())
		if err != nil {
			t.Fatalf("ParseCategory(%q) failed: %v", c.String(), err)
		}
		if parsed != c {
			t.Errorf("ParseCategory(%q) = %v, want %v", c.String(), parsed, c)
		}

		fromCode, err := CategoryFromCode(c.Code())
		if err != nil {
			t.Fatalf("CategoryFromCode(%d) failed: %v", c.Code(), err)
		}
		if fromCode != c {
			t.Errorf("CategoryFromCode(%d) = %v, want %v", c.Code(), fromCode, c)
		}
	}
}

// TestCategoryCodes pins the storage codes. These values are part of the
// on-disk format and must never change.
func TestCategoryCodes(t *testing.T) {
	t.Parallel()

	want := map[string]int{
		"track":    0,
		"album":    1,
		"artist":   2,
		"playlist": 3,
		"concert":  4,
		"user":     5,
		"episode":  6,
		"show":     7,
		"genre":    8,
	}

	for name, code := range want {
		c, err := ParseCategory(name)
		if err != nil {
			t.Fatalf("ParseCategory(%q) failed: %v", name, err)
		}
		if c.Code() != code {
			t.Errorf("category %q code = %d, want %d", name, c.Code(), code)
		}
	}
}

// TestCategoryInvalid tests rejection of unknown names and codes.
func TestCategoryInvalid(t *testing.T) {
	t.Parallel()

	if _, err := ParseCategory("podcast"); err == nil {
		t.Error("ParseCategory should reject unknown slug")
	}
	if _, err := CategoryFromCode(-1); err == nil {
		t.Error("CategoryFromCode should reject negative code")
	}
	if _, err := CategoryFromCode(9); err == nil {
		t.Error("CategoryFromCode should reject out-of-range code")
	}
	if got := Category(42).String(); got != "unknown" {
		t.Errorf("invalid category String() = %q, want %q", got, "unknown")
	}
}

// TestEntityPage tests the entity-to-page-identifier conversion.
func TestEntityPage(t *testing.T) {
	t.Parallel()

	e := Entity{Category: CategoryAlbum, ID: "4aawyAB9vmqN3uQ7FjRGTy"}
	if got, want := e.Page(), "album/4aawyAB9vmqN3uQ7FjRGTy"; got != want {
		t.Errorf("Page() = %q, want %q", got, want)
	}
}
