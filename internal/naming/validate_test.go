package naming

import (
	"strings"
	"testing"
)

func TestValidateCleanFilename(t *testing.T) {
	result := Validate("Total Commander v10.51 - Final.zip")
	if !result.Valid {
		t.Fatalf("expected valid, got violations %+v", result.Violations)
	}
}

func TestValidateUnderscoreOveruse(t *testing.T) {
	result := Validate("My_Tool_Name_Crack_Final.zip")
	if result.Valid {
		t.Fatal("expected violations")
	}
	first := result.Violations[0]
	if first.Kind != KindUnderscoreOveruse {
		t.Fatalf("first violation = %s, want %s", first.Kind, KindUnderscoreOveruse)
	}
	if first.Suggestion != "My Tool Name Crack Final.zip" {
		t.Fatalf("suggestion = %q", first.Suggestion)
	}
}

func TestValidateBracketUsage(t *testing.T) {
	result := Validate("[Total Commander] v10.51.zip")
	var found *Violation
	for i := range result.Violations {
		if result.Violations[i].Kind == KindBracketUsage {
			found = &result.Violations[i]
		}
	}
	if found == nil {
		t.Fatalf("no bracket violation in %+v", result.Violations)
	}
	if strings.ContainsAny(found.Suggestion, "[]") {
		t.Fatalf("suggestion still has brackets: %q", found.Suggestion)
	}
}

func TestValidateVersionFormat(t *testing.T) {
	result := Validate("Total_Commander_10.51.zip")
	var found *Violation
	for i := range result.Violations {
		if result.Violations[i].Kind == KindVersionFormat {
			found = &result.Violations[i]
		}
	}
	if found == nil {
		t.Fatalf("no version violation in %+v", result.Violations)
	}
	if found.Suggestion != "Total_Commander v10.51.zip" {
		t.Fatalf("suggestion = %q", found.Suggestion)
	}

	// A v-prefixed version is already in standard form.
	if res := Validate("Total Commander v10.51.zip"); !res.Valid {
		t.Fatalf("v-prefixed version flagged: %+v", res.Violations)
	}
}

func TestValidateLowercaseName(t *testing.T) {
	result := Validate("photoshop cc portable.exe")
	var found *Violation
	for i := range result.Violations {
		if result.Violations[i].Kind == KindLowercaseName {
			found = &result.Violations[i]
		}
	}
	if found == nil {
		t.Fatalf("no lowercase violation in %+v", result.Violations)
	}
	if found.Suggestion != "Photoshop CC Portable.exe" {
		t.Fatalf("suggestion = %q", found.Suggestion)
	}

	// Short names are left alone.
	if res := Validate("gimp.exe"); !res.Valid {
		t.Fatalf("short lowercase name flagged: %+v", res.Violations)
	}
}

func TestValidateComplexName(t *testing.T) {
	long := strings.Repeat("VeryLongName", 10) + ".zip"
	result := Validate(long)
	var kinds []string
	for _, v := range result.Violations {
		kinds = append(kinds, v.Kind)
	}
	if len(kinds) != 1 || kinds[0] != KindComplexName {
		t.Fatalf("violations = %v, want only complex_name", kinds)
	}
}

func TestValidateInvalidChars(t *testing.T) {
	result := Validate("Tool@Home#2.zip")
	var found *Violation
	for i := range result.Violations {
		if result.Violations[i].Kind == KindInvalidChars {
			found = &result.Violations[i]
		}
	}
	if found == nil {
		t.Fatalf("no invalid chars violation in %+v", result.Violations)
	}
	if found.Suggestion != "ToolHome2.zip" {
		t.Fatalf("suggestion = %q", found.Suggestion)
	}
}
