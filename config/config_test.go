package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() is not valid: %v", err)
	}
}

func TestParseOverridesOnlyGivenFields(t *testing.T) {
	c := Default()
	if err := c.Parse([]byte("Dim: 4\nOrder: 3\n")); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Dim != 4 {
		t.Fatalf("Dim = %d, want 4", c.Dim)
	}
	if c.Order != 3 {
		t.Fatalf("Order = %d, want 3", c.Order)
	}
	if c.Depth != 1 {
		t.Fatalf("Depth = %d, want unchanged default 1", c.Depth)
	}
}

func TestValidateRejectsBadLoadFlexibility(t *testing.T) {
	c := Default()
	c.LoadFlexibility = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for LoadFlexibility == 0")
	}
	c.LoadFlexibility = 1.5
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for LoadFlexibility > 1")
	}
}

func TestValidateRejectsBadDim(t *testing.T) {
	c := Default()
	c.Dim = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for Dim == 0")
	}
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	c := Default()
	c.Strategy = "bogus"
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for an unknown Strategy")
	}
	c.Strategy = "metis"
	if err := c.Validate(); err != nil {
		t.Fatalf("Strategy \"metis\" should be valid: %v", err)
	}
}
