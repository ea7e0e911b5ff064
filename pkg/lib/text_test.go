package lib

import "testing"

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  gardening  ", "gardening"},
		{"Gardening", "Gardening"},
		{"\t\n", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeText(c.in); got != c.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeKeyword(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Gardening  ", "gardening"},
		{"LAWN Mowing", "lawn mowing"},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := NormalizeKeyword(c.in); got != c.want {
			t.Errorf("NormalizeKeyword(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
		Age  int    `validate:"gte=0"`
	}

	if err := ValidateStruct(&payload{Name: "x"}); err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}

	err := ValidateStruct(&payload{Age: -1})
	if err == nil {
		t.Fatal("expected validation failure")
	}
}
