package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/swiftcart/storefront-platform/internal/slug"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Acme Store", want: "acme-store"},
		{name: "special_chars", in: "Ali's Electronics!", want: "alis-electronics"},
		{name: "underscores_and_hyphens", in: "karachi __ mart --- online", want: "karachi-mart-online"},
		{name: "leading_trailing", in: "  --Swift Cart--  ", want: "swift-cart"},
		{name: "already_clean", in: "lahore-fashion", want: "lahore-fashion"},
		{name: "empty", in: "", want: ""},
		{name: "only_specials", in: "!!!###", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.Generate(tt.in))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "valid", in: "acme-store", want: true},
		{name: "valid_digits", in: "shop24", want: true},
		{name: "too_short", in: "ab", want: false},
		{name: "too_long", in: strings.Repeat("a", 51), want: false},
		{name: "uppercase", in: "Acme", want: false},
		{name: "double_hyphen", in: "acme--store", want: false},
		{name: "leading_hyphen", in: "-acme", want: false},
		{name: "trailing_hyphen", in: "acme-", want: false},
		{name: "spaces", in: "acme store", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.Validate(tt.in))
		})
	}
}

func TestGenerateProducesValidSlugs(t *testing.T) {
	inputs := []string{"Acme Store", "Khan's Kiryana 24/7", "The   Gadget_Hub"}
	for _, in := range inputs {
		s := slug.Generate(in)
		assert.True(t, slug.Validate(s), "Generate(%q) = %q should validate", in, s)
	}
}
