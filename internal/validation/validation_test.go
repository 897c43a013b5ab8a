package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  string
		valid bool
	}{
		{"valid", "+998901234567", "+998901234567", true},
		{"bare digits normalized", "998901234567", "+998901234567", true},
		{"surrounding spaces", "  +998901234567 ", "+998901234567", true},
		{"too short", "+99890123456", "", false},
		{"too long", "+9989012345678", "", false},
		{"foreign", "+79001234567", "", false},
		{"letters", "+998abcdefghi", "", false},
		{"inner spaces", "+998 90 123 45 67", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ValidatePhone(tt.raw)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+998901234567", NormalizePhone("998901234567"))
	assert.Equal(t, "+998901234567", NormalizePhone(" +998901234567 "))
	assert.Equal(t, "abc", NormalizePhone("abc"))
	assert.Equal(t, "", NormalizePhone("  "))
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"Aziz Aliyev", "Aziz Aliyev", true},
		{"  Aziz Aliyev  ", "Aziz Aliyev", true},
		{"Азиз Алиев", "Азиз Алиев", true},
		{"Ёркин", "Ёркин", true},
		{"Ғайрат Ўроқов", "Ғайрат Ўроқов", true},
		{"Шоҳида Қодирова", "Шоҳида Қодирова", true},
		{"A", "", false},
		{"Aziz123", "", false},
		{"Aziz!", "", false},
		{"", "", false},
		{strings.Repeat("a", 50), strings.Repeat("a", 50), true},
		{strings.Repeat("a", 51), "", false},
		{strings.Repeat("б", 50), strings.Repeat("б", 50), true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ValidateName(tt.raw)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateAge(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"25", 25, true},
		{"13", 13, true},
		{"80", 80, true},
		{"12", 0, false},
		{"81", 0, false},
		{"twenty", 0, false},
		{"25.5", 0, false},
		{"", 0, false},
		{" 30 ", 30, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ValidateAge(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateHeightAndWeight(t *testing.T) {
	for _, raw := range []string{"120", "175", "220"} {
		_, ok := ValidateHeight(raw)
		assert.True(t, ok, raw)
	}
	for _, raw := range []string{"119", "221", "abc", ""} {
		_, ok := ValidateHeight(raw)
		assert.False(t, ok, raw)
	}

	w, ok := ValidateWeight("30")
	assert.True(t, ok)
	assert.Equal(t, 30, w)
	_, ok = ValidateWeight("300")
	assert.True(t, ok)

	for _, raw := range []string{"29", "301", "seventy"} {
		_, ok := ValidateWeight(raw)
		assert.False(t, ok, raw)
	}
}

func TestValidRegion(t *testing.T) {
	assert.True(t, ValidRegion("Toshkent shahri"))
	assert.True(t, ValidRegion("Qoraqalpog'iston"))
	assert.False(t, ValidRegion("toshkent shahri"))
	assert.False(t, ValidRegion(""))
}
