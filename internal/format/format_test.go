package format_test

import (
	"strings"
	"testing"

	"github.com/bazaarbot/bazaarbot/internal/format"
	"github.com/bazaarbot/bazaarbot/internal/models"
)

func newTomanFormatter(t *testing.T) *format.Formatter {
	t.Helper()
	return format.New(10, "تومان")
}

func TestLocalizePrice_ZeroInputs(t *testing.T) {
	f := newTomanFormatter(t)

	for _, raw := range []string{"", "0"} {
		if got := f.LocalizePrice(raw); got != "0 تومان" {
			t.Errorf("LocalizePrice(%q) = %q, want %q", raw, got, "0 تومان")
		}
	}
}

func TestLocalizePrice_DividesAndGroups(t *testing.T) {
	f := newTomanFormatter(t)

	tests := []struct {
		raw  string
		want string
	}{
		{"1234567890", "123٬456٬789 تومان"},
		{"50000000", "5٬000٬000 تومان"},
		{"12000", "1٬200 تومان"},
		{"90", "9 تومان"},
		{"95", "10 تومان"}, // rounds to nearest display unit
	}
	for _, tt := range tests {
		if got := f.LocalizePrice(tt.raw); got != tt.want {
			t.Errorf("LocalizePrice(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestLocalizePrice_ZeroDivisorSkipsDivision(t *testing.T) {
	f := format.New(0, "تومان")

	if got := f.LocalizePrice("1500"); got != "1٬500 تومان" {
		t.Errorf("LocalizePrice(%q) = %q, want %q", "1500", got, "1٬500 تومان")
	}
}

func TestLocalizePrice_MalformedFallsBackVerbatim(t *testing.T) {
	f := newTomanFormatter(t)

	for _, raw := range []string{"abc", "12,000", "۱۲۰۰"} {
		want := raw + " تومان"
		if got := f.LocalizePrice(raw); got != want {
			t.Errorf("LocalizePrice(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestLocalizePrice_NonFiniteAndHugeFallBackVerbatim(t *testing.T) {
	f := newTomanFormatter(t)

	// ParseFloat accepts these, but they have no sane grouped rendering.
	for _, raw := range []string{"1e30", "-1e30", "NaN", "Inf", "-Inf", "9223372036854775808000"} {
		want := raw + " تومان"
		if got := f.LocalizePrice(raw); got != want {
			t.Errorf("LocalizePrice(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestRenderProducts_Empty(t *testing.T) {
	f := newTomanFormatter(t)

	if got := f.RenderProducts(nil); got != format.EmptyResultMessage {
		t.Errorf("RenderProducts(nil) = %q, want %q", got, format.EmptyResultMessage)
	}
	if got := f.RenderProducts([]models.ProductRecord{}); got != format.EmptyResultMessage {
		t.Errorf("RenderProducts(empty) = %q, want %q", got, format.EmptyResultMessage)
	}
}

func TestRenderProducts_FullBlock(t *testing.T) {
	f := newTomanFormatter(t)

	products := []models.ProductRecord{
		{
			Name:      "گوشی سامسونگ A55",
			Price:     "125000000",
			Permalink: "https://shop.example/p/a55",
			SKU:       "SM-A55",
			Attributes: []models.ProductAttribute{
				{Name: "برند", Options: []string{"Samsung"}},
			},
		},
		{
			Name:         "هدفون بی‌سیم",
			RegularPrice: "9000000", // falls back when price is empty
			Permalink:    "https://shop.example/p/buds",
		},
	}

	got := f.RenderProducts(products)

	for _, want := range []string{
		"<b>گوشی سامسونگ A55</b>",
		"12٬500٬000 تومان",
		"Samsung",
		"SKU: SM-A55",
		"<a href='https://shop.example/p/a55'>مشاهده/خرید</a>",
		"900٬000 تومان",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderProducts() missing %q in:\n%s", want, got)
		}
	}

	if blocks := strings.Split(got, "\n\n"); len(blocks) != 2 {
		t.Errorf("RenderProducts() produced %d blocks, want 2", len(blocks))
	}
}

func TestRenderProducts_BrandMatchIsCaseInsensitive(t *testing.T) {
	f := newTomanFormatter(t)

	got := f.RenderProducts([]models.ProductRecord{{
		Name:       "لپ‌تاپ",
		Price:      "500000000",
		Attributes: []models.ProductAttribute{{Name: "BRAND", Options: []string{"Asus"}}},
	}})

	if !strings.Contains(got, "Asus") {
		t.Errorf("RenderProducts() did not extract brand, got:\n%s", got)
	}
}

func TestRenderProducts_MalformedMetadataDoesNotAbort(t *testing.T) {
	f := newTomanFormatter(t)

	products := []models.ProductRecord{
		{
			Name:       "کالای اول",
			Price:      "not-a-number",
			Attributes: []models.ProductAttribute{{Name: "برند"}}, // no options
		},
		{Name: "کالای دوم", Price: "10000"},
	}

	got := f.RenderProducts(products)

	if !strings.Contains(got, "کالای اول") || !strings.Contains(got, "کالای دوم") {
		t.Errorf("RenderProducts() dropped a record:\n%s", got)
	}
	if !strings.Contains(got, "not-a-number تومان") {
		t.Errorf("RenderProducts() did not render malformed price verbatim:\n%s", got)
	}
}
