// Package format renders catalog records as Telegram-ready HTML text:
// price localization, stock metadata and purchase links.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bazaarbot/bazaarbot/internal/models"
)

// EmptyResultMessage is shown when a rendered result set is empty.
const EmptyResultMessage = "فعلاً موردی مطابق معیارها موجود نیست."

const (
	persianThousandsSep = "٬"
	viewLinkLabel       = "مشاهده/خرید"
)

// Formatter localizes prices and renders product listings. Safe for
// concurrent use; it holds only immutable presentation settings.
type Formatter struct {
	divisor       float64
	currencyLabel string
}

// New creates a Formatter. A zero divisor leaves price values unscaled.
func New(divisor float64, currencyLabel string) *Formatter {
	return &Formatter{divisor: divisor, currencyLabel: currencyLabel}
}

// LocalizePrice converts a raw store price string into display form.
// Empty and "0" inputs render as zero; numeric inputs are divided by the
// configured divisor and grouped; anything unparseable is emitted verbatim
// with the currency label appended. Never fails, never returns empty.
func (f *Formatter) LocalizePrice(raw string) string {
	if raw == "" || raw == "0" {
		return "0 " + f.currencyLabel
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw + " " + f.currencyLabel
	}
	if f.divisor != 0 {
		val /= f.divisor
	}
	// NaN, infinities and values past the int64 range can't be grouped;
	// emit them verbatim like any other unparseable input.
	if math.IsNaN(val) || math.IsInf(val, 0) || math.Abs(val) >= math.MaxInt64 {
		return raw + " " + f.currencyLabel
	}
	return groupThousands(val) + " " + f.currencyLabel
}

// RenderProducts renders records as HTML blocks separated by blank lines.
// A record with malformed metadata still renders; only its metadata is lost.
func (f *Formatter) RenderProducts(products []models.ProductRecord) string {
	if len(products) == 0 {
		return EmptyResultMessage
	}

	blocks := make([]string, 0, len(products))
	for i := range products {
		p := &products[i]

		raw := p.Price
		if raw == "" {
			raw = p.RegularPrice
		}

		line := fmt.Sprintf("• <b>%s</b> — %s", strings.TrimSpace(p.Name), f.LocalizePrice(raw))
		if meta := productMeta(p); meta != "" {
			line += " | " + meta
		}
		line += fmt.Sprintf("\n<a href='%s'>%s</a>", strings.TrimSpace(p.Permalink), viewLinkLabel)
		blocks = append(blocks, line)
	}
	return strings.Join(blocks, "\n\n")
}

func productMeta(p *models.ProductRecord) string {
	var parts []string
	if brand := brandOf(p); brand != "" {
		parts = append(parts, brand)
	}
	if sku := strings.TrimSpace(p.SKU); sku != "" {
		parts = append(parts, "SKU: "+sku)
	}
	return strings.Join(parts, " | ")
}

// brandOf opportunistically pulls a brand label from product attributes.
func brandOf(p *models.ProductRecord) string {
	for _, attr := range p.Attributes {
		name := strings.ToLower(strings.TrimSpace(attr.Name))
		if (name == "brand" || name == "برند") && len(attr.Options) > 0 {
			return attr.Options[0]
		}
	}
	return ""
}

// groupThousands renders v rounded to the nearest integer with the Persian
// thousands separator between digit groups.
func groupThousands(v float64) string {
	n := int64(math.Round(v))
	s := strconv.FormatInt(n, 10)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(persianThousandsSep)
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
