// Package parser turns raw LLM prediction text into structured sections
// and extracts the numeric target price.
package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/stockcast/internal/models"
)

// sectionHeaders maps response labels to section keys, checked in order
var sectionHeaders = []struct {
	label string
	key   string
}{
	{"SUMMARY:", models.SectionSummary},
	{"PRICE ANALYSIS:", models.SectionPrices},
	{"NEWS IMPACT:", models.SectionNews},
	{"SENTIMENT ANALYSIS:", models.SectionSentiment},
	{"PREDICTION:", models.SectionForecast},
	{"CONFIDENCE LEVEL:", models.SectionConfidence},
	{"RISK FACTORS:", models.SectionRisks},
}

var (
	dollarAmountPattern = regexp.MustCompile(`\$([0-9]+(?:\.[0-9]+)?)`)
	targetPhrasePattern = regexp.MustCompile(`(?i)target\s+price[^0-9$]*\$?([0-9]+(?:\.[0-9]+)?)`)
	anyAmountPattern    = regexp.MustCompile(`\$?([0-9]+(?:\.[0-9]+)?)`)
)

// ParseSections splits a response into the seven named sections. Lines
// before the first header are ignored; lines after a header that are not
// themselves headers are appended to the current section. Every key is
// always present, empty when the model skipped the section.
func ParseSections(response string) map[string]string {
	sections := make(map[string]string, len(sectionHeaders))
	for _, h := range sectionHeaders {
		sections[h.key] = ""
	}

	current := ""
	for _, rawLine := range strings.Split(response, "\n") {
		line := strings.TrimSpace(rawLine)

		if key, rest, ok := matchHeader(line); ok {
			current = key
			sections[current] = rest
			continue
		}

		if current != "" && line != "" {
			if sections[current] == "" {
				sections[current] = line
			} else {
				sections[current] += " " + line
			}
		}
	}

	return sections
}

// matchHeader reports whether a line starts a new section. Numbered and
// markdown-decorated headers ("5. PREDICTION:", "**PREDICTION:**") count.
func matchHeader(line string) (key, rest string, ok bool) {
	stripped := strings.TrimLeft(line, "*#-1234567890. ")
	for _, h := range sectionHeaders {
		if strings.HasPrefix(stripped, h.label) {
			rest = strings.TrimSpace(strings.TrimPrefix(stripped, h.label))
			rest = strings.TrimSpace(strings.Trim(rest, "*"))
			return h.key, rest, true
		}
	}
	return "", "", false
}

// ExtractTargetPrice pulls the predicted price out of a parsed response.
// Rules apply in order:
//  1. a dollar amount inside the PREDICTION section
//  2. a number following the phrase "target price" anywhere in the text
//  3. the first dollar amount anywhere in the text
//
// Returns nil when no rule matches.
func ExtractTargetPrice(sections map[string]string, fullText string) *decimal.Decimal {
	if forecast, ok := sections[models.SectionForecast]; ok && forecast != "" {
		if m := dollarAmountPattern.FindStringSubmatch(forecast); m != nil {
			return parsePrice(m[1])
		}
	}

	if m := targetPhrasePattern.FindStringSubmatch(fullText); m != nil {
		return parsePrice(m[1])
	}

	if m := dollarAmountPattern.FindStringSubmatch(fullText); m != nil {
		return parsePrice(m[1])
	}

	return nil
}

// ExtractPriceFromString applies the loose numeric match used for raw
// target price fields that may carry text around the number.
func ExtractPriceFromString(value string) *decimal.Decimal {
	if m := anyAmountPattern.FindStringSubmatch(value); m != nil {
		return parsePrice(m[1])
	}
	return nil
}

// Parse builds a complete PredictionResult from raw response text
func Parse(symbol, userQuery, response string, generatedAt time.Time) *models.PredictionResult {
	sections := ParseSections(response)
	return &models.PredictionResult{
		Symbol:      symbol,
		UserQuery:   userQuery,
		Text:        response,
		Sections:    sections,
		TargetPrice: ExtractTargetPrice(sections, response),
		GeneratedAt: generatedAt,
	}
}

func parsePrice(value string) *decimal.Decimal {
	price, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	return &price
}
