package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"practicescout/models"
)

// A strategy fills still-absent fields on a FieldSet from one view of the
// document. Strategies run in fixed priority order; the first one to produce a
// validated value for a field wins and later strategies only fill the gaps.
type strategy func(doc *goquery.Document, al Aliases, fs *models.FieldSet)

var (
	opsLeadRe  = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:ops|operatories|operatory|chairs|treatment rooms)`)
	smallIntRe = regexp.MustCompile(`\b(\d{1,2})\b`)
	amountRe   = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d+`)
	wsRe       = regexp.MustCompile(`\s+`)
)

// runStrategies applies the chain and returns the populated field set.
// Province and adapter-specific post rules are layered on by the caller.
func runStrategies(doc *goquery.Document, al Aliases, chain []strategy) *models.FieldSet {
	fs := &models.FieldSet{}
	for _, s := range chain {
		s(doc, al, fs)
	}
	return fs
}

// field returns the slot for a canonical field name.
func fieldSlot(fs *models.FieldSet, field string) **float64 {
	switch field {
	case FieldAskingPrice:
		return &fs.AskingPrice
	case FieldCollections:
		return &fs.Collections
	case FieldEbitda:
		return &fs.EbitdaOrSde
	case FieldOps:
		return &fs.EquippedOps
	case FieldSqFt:
		return &fs.SqFt
	}
	return nil
}

// plausible applies the per-field range used by the structured strategies.
// Asking price has no structured-strategy floor; the proximity fallback
// applies its own.
func plausible(field string, v float64) bool {
	switch field {
	case FieldCollections:
		return inRange(v, models.MinCollections, 0)
	case FieldEbitda:
		return inRange(v, models.MinEbitda, 0)
	case FieldSqFt:
		return inRange(v, models.MinSqFt, models.MaxSqFt)
	case FieldOps:
		return inRange(v, models.MinOps, models.MaxOps)
	}
	return true
}

// setField stores v for field if the slot is still absent and v is plausible.
func setField(fs *models.FieldSet, field string, v *float64) {
	if v == nil || !plausible(field, *v) {
		return
	}
	slot := fieldSlot(fs, field)
	if slot != nil && *slot == nil {
		*slot = v
	}
}

// matchAndSet matches a label/value pair against every alias list and stores
// the parsed value for matched fields. Monetary fields are guarded: the pair
// must visibly contain a currency marker or scale suffix.
func matchAndSet(fs *models.FieldSet, al Aliases, label, value string) {
	for field, aliases := range al {
		if !matchLabel(label, aliases) {
			continue
		}
		candidate := value
		if candidate == "" {
			candidate = label
		}
		var v *float64
		if monetaryFields[field] {
			if !moneyPresent(label) && !moneyPresent(value) {
				continue
			}
			v = parseMoney(candidate)
		} else {
			v = parseNumber(candidate)
		}
		setField(fs, field, v)
	}
}

// definitionListStrategy pairs each dt with its dd by positional index.
func definitionListStrategy(doc *goquery.Document, al Aliases, fs *models.FieldSet) {
	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		dds := dl.Find("dd")
		dl.Find("dt").Each(func(i int, dt *goquery.Selection) {
			label := cleanText(dt.Text())
			if label == "" {
				return
			}
			value := ""
			if i < dds.Length() {
				value = cleanText(dds.Eq(i).Text())
			}
			matchAndSet(fs, al, label, value)
		})
	})
}

// tableStrategy treats the first cell of each row as label, the second as value.
func tableStrategy(doc *goquery.Document, al Aliases, fs *models.FieldSet) {
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("th,td")
		if cells.Length() < 2 {
			return
		}
		label := cleanText(cells.Eq(0).Text())
		value := cleanText(cells.Eq(1).Text())
		matchAndSet(fs, al, label, value)
	})
}

// labeledElementStrategy scans emphasis/heading/label-like elements and, when
// the element's own text matches an alias, parses a bundle of neighbouring
// text. Handles "Label" and "Value" rendered as separate adjacent nodes.
func labeledElementStrategy(doc *goquery.Document, al Aliases, fs *models.FieldSet) {
	doc.Find("strong, b, th, .label, .listing__label").Each(func(_ int, sel *goquery.Selection) {
		label := cleanText(sel.Text())
		if label == "" {
			return
		}
		bundle := neighborBundle(sel)
		for field, aliases := range al {
			if !matchLabel(label, aliases) {
				continue
			}
			var v *float64
			if monetaryFields[field] {
				if !moneyPresent(bundle) {
					continue
				}
				v = parseMoney(bundle)
			} else {
				v = parseNumber(bundle)
			}
			setField(fs, field, v)
		}
	})
}

// neighborBundle concatenates the element's text, the next sibling's text,
// and up to three span/div/dd/td siblings under the same parent.
func neighborBundle(sel *goquery.Selection) string {
	bits := []string{cleanText(sel.Text())}
	if next := sel.Next(); next.Length() > 0 {
		bits = append(bits, cleanText(next.Text()))
	}
	sel.Parent().Find("span,div,dd,td").EachWithBreak(func(i int, ch *goquery.Selection) bool {
		if i >= 3 {
			return false
		}
		if t := cleanText(ch.Text()); t != "" {
			bits = append(bits, t)
		}
		return true
	})
	var nonEmpty []string
	for _, b := range bits {
		if b != "" {
			nonEmpty = append(nonEmpty, b)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// iconListStrategy handles fact lists where label and value share one list
// item ("4 Operatories", "Gross Revenue: $1.2M"). Common on Elementor sites.
func iconListStrategy(doc *goquery.Document, al Aliases, fs *models.FieldSet) {
	doc.Find(".elementor-icon-list-item, .elementor-widget-text-editor li, li").Each(func(_ int, li *goquery.Selection) {
		text := cleanText(li.Text())
		if text == "" {
			return
		}
		for field, aliases := range al {
			if !matchLabel(text, aliases) {
				continue
			}
			var v *float64
			switch {
			case monetaryFields[field]:
				if !moneyPresent(text) {
					continue
				}
				v = parseMoney(text)
			case field == FieldOps:
				if m := opsLeadRe.FindStringSubmatch(text); m != nil {
					v = parseNumber(m[1])
				}
			default:
				v = parseNumber(text)
			}
			setField(fs, field, v)
		}
	})
}

// proximityWindow bounds the last-resort full-text search: a short lead-in
// before the alias hit and a longer tail after it.
const (
	proximityBefore = 20
	proximityAfter  = 140
)

// proximityStrategy is the last resort: find the first alias occurrence in the
// flattened page text and parse a number out of a bounded window around it.
// Most error-prone, hence the tightest guards: monetary fields need a visible
// currency marker inside the window and asking price gets a hard floor.
func proximityStrategy(doc *goquery.Document, al Aliases, fs *models.FieldSet) {
	flat := flattenText(doc)
	lower := strings.ToLower(flat)

	for _, field := range []string{FieldAskingPrice, FieldCollections, FieldEbitda} {
		slot := fieldSlot(fs, field)
		if *slot != nil {
			continue
		}
		for _, kw := range al[field] {
			i := strings.Index(lower, kw)
			if i < 0 {
				continue
			}
			window := sliceWindow(flat, i, len(kw))
			if !moneyPresent(window) {
				continue
			}
			v := parseMoney(window)
			if v == nil {
				continue
			}
			min := models.MinAskingPrice
			switch field {
			case FieldCollections:
				min = models.MinCollections
			case FieldEbitda:
				min = models.MinEbitda
			}
			if *v >= float64(min) {
				*slot = v
				break
			}
		}
	}

	// Ops and sqft sit in prose ("4 operatories across 1,600 sq ft"), so the
	// window includes the lead-in before the alias and the first plausible
	// number anywhere inside it wins.
	if fs.EquippedOps == nil {
		for _, kw := range al[FieldOps] {
			i := strings.Index(lower, kw)
			if i < 0 {
				continue
			}
			if m := smallIntRe.FindStringSubmatch(sliceWindow(flat, i, len(kw))); m != nil {
				setField(fs, FieldOps, parseNumber(m[1]))
				if fs.EquippedOps != nil {
					break
				}
			}
		}
	}
	if fs.SqFt == nil {
		for _, kw := range al[FieldSqFt] {
			i := strings.Index(lower, kw)
			if i < 0 {
				continue
			}
			if m := amountRe.FindString(sliceWindow(flat, i, len(kw))); m != "" {
				setField(fs, FieldSqFt, parseNumber(m))
				if fs.SqFt != nil {
					break
				}
			}
		}
	}
}

func sliceWindow(s string, hit, kwLen int) string {
	lo := hit - proximityBefore
	if lo < 0 {
		lo = 0
	}
	hi := hit + kwLen + proximityAfter
	if hi > len(s) {
		hi = len(s)
	}
	return s[lo:hi]
}

// flattenText collapses the document's text into a single whitespace-normalized
// string, the same view the proximity and province scans operate on.
func flattenText(doc *goquery.Document) string {
	return cleanText(doc.Text())
}

func cleanText(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}
