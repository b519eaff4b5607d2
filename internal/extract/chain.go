// Package extract locates stream sources inside provider embed documents
// by running an ordered chain of extraction strategies.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"reelfetch/internal/media"
)

// InlineStreamName labels descriptors found directly in document text.
const InlineStreamName = "Inline Stream"

// Result is what one embed document yielded. Inline is only populated when
// no candidates were found.
type Result struct {
	Candidates []media.SourceCandidate
	Inline     []media.StreamDescriptor
}

// Empty reports whether the document yielded nothing at all.
func (r Result) Empty() bool {
	return len(r.Candidates) == 0 && len(r.Inline) == 0
}

// Chain runs the ScriptConfig, DomAttribute and InlineText tiers in order.
// A Chain is immutable and safe for concurrent use.
type Chain struct {
	script scriptConfigStrategy
	dom    domAttributeStrategy
	inline inlineTextStrategy
}

// NewChain compiles p (with defaults filled in) into a Chain.
func NewChain(p Patterns) (*Chain, error) {
	p = p.WithDefaults()

	scriptRes, err := compileAll("script_config", p.ScriptConfig)
	if err != nil {
		return nil, err
	}
	inlineRes, err := compileAll("inline_stream", p.InlineStream)
	if err != nil {
		return nil, err
	}
	for _, attr := range p.DomAttributes {
		if !validAttribute.MatchString(attr) {
			return nil, fmt.Errorf("dom_attributes: invalid attribute name %q", attr)
		}
	}

	return &Chain{
		script: scriptConfigStrategy{markers: p.ScriptMarkers, patterns: scriptRes},
		dom:    newDomAttributeStrategy(p.DomAttributes),
		inline: inlineTextStrategy{patterns: inlineRes},
	}, nil
}

// Extract runs the tiers against doc. It never fails: markup that cannot
// be parsed simply contributes no matches.
func (c *Chain) Extract(doc *media.EmbedDocument, mediaID string) Result {
	var res Result
	if doc == nil {
		return res
	}

	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc.Body))
	if err == nil {
		res.Candidates = candidates(media.ScriptConfig, c.script.find(parsed), doc.RequestURL)
		if len(res.Candidates) == 0 {
			res.Candidates = candidates(media.DomAttribute, c.dom.find(parsed), doc.RequestURL)
		}
	}
	if len(res.Candidates) > 0 {
		return res
	}

	for _, u := range lo.Uniq(c.inline.find(doc.Body)) {
		res.Inline = append(res.Inline, media.StreamDescriptor{
			Name:      InlineStreamName,
			MediaID:   mediaID,
			StreamURL: u,
		})
	}
	return res
}

// candidates normalizes raw identifiers and collapses duplicates, keeping
// discovery order.
func candidates(tier media.Tier, raw []string, origin string) []media.SourceCandidate {
	var out []media.SourceCandidate
	for _, v := range raw {
		id := NormalizeID(v)
		if id == "" {
			continue
		}
		out = append(out, media.SourceCandidate{ID: id, Tier: tier, OriginURL: origin})
	}
	return lo.UniqBy(out, func(c media.SourceCandidate) string { return c.ID })
}

var nonDigits = regexp.MustCompile(`\D+`)

// NormalizeID strips every non-digit character from an identifier.
func NormalizeID(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

// scriptConfigStrategy scans player configuration inside script blocks.
type scriptConfigStrategy struct {
	markers  []string
	patterns []*regexp.Regexp
}

func (s scriptConfigStrategy) qualifies(script string) bool {
	if len(s.markers) == 0 {
		return true
	}
	for _, m := range s.markers {
		if strings.Contains(script, m) {
			return true
		}
	}
	return false
}

func (s scriptConfigStrategy) find(doc *goquery.Document) []string {
	var ids []string
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if strings.TrimSpace(text) == "" || !s.qualifies(text) {
			return
		}
		for _, re := range s.patterns {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				ids = append(ids, m[1])
			}
		}
	})
	return ids
}

// domAttributeStrategy reads identifier attributes off markup elements,
// preferring earlier attributes when an element carries several.
type domAttributeStrategy struct {
	attrs    []string
	selector string
}

func newDomAttributeStrategy(attrs []string) domAttributeStrategy {
	sels := make([]string, len(attrs))
	for i, a := range attrs {
		sels[i] = "[" + a + "]"
	}
	return domAttributeStrategy{attrs: attrs, selector: strings.Join(sels, ", ")}
}

func (d domAttributeStrategy) find(doc *goquery.Document) []string {
	if d.selector == "" {
		return nil
	}
	var ids []string
	doc.Find(d.selector).Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range d.attrs {
			if v, ok := sel.Attr(attr); ok && NormalizeID(v) != "" {
				ids = append(ids, v)
				return
			}
		}
	})
	return ids
}

// inlineTextStrategy looks for literal playlist URLs in the raw document.
type inlineTextStrategy struct {
	patterns []*regexp.Regexp
}

func (in inlineTextStrategy) find(body string) []string {
	var urls []string
	for _, re := range in.patterns {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			u := strings.ReplaceAll(m[1], `\/`, "/")
			if media.IsPlaylistURL(u) {
				urls = append(urls, u)
			}
		}
	}
	return urls
}
