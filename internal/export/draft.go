// Package export materializes email drafts into the content operation
// model and gives them their fixed document layout.
package export

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/campaignkit/docweave/pkg/markup"
)

// Draft is one email draft as produced by the upstream content pipeline.
// Field names follow the pipeline's JSON schema. DescriptiveBlockContent
// is constrained markup; all other fields are plain text.
type Draft struct {
	Subject                  string   `json:"subject"`
	Preview                  string   `json:"preview"`
	HeroTitle                string   `json:"hero_title"`
	HeroSubtitle             string   `json:"hero_subtitle"`
	CTAHero                  string   `json:"cta_hero"`
	DescriptiveBlockTitle    string   `json:"descriptive_block_title"`
	DescriptiveBlockSubtitle string   `json:"descriptive_block_subtitle"`
	DescriptiveBlockContent  string   `json:"descriptive_block_content"`
	ProductBlockTitle        string   `json:"product_block_title"`
	ProductBlockSubtitle     string   `json:"product_block_subtitle"`
	ProductBlockContent      string   `json:"product_block_content"`
	Products                 []string `json:"products"`
	CTAProduct               string   `json:"cta_product"`
}

const separator = "##########\n"

// DocumentTitle composes the document title for a draft.
func DocumentTitle(brand, subject string, now time.Time) string {
	if subject == "" {
		subject = "Untitled Email"
	}
	return fmt.Sprintf("%s - %s - %s", brand, subject, now.Format("20060102_150405"))
}

// Ops renders the draft into the fixed field layout: an H1 title, the
// labeled header fields with bold labels, the body block run through the
// markup normalizer (this is where lists and tables enter), and the
// product block.
func (d *Draft) Ops(structureName, language string) []markup.ContentOp {
	if structureName == "" {
		structureName = "Unknown"
	}
	if language == "" {
		language = "English"
	}

	ops := []markup.ContentOp{
		markup.TextOp{Content: "Email Draft\n", Heading: true},
		markup.TextOp{Content: separator + "\n"},
		markup.TextOp{Content: "LANGUAGE: " + strings.ToUpper(language) + "\n\n"},
		labeled("Subject Line : ", d.Subject),
		labeled("Preview Text : ", d.Preview),
		markup.TextOp{Content: "\n"},
		labeled("Hero Banner Title : ", d.HeroTitle),
		labeled("Hero Banner Subtitle : ", d.HeroSubtitle),
		labeled("CTA : ", d.CTAHero),
		markup.TextOp{Content: "\n"},
		labeled("Descriptive Block Title : ", d.DescriptiveBlockTitle),
		labeled("Sub-title : ", d.DescriptiveBlockSubtitle),
		markup.TextOp{Content: "\n"},
		markup.TextOp{Content: fmt.Sprintf("[[%s]]\n", structureName)},
	}

	// The body is the one field that may carry tables and lists.
	ops = append(ops, markup.Normalize(d.DescriptiveBlockContent)...)
	ops = append(ops,
		markup.TextOp{Content: "\n"},
		labeled("CTA : ", d.CTAHero),
		markup.TextOp{Content: "\n"},
	)

	productTitle := d.ProductBlockTitle
	if productTitle == "" {
		productTitle = "Shop the Collection"
	}
	ops = append(ops,
		labeled("Product Block Title : ", productTitle),
		labeled("Product Block Subtitle : ", d.ProductBlockSubtitle),
		markup.TextOp{Content: "\n"},
	)

	if len(d.Products) == 0 && d.ProductBlockContent != "" {
		ops = append(ops, markup.TextOp{Content: d.ProductBlockContent + "\n"})
	} else {
		for _, product := range d.Products {
			ops = append(ops, markup.TextOp{Content: product + "\n"})
		}
	}

	ops = append(ops,
		labeled("CTA : ", d.CTAProduct),
		markup.TextOp{Content: separator},
	)
	return ops
}

func labeled(label, value string) markup.TextOp {
	return markup.TextOp{
		Content: label + value + "\n",
		Styles: []markup.StyleSpan{
			{Start: 0, End: utf8.RuneCountInString(label), Kind: markup.StyleBold},
		},
	}
}
