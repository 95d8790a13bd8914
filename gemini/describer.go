package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/artdir"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Ensure Describer implements artdir.Describer at compile time.
var _ artdir.Describer = (*Describer)(nil)

// Describer implements artdir.Describer using Google Gemini.
type Describer struct {
	client *genai.Client
}

// NewDescriber creates a new Describer.
func NewDescriber(client *genai.Client) *Describer {
	return &Describer{client: client}
}

// Describe writes a meta description for a location page.
func (d *Describer) Describe(ctx context.Context, loc *artdir.Location) (string, error) {
	if loc == nil || loc.City == "" {
		return "", artdir.Errorf(artdir.EINVALID, "location city required")
	}
	if d.client == nil {
		return "", artdir.Errorf(artdir.EINVALID, "gemini client required")
	}

	result, err := d.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildPrompt(loc)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", artdir.Errorf(artdir.EINTERNAL, "gemini returned nil result")
	}

	desc := CleanDescription(result.Text())
	if desc == "" {
		return "", artdir.Errorf(artdir.EINTERNAL, "gemini returned an empty description for %q", loc.Slug)
	}
	return desc, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.3)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: fmt.Sprintf("You write meta descriptions for a directory of art appraisers. "+
					"Reply with a single plain-text sentence of at most %d characters. "+
					"Do not use quotes, markdown or emoji. Mention the city and what visitors can find.",
					artdir.MaxDescriptionLength),
			}},
		},
		Temperature: &temp,
	}
}

// BuildPrompt describes the location's listings for the model.
func BuildPrompt(loc *artdir.Location) string {
	var sb strings.Builder
	place := loc.City
	if loc.State != "" {
		place += ", " + loc.State
	}
	fmt.Fprintf(&sb, "Location: %s\n", place)
	fmt.Fprintf(&sb, "Appraisers listed: %d\n", len(loc.Appraisers))

	seen := make(map[string]bool)
	var specialties []string
	for _, a := range loc.Appraisers {
		for _, s := range a.Specialties {
			if s == "" || seen[strings.ToLower(s)] {
				continue
			}
			seen[strings.ToLower(s)] = true
			specialties = append(specialties, s)
		}
	}
	if len(specialties) > 0 {
		fmt.Fprintf(&sb, "Specialties: %s\n", strings.Join(specialties, ", "))
	}

	sb.WriteString("<appraisers>\n")
	for _, a := range loc.Appraisers {
		fmt.Fprintf(&sb, "- %s", a.Name)
		if a.Rating > 0 {
			fmt.Fprintf(&sb, " (rated %.1f from %d reviews)", a.Rating, a.ReviewCount)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("</appraisers>\n\n")
	sb.WriteString("Write the meta description for this page.")
	return sb.String()
}

// CleanDescription strips surrounding quotes and collapses whitespace in
// model output.
func CleanDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}
