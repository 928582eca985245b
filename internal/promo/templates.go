package promo

import (
	"fmt"

	"promostudio/internal/domain"
)

// Template is a preset promo video brief.
type Template struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Prompt   string `json:"prompt"`
}

var catalog = []Template{
	{
		ID:       "company-registration",
		Name:     "Company Registration",
		Category: "Business Setup",
		Prompt:   "A cinematic 8 second promo: a young founder signs incorporation papers in a bright modern office, the camera pushes in as a company seal is stamped, warm morning light, confident and optimistic mood, clean corporate colour grade.",
	},
	{
		ID:       "trademark-filing",
		Name:     "Trademark Filing",
		Category: "Intellectual Property",
		Prompt:   "A sleek product shot style video: a glowing brand logo is sketched on paper, lifts off into 3D and is wrapped in a protective shield of light, dark studio background with gold accents, premium and trustworthy tone.",
	},
	{
		ID:       "gst-registration",
		Name:     "GST Registration",
		Category: "Tax & Compliance",
		Prompt:   "A friendly explainer-style video: a small shop owner scans invoices on a tablet, numbers and check marks float up and settle into a tidy dashboard, soft pastel palette, calm reassuring pacing.",
	},
	{
		ID:       "accounting-bookkeeping",
		Name:     "Accounting & Bookkeeping",
		Category: "Finance",
		Prompt:   "A smooth time-lapse of a messy desk of receipts transforming into neatly organised digital ledgers on a laptop screen, city skyline at dusk through the window, professional and efficient feel.",
	},
	{
		ID:       "legal-consultation",
		Name:     "Legal Consultation",
		Category: "Legal",
		Prompt:   "A warm, human video: a lawyer and an entrepreneur shake hands across a wooden table in a library-like office, shallow depth of field, slow dolly shot, golden hour light, sense of trust and expertise.",
	},
	{
		ID:       "website-launch",
		Name:     "Website Launch",
		Category: "Digital Presence",
		Prompt:   "An energetic motion-graphics style video: wireframes assemble into a polished storefront website on multiple devices, vibrant gradient background, quick upbeat cuts, ending on a launch button being pressed.",
	},
}

// Templates returns a copy of the catalog.
func Templates() []Template {
	out := make([]Template, len(catalog))
	copy(out, catalog)
	return out
}

// LookupTemplate finds a template by id.
func LookupTemplate(id string) (Template, error) {
	for _, t := range catalog {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", domain.ErrUnknownTemplate, id)
}
