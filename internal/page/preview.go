package page

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/Rorical/Ausmalbar/internal/models"
)

// Preview extracts what the terminal views show of the page.
func (d *Document) Preview() models.Preview {
	return models.Preview{
		URL:           d.url.String(),
		Kind:          d.Kind().String(),
		TitleEN:       strings.TrimSpace(d.SlotText(SlotTitleEN)),
		TitleDE:       strings.TrimSpace(d.SlotText(SlotTitleDE)),
		DescriptionEN: strings.TrimSpace(d.SlotText(SlotDescriptionEN)),
		DescriptionDE: strings.TrimSpace(d.SlotText(SlotDescriptionDE)),
		ThumbRef:      d.Thumbnail(),
		Prompt:        d.Prompt(),
		SystemPrompt:  d.SystemPrompt(),
		SystemPrompts: d.SystemPromptOptions(),
		Flashes:       d.Flashes(),
	}
}

// Flashes returns the one-shot messages the server rendered into the page.
func (d *Document) Flashes() []string {
	list := d.ByClass(FlashMessageList)
	if list == nil {
		return nil
	}
	var out []string
	for _, li := range findAll(list, func(n *html.Node) bool { return n.Data == "li" }) {
		if text := strings.TrimSpace(textContent(li)); text != "" {
			out = append(out, text)
		}
	}
	return out
}
