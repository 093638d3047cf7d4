package page

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/Rorical/Ausmalbar/internal/models"
)

var ErrNoForm = errors.New("page has no form")

// Values serializes the main form the way a browser builds FormData.
func (d *Document) Values() url.Values {
	values := url.Values{}
	form := d.Form()
	if form == nil {
		return values
	}
	walk(form, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n == form {
			return true
		}
		name := attr(n, "name")
		if name == "" || hasAttr(n, "disabled") {
			return true
		}
		switch n.Data {
		case "input":
			switch inputType(n) {
			case "submit", "button", "image", "reset", "file":
			case "checkbox", "radio":
				if hasAttr(n, "checked") {
					v := attr(n, "value")
					if v == "" {
						v = "on"
					}
					values.Add(name, v)
				}
			default:
				values.Add(name, attr(n, "value"))
			}
		case "textarea":
			values.Add(name, textContent(n))
		case "select":
			for _, opt := range selectedOptions(n) {
				values.Add(name, optionValue(opt))
			}
		}
		return true
	})
	return values
}

// Action is the form's declared target, resolved against the page URL. An
// empty action posts back to the page itself.
func (d *Document) Action() (string, error) {
	form := d.Form()
	if form == nil {
		return "", ErrNoForm
	}
	return d.Resolve(attr(form, "action"))
}

// Prompt is the current value of the editable prompt field.
func (d *Document) Prompt() string {
	return fieldValue(d.ByID(PromptID))
}

// SetPrompt writes the editable prompt field. It reports false when the page
// has no prompt field.
func (d *Document) SetPrompt(prompt string) bool {
	n := d.ByID(PromptID)
	if n == nil {
		return false
	}
	setFieldValue(n, prompt)
	return true
}

// SystemPrompt is the selected system prompt id.
func (d *Document) SystemPrompt() string {
	return fieldValue(d.ByID(SystemPromptID))
}

// SetSystemPrompt selects the option with the given value. It reports false
// when the select or the option is missing.
func (d *Document) SetSystemPrompt(value string) bool {
	sel := d.ByID(SystemPromptID)
	if sel == nil {
		return false
	}
	return selectOption(sel, value)
}

func (d *Document) SystemPromptOptions() []models.Option {
	sel := d.ByID(SystemPromptID)
	if sel == nil {
		return nil
	}
	var out []models.Option
	for _, opt := range options(sel) {
		out = append(out, models.Option{
			Value: optionValue(opt),
			Label: strings.TrimSpace(textContent(opt)),
		})
	}
	return out
}

// CSRFToken is the anti-forgery token rendered into the page.
func (d *Document) CSRFToken() string {
	return fieldValue(d.ByName(CSRFFieldName))
}

// Snapshot copies the editable fields into their hidden transmission fields,
// sets the intent marker and returns the form as it would be sent now.
func (d *Document) Snapshot(intent models.Intent) url.Values {
	if prompt, hidden := d.ByID(PromptID), d.ByID(HiddenPromptID); prompt != nil && hidden != nil {
		setFieldValue(hidden, strings.TrimSpace(fieldValue(prompt)))
	}
	if sel, hidden := d.ByID(SystemPromptID), d.ByID(SystemPromptInput); sel != nil && hidden != nil {
		setFieldValue(hidden, fieldValue(sel))
	}
	if marker := d.ByID(FormActionID); marker != nil {
		setFieldValue(marker, intent.String())
	}
	return d.Values()
}

func inputType(n *html.Node) string {
	t := strings.ToLower(attr(n, "type"))
	if t == "" {
		return "text"
	}
	return t
}

func fieldValue(n *html.Node) string {
	if n == nil {
		return ""
	}
	switch n.Data {
	case "textarea":
		return textContent(n)
	case "select":
		if opts := selectedOptions(n); len(opts) > 0 {
			return optionValue(opts[0])
		}
		return ""
	default:
		return attr(n, "value")
	}
}

func setFieldValue(n *html.Node, v string) {
	switch n.Data {
	case "textarea":
		setText(n, v)
	case "select":
		selectOption(n, v)
	default:
		setAttr(n, "value", v)
	}
}

func options(sel *html.Node) []*html.Node {
	return findAll(sel, func(n *html.Node) bool {
		return n.Data == "option"
	})
}

func optionValue(opt *html.Node) string {
	if hasAttr(opt, "value") {
		return attr(opt, "value")
	}
	return strings.TrimSpace(textContent(opt))
}

// selectedOptions follows browser rules: explicitly selected options, or the
// first option of a single select.
func selectedOptions(sel *html.Node) []*html.Node {
	all := options(sel)
	var selected []*html.Node
	for _, opt := range all {
		if hasAttr(opt, "selected") && !hasAttr(opt, "disabled") {
			selected = append(selected, opt)
		}
	}
	if len(selected) == 0 && !hasAttr(sel, "multiple") && len(all) > 0 {
		return all[:1]
	}
	if !hasAttr(sel, "multiple") && len(selected) > 1 {
		return selected[len(selected)-1:]
	}
	return selected
}

func selectOption(sel *html.Node, value string) bool {
	var target *html.Node
	all := options(sel)
	for _, opt := range all {
		if optionValue(opt) == value {
			target = opt
			break
		}
	}
	if target == nil {
		return false
	}
	for _, opt := range all {
		removeAttr(opt, "selected")
	}
	setAttr(target, "selected", "")
	return true
}
