package page

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Rorical/Ausmalbar/internal/models"
)

// Slot is one of the four labeled preview text slots, in page order.
type Slot int

const (
	SlotTitleEN Slot = iota + 1
	SlotDescriptionEN
	SlotTitleDE
	SlotDescriptionDE
)

func (s Slot) String() string {
	switch s {
	case SlotTitleEN:
		return "title_en"
	case SlotDescriptionEN:
		return "description_en"
	case SlotTitleDE:
		return "title_de"
	case SlotDescriptionDE:
		return "description_de"
	default:
		return "unknown"
	}
}

// Applied records which writes a patch actually performed.
type Applied struct {
	Thumbnail        bool
	ThumbnailCreated bool
	Slots            []Slot
	Prompt           bool
}

func (a Applied) Any() bool {
	return a.Thumbnail || len(a.Slots) > 0 || a.Prompt
}

// ApplyPatch writes every present field of p into the page. Absent fields and
// missing elements leave the page untouched.
func (d *Document) ApplyPatch(p models.Patch) Applied {
	var applied Applied

	if p.ThumbData != "" {
		applied.Thumbnail, applied.ThumbnailCreated = d.setThumbnail(p.ThumbData)
	}

	for _, w := range []struct {
		slot  Slot
		value string
	}{
		{SlotTitleEN, p.TitleEN},
		{SlotTitleDE, p.TitleDE},
		{SlotDescriptionEN, p.DescriptionEN},
		{SlotDescriptionDE, p.DescriptionDE},
	} {
		if w.value == "" {
			continue
		}
		if n := d.slotValue(w.slot); n != nil {
			setText(n, w.value)
			applied.Slots = append(applied.Slots, w.slot)
		}
	}

	if p.Prompt != "" {
		applied.Prompt = d.SetPrompt(p.Prompt)
	}

	return applied
}

// Thumbnail returns the source of the preview image, if any.
func (d *Document) Thumbnail() string {
	return attr(d.ByClass(PreviewThumbnail), "src")
}

// SlotText returns the text of a preview slot.
func (d *Document) SlotText(s Slot) string {
	n := d.slotValue(s)
	if n == nil {
		return ""
	}
	return textContent(n)
}

func (d *Document) setThumbnail(src string) (written, created bool) {
	if img := d.ByClass(PreviewThumbnail); img != nil {
		setAttr(img, "src", src)
		return true, false
	}
	container := d.ByClass(PreviewContainer)
	if container == nil {
		return false, false
	}
	img := &html.Node{
		Type:     html.ElementNode,
		Data:     "img",
		DataAtom: atom.Img,
		Attr: []html.Attribute{
			{Key: "src", Val: src},
			{Key: "class", Val: PreviewThumbnail},
			{Key: "alt", Val: "Preview"},
		},
	}
	removeChildren(container)
	container.AppendChild(img)
	return true, true
}

// slotValue finds the .value element of the preview field at nth-child
// position s.
func (d *Document) slotValue(s Slot) *html.Node {
	for _, field := range findAll(d.root, func(n *html.Node) bool {
		return hasClass(n, PreviewField)
	}) {
		if elementIndex(field) != int(s) {
			continue
		}
		if v := find(field, func(n *html.Node) bool { return hasClass(n, PreviewValue) }); v != nil {
			return v
		}
	}
	return nil
}
