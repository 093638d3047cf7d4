package page

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/Ausmalbar/internal/models"
)

const confirmURL = "http://admin.test/admin/coloring_pages/coloringpage/confirm/"

func loadFixture(t *testing.T, name, rawURL string) *Document {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()
	doc, err := Parse(rawURL, f)
	require.NoError(t, err)
	return doc
}

func TestKindAndForm(t *testing.T) {
	confirm := loadFixture(t, "confirm.html", confirmURL)
	assert.Equal(t, ConfirmPage, confirm.Kind())

	gen := loadFixture(t, "generate.html", "http://admin.test/admin/coloring_pages/coloringpage/generate/")
	assert.Equal(t, GeneratePage, gen.Kind())

	other, err := ParseString("http://admin.test/", "<p>hi</p>")
	require.NoError(t, err)
	assert.Equal(t, OtherPage, other.Kind())
	_, err = other.Action()
	assert.ErrorIs(t, err, ErrNoForm)
}

func TestAction_EmptyPostsToSelf(t *testing.T) {
	doc := loadFixture(t, "confirm.html", confirmURL)
	action, err := doc.Action()
	require.NoError(t, err)
	assert.Equal(t, confirmURL, action)

	gen := loadFixture(t, "generate.html", "http://admin.test/somewhere/")
	action, err = gen.Action()
	require.NoError(t, err)
	assert.Equal(t, "http://admin.test/admin/coloring_pages/coloringpage/generate/", action)
}

func TestValues_FormDataRules(t *testing.T) {
	gen := loadFixture(t, "generate.html", "http://admin.test/g/")
	gen.SetPrompt("a dragon")

	values := gen.Values()
	assert.Equal(t, "tok-gen", values.Get("csrfmiddlewaretoken"))
	assert.Equal(t, "a dragon", values.Get("prompt"))
	assert.Equal(t, "", values.Get("system_prompt"), "first option of a single select")
	_, hasPublic := values["public"]
	assert.False(t, hasPublic, "unchecked checkbox is not sent")
}

func TestSnapshot_ReadsCurrentFields(t *testing.T) {
	doc := loadFixture(t, "confirm.html", confirmURL)

	require.True(t, doc.SetPrompt("  a dog  "))
	require.True(t, doc.SetSystemPrompt("1"))

	values := doc.Snapshot(models.Confirm)
	assert.Equal(t, "a dog", values.Get("prompt"))
	assert.Equal(t, "1", values.Get("system_prompt"))
	assert.Equal(t, "confirm", values.Get("action"))
	assert.Equal(t, "tok-123", doc.CSRFToken())
}

func TestSetSystemPrompt_UnknownOption(t *testing.T) {
	doc := loadFixture(t, "confirm.html", confirmURL)
	assert.False(t, doc.SetSystemPrompt("99"))
	assert.Equal(t, "2", doc.SystemPrompt())
}

func TestApplyPatch_CreatesThumbnailAndIsSparse(t *testing.T) {
	doc := loadFixture(t, "confirm.html", confirmURL)

	applied := doc.ApplyPatch(models.Patch{ThumbData: "X", TitleEN: "T"})

	assert.True(t, applied.Thumbnail)
	assert.True(t, applied.ThumbnailCreated)
	assert.Equal(t, []Slot{SlotTitleEN}, applied.Slots)
	assert.False(t, applied.Prompt)

	container := doc.ByClass(PreviewContainer)
	require.NotNil(t, container)
	var children []string
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c.Data)
	}
	assert.Equal(t, []string{"img"}, children)
	assert.Equal(t, "X", doc.Thumbnail())

	assert.Equal(t, "T", doc.SlotText(SlotTitleEN))
	assert.Equal(t, "Katze", doc.SlotText(SlotTitleDE))
	assert.Equal(t, "A cat.", doc.SlotText(SlotDescriptionEN))
	assert.Equal(t, "Eine Katze.", doc.SlotText(SlotDescriptionDE))
}

func TestApplyPatch_UpdatesExistingThumbnail(t *testing.T) {
	doc := loadFixture(t, "confirm.html", confirmURL)
	doc.ApplyPatch(models.Patch{ThumbData: "first"})

	applied := doc.ApplyPatch(models.Patch{ThumbData: "second", Prompt: "new prompt", DescriptionDE: "Neu"})

	assert.True(t, applied.Thumbnail)
	assert.False(t, applied.ThumbnailCreated)
	assert.True(t, applied.Prompt)
	assert.Equal(t, "second", doc.Thumbnail())
	assert.Equal(t, "new prompt", doc.Prompt())
	assert.Equal(t, "Neu", doc.SlotText(SlotDescriptionDE))
}

func TestApplyPatch_MissingTargetsAreSkipped(t *testing.T) {
	doc, err := ParseString("http://admin.test/", "<div>nothing here</div>")
	require.NoError(t, err)

	applied := doc.ApplyPatch(models.Patch{ThumbData: "X", TitleEN: "T", Prompt: "p"})
	assert.False(t, applied.Any())
}

func TestPreview(t *testing.T) {
	doc := loadFixture(t, "confirm.html", confirmURL)
	p := doc.Preview()

	assert.Equal(t, "confirm", p.Kind)
	assert.Equal(t, "Cat", p.TitleEN)
	assert.Equal(t, "Eine Katze.", p.DescriptionDE)
	assert.Equal(t, "a cat", p.Prompt)
	assert.Equal(t, "2", p.SystemPrompt)
	assert.Equal(t, []models.Option{{Value: "1", Label: "Simple"}, {Value: "2", Label: "Detailed"}}, p.SystemPrompts)
	assert.Equal(t, []string{"Image generated."}, p.Flashes)
}

func TestKindAllows(t *testing.T) {
	assert.True(t, GeneratePage.Allows(models.Submit))
	assert.False(t, GeneratePage.Allows(models.Regenerate))
	assert.True(t, ConfirmPage.Allows(models.Regenerate))
	assert.True(t, ConfirmPage.Allows(models.Confirm))
	assert.True(t, ConfirmPage.Allows(models.Reject))
	assert.False(t, ConfirmPage.Allows(models.Submit))
	assert.False(t, OtherPage.Allows(models.Confirm))
}
