package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rorical/Ausmalbar/internal/models"
)

func TestLineSink_Render(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLineSink(&buf)
	sink.SetNoColor(true)

	sink.Render(models.ProgressState{Percent: 15, Message: "Generating", Phase: models.PhaseInfo, Visible: true})
	sink.Render(models.ProgressState{Percent: 100, Message: "Done", Phase: models.PhaseInfo, Visible: true})
	sink.Render(models.ProgressState{Percent: 15, Message: "quota exceeded", Phase: models.PhaseError, Visible: true})
	sink.Render(models.ProgressState{Phase: models.PhaseHidden})

	assert.Equal(t, "[ 15%] Generating\n✓ [100%] Done\n✗ quota exceeded\n", buf.String())
}
