package renderer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ill13/wfc-softrender/pkg/game/state"
)

type recordingRenderer struct {
	inits    int
	runs     int
	messages []string
}

func (r *recordingRenderer) Init() { r.inits++ }

func (r *recordingRenderer) Run(ctx context.Context, s *state.Session) error {
	r.runs++
	return nil
}

func (r *recordingRenderer) ShowMessage(msg string) { r.messages = append(r.messages, msg) }

func TestCurrentRenderer(t *testing.T) {
	prev := Current
	t.Cleanup(func() { SetRenderer(prev) })

	SetRenderer(nil)
	Init()
	ShowMessage("dropped")
	assert.NoError(t, Run(context.Background(), nil))

	r := &recordingRenderer{}
	SetRenderer(r)
	Init()
	ShowMessage("Map saved to map.html")
	assert.NoError(t, Run(context.Background(), nil))

	assert.Equal(t, 1, r.inits)
	assert.Equal(t, 1, r.runs)
	assert.Equal(t, []string{"Map saved to map.html"}, r.messages)
}
