package video

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Transform is the instantaneous spatial state of a layer.
type Transform struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Scale      float64 `json:"scale"`
	Opacity    float64 `json:"opacity"`
}

// LayerState is everything a renderer needs to draw one layer at one frame.
// Fields beyond Transform are only meaningful for the layer kinds that set
// them.
type LayerState struct {
	Visible   bool      `json:"visible"`
	Transform Transform `json:"transform"`

	Text          string `json:"text,omitempty"`
	RevealedWords int    `json:"revealedWords,omitempty"`
	TotalWords    int    `json:"totalWords,omitempty"`

	Gradient      Palette `json:"gradient,omitempty"`
	GradientAngle float64 `json:"gradientAngle,omitempty"`

	GlowRadius float64 `json:"glowRadius,omitempty"`
	Color      string  `json:"color,omitempty"`
}

// Layer is one independently animated visual element. Render receives the
// frame offset relative to StartFrame and must be pure.
type Layer struct {
	Name       string
	StartFrame int
	Render     func(localFrame int) LayerState
}

// Composition is the full ordered layer set for one video. Later layers
// draw on top. Compositions are immutable once built.
type Composition struct {
	FPS              int
	DurationInFrames int
	Width            int
	Height           int
	AudioFile        string
	Layers           []Layer
}

// FrameAt evaluates every layer at the given frame. Layers whose start
// frame has not been reached report Visible=false. States are returned in
// z-order.
func (c *Composition) FrameAt(frame int) []LayerState {
	states := make([]LayerState, len(c.Layers))
	for i, layer := range c.Layers {
		if frame < layer.StartFrame {
			continue
		}
		states[i] = layer.Render(frame - layer.StartFrame)
	}
	return states
}

// EvalFrames evaluates the frame range [from, to) concurrently, returning
// states indexed by frame offset. Safe because every layer render is pure.
func (c *Composition) EvalFrames(from, to, workers int) ([][]LayerState, error) {
	if from < 0 || to > c.DurationInFrames || from >= to {
		return nil, fmt.Errorf("invalid frame range [%d, %d) for %d-frame composition", from, to, c.DurationInFrames)
	}
	if workers <= 0 {
		workers = 4
	}

	out := make([][]LayerState, to-from)
	var g errgroup.Group
	g.SetLimit(workers)
	for frame := from; frame < to; frame++ {
		g.Go(func() error {
			out[frame-from] = c.FrameAt(frame)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
