package video

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

// DialogueSegment is a time-bounded span of narration text driving the
// subtitle layer. Times are seconds from composition start.
type DialogueSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// DealVideoSpec is the input to the composer.
type DealVideoSpec struct {
	Title            string            `json:"title"`
	MarketingTitle   string            `json:"marketingTitle,omitempty"`
	Price            float64           `json:"price"`
	OriginalPrice    float64           `json:"originalPrice,omitempty"`
	Discount         int               `json:"discount,omitempty"`
	ImageURL         string            `json:"imageUrl"`
	Category         string            `json:"category"`
	AffiliateURL     string            `json:"affiliateUrl,omitempty"`
	AudioFile        string            `json:"audioFile,omitempty"`
	DialogueSegments []DialogueSegment `json:"dialogueSegments,omitempty"`
}

// Config fixes the render geometry and timing of a composition.
type Config struct {
	FPS              int
	DurationInFrames int
	Width            int
	Height           int
}

// DefaultConfig matches the published vertical format: 15 seconds at 30fps.
func DefaultConfig() Config {
	return Config{FPS: 30, DurationInFrames: 450, Width: 1080, Height: 1920}
}

// Layer start offsets in seconds, matched to the narration pacing.
const (
	productImageDelaySec = 0.5
	titleDelaySec        = 1.5
	priceDelaySec        = 5
	ctaDelaySec          = 9

	subtitleRevealFactor = 1.2
)

// ValidateSegments checks dialogue segment ordering: each segment must have
// start < end and segments must not overlap.
func ValidateSegments(segments []DialogueSegment) error {
	for i, seg := range segments {
		if seg.Start >= seg.End {
			return fmt.Errorf("segment %d: start %.2f must be before end %.2f", i, seg.Start, seg.End)
		}
		if i > 0 && seg.Start < segments[i-1].End {
			return fmt.Errorf("segment %d overlaps previous segment", i)
		}
	}
	return nil
}

// NewDealComposition builds the immutable layer timeline for one deal
// video. When dialogue segments are present the title layer is replaced by
// the subtitle layer.
func NewDealComposition(spec DealVideoSpec, cfg Config) (*Composition, error) {
	if err := ValidateSegments(spec.DialogueSegments); err != nil {
		return nil, err
	}

	fps := float64(cfg.FPS)
	duration := cfg.DurationInFrames
	hasDialogue := len(spec.DialogueSegments) > 0

	displayTitle := spec.Title
	if spec.MarketingTitle != "" {
		displayTitle = spec.MarketingTitle
	}

	layers := []Layer{
		backgroundLayer(spec.Category, duration),
		productImageLayer(fps, duration),
	}
	if hasDialogue {
		layers = append(layers, subtitleLayer(spec.DialogueSegments, fps))
	} else {
		layers = append(layers, titleLayer(displayTitle, fps))
	}
	layers = append(layers, priceLayer(spec.Price, spec.OriginalPrice, fps))
	if spec.Discount > 0 {
		layers = append(layers, discountBadgeLayer(spec.Discount, fps))
	}
	layers = append(layers,
		ctaLayer(spec.AffiliateURL, fps),
		ctaURLLayer(spec.AffiliateURL, fps),
		watermarkLayer(),
	)

	return &Composition{
		FPS:              cfg.FPS,
		DurationInFrames: duration,
		Width:            cfg.Width,
		Height:           cfg.Height,
		AudioFile:        spec.AudioFile,
		Layers:           layers,
	}, nil
}

// backgroundLayer slowly rotates and scales a category gradient over the
// whole composition.
func backgroundLayer(category string, duration int) Layer {
	palette := PaletteFor(category)
	frames := []float64{0, float64(duration)}
	return Layer{
		Name:       "background",
		StartFrame: 0,
		Render: func(frame int) LayerState {
			f := float64(frame)
			return LayerState{
				Visible: true,
				Transform: Transform{
					Scale:   Interpolate(f, frames, []float64{1.0, 1.15}, true),
					Opacity: 0.85,
				},
				Gradient:      palette,
				GradientAngle: Interpolate(f, frames, []float64{135, 165}, true),
				Color:         brandDark,
			}
		},
	}
}

// productImageLayer bounces the product in with a soft spring, then keeps a
// barely perceptible zoom going for the rest of the video.
func productImageLayer(fps float64, duration int) Layer {
	start := int(math.Round(fps * productImageDelaySec))
	entranceSpring := SpringConfig{Damping: 12, Stiffness: 80, Mass: 1}
	return Layer{
		Name:       "product-image",
		StartFrame: start,
		Render: func(frame int) LayerState {
			entrance := Spring(frame, fps, entranceSpring)
			zoom := Interpolate(float64(frame), []float64{0, float64(duration)}, []float64{1.0, 1.06}, true)
			return LayerState{
				Visible: true,
				Transform: Transform{
					Scale:   Interpolate(entrance, []float64{0, 1}, []float64{0.7, 1}, false) * zoom,
					Opacity: Interpolate(entrance, []float64{0, 0.4}, []float64{0, 1}, true),
				},
			}
		},
	}
}

// titleLayer reveals the headline with a slide-up spring.
func titleLayer(text string, fps float64) Layer {
	start := int(math.Round(fps * titleDelaySec))
	display := text
	if r := []rune(display); len(r) > 60 {
		display = string(r[:57]) + "..."
	}
	titleSpring := SpringConfig{Damping: 14, Stiffness: 100, Mass: 1}
	return Layer{
		Name:       "title",
		StartFrame: start,
		Render: func(frame int) LayerState {
			progress := Spring(frame, fps, titleSpring)
			return LayerState{
				Visible: true,
				Transform: Transform{
					TranslateY: Interpolate(progress, []float64{0, 1}, []float64{50, 0}, false),
					Scale:      1,
					Opacity:    Interpolate(progress, []float64{0, 0.5}, []float64{0, 1}, true),
				},
				Text:  display,
				Color: brandWhite,
			}
		},
	}
}

// subtitleLayer picks the active dialogue segment by current time and
// reveals it word by word. A frame outside every segment renders nothing,
// which is a valid silent gap rather than an error.
func subtitleLayer(segments []DialogueSegment, fps float64) Layer {
	entrySpring := SpringConfig{Damping: 12, Stiffness: 200, Mass: 0.5}
	return Layer{
		Name:       "subtitles",
		StartFrame: 0,
		Render: func(frame int) LayerState {
			currentTime := float64(frame) / fps
			seg, ok := activeSegment(segments, currentTime)
			if !ok {
				return LayerState{}
			}

			segmentProgress := (currentTime - seg.Start) / (seg.End - seg.Start)

			entry := Spring(frame-int(math.Round(seg.Start*fps)), fps, entrySpring)
			fadeOut := 1.0
			if segmentProgress > 0.8 {
				fadeOut = Interpolate(segmentProgress, []float64{0.8, 1}, []float64{1, 0}, false)
			}

			words := strings.Fields(seg.Text)
			revealed := int(math.Floor(segmentProgress * float64(len(words)) * subtitleRevealFactor))
			if revealed > len(words) {
				revealed = len(words)
			}

			return LayerState{
				Visible: true,
				Transform: Transform{
					TranslateY: Interpolate(entry, []float64{0, 1}, []float64{30, 0}, false),
					Scale:      Interpolate(entry, []float64{0, 1}, []float64{0.8, 1}, false),
					Opacity:    entry * fadeOut,
				},
				Text:          seg.Text,
				RevealedWords: revealed,
				TotalWords:    len(words),
				Color:         brandWhite,
			}
		},
	}
}

func activeSegment(segments []DialogueSegment, currentTime float64) (DialogueSegment, bool) {
	for _, seg := range segments {
		if currentTime >= seg.Start && currentTime < seg.End {
			return seg, true
		}
	}
	return DialogueSegment{}, false
}

// priceLayer slides the price up. The strikethrough original price only
// shows when it actually exceeds the current price.
func priceLayer(price, originalPrice float64, fps float64) Layer {
	start := int(math.Round(fps * priceDelaySec))
	priceSpring := SpringConfig{Damping: 12, Stiffness: 100, Mass: 1}

	text := formatPrice(price)
	if originalPrice > price {
		text = formatPrice(originalPrice) + " → " + text
	}

	return Layer{
		Name:       "price",
		StartFrame: start,
		Render: func(frame int) LayerState {
			progress := Spring(frame, fps, priceSpring)
			return LayerState{
				Visible: true,
				Transform: Transform{
					TranslateY: Interpolate(progress, []float64{0, 1}, []float64{40, 0}, false),
					Scale:      1,
					Opacity:    Interpolate(progress, []float64{0, 0.4}, []float64{0, 1}, true),
				},
				Text:  text,
				Color: brandYellow,
			}
		},
	}
}

// discountBadgeLayer pops the percent-off badge in 20 frames after the
// price. Only built when the discount is positive.
func discountBadgeLayer(discount int, fps float64) Layer {
	start := int(math.Round(fps*priceDelaySec)) + 20
	badgeSpring := SpringConfig{Damping: 8, Stiffness: 150, Mass: 1}
	return Layer{
		Name:       "discount-badge",
		StartFrame: start,
		Render: func(frame int) LayerState {
			pop := Spring(frame, fps, badgeSpring)
			return LayerState{
				Visible: true,
				Transform: Transform{
					Scale:   Interpolate(pop, []float64{0, 1}, []float64{0.2, 1}, false),
					Opacity: Interpolate(pop, []float64{0, 0.3}, []float64{0, 1}, true),
				},
				Text:  fmt.Sprintf("-%d%%", discount),
				Color: brandYellow,
			}
		},
	}
}

// ctaLayer pulses the call-to-action button with a heartbeat scale and a
// breathing glow.
func ctaLayer(affiliateURL string, fps float64) Layer {
	start := int(math.Round(fps * ctaDelaySec))
	entranceSpring := SpringConfig{Damping: 12, Stiffness: 100, Mass: 1}

	text := "Link en bio!"
	if affiliateURL != "" {
		text = "Busca en Amazon"
	}

	return Layer{
		Name:       "cta",
		StartFrame: start,
		Render: func(frame int) LayerState {
			entrance := Spring(frame, fps, entranceSpring)
			pulse := Oscillate(frame, 0.12, 0.85, 1.0)
			return LayerState{
				Visible: true,
				Transform: Transform{
					TranslateY: Interpolate(entrance, []float64{0, 1}, []float64{30, 0}, false),
					Scale:      pulse,
					Opacity:    Interpolate(entrance, []float64{0, 0.5}, []float64{0, 1}, true),
				},
				Text:       text,
				GlowRadius: Oscillate(frame, 0.12, 10, 25),
				Color:      brandDark,
			}
		},
	}
}

// ctaURLLayer fades the shortened affiliate link in below the button, 15
// frames behind it.
func ctaURLLayer(affiliateURL string, fps float64) Layer {
	start := int(math.Round(fps*ctaDelaySec)) + 15
	urlSpring := SpringConfig{Damping: 14, Stiffness: 80, Mass: 1}
	text := ""
	if affiliateURL != "" {
		text = shortenURL(affiliateURL)
	}
	return Layer{
		Name:       "cta-url",
		StartFrame: start,
		Render: func(frame int) LayerState {
			if text == "" {
				return LayerState{}
			}
			progress := Spring(frame, fps, urlSpring)
			return LayerState{
				Visible: true,
				Transform: Transform{
					Scale:   1,
					Opacity: Interpolate(progress, []float64{0, 0.6}, []float64{0, 0.9}, true),
				},
				Text:  text,
				Color: brandWhite,
			}
		},
	}
}

// watermarkLayer is static for the whole composition.
func watermarkLayer() Layer {
	return Layer{
		Name:       "watermark",
		StartFrame: 0,
		Render: func(int) LayerState {
			return LayerState{
				Visible:   true,
				Transform: Transform{Scale: 1, Opacity: 0.35},
				Text:      "@camperoutlet",
				Color:     brandWhite,
			}
		},
	}
}

func formatPrice(p float64) string {
	return strings.Replace(fmt.Sprintf("%.2f EUR", p), ".", ",", 1)
}

// shortenURL reduces an affiliate link to a readable domain+path form.
func shortenURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		if r := []rune(raw); len(r) > 35 {
			return string(r[:35])
		}
		return raw
	}
	short := strings.TrimPrefix(u.Hostname(), "www.") + u.Path
	if len(short) > 35 {
		return short[:35] + "..."
	}
	return short
}
