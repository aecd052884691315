package camstream

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const overlayJPEGQuality = 80

// OverlayInfo is the diagnostic line set rendered onto outgoing frames
type OverlayInfo struct {
	AchievedRate float64
	Occupancy    float64
	TargetRate   int
}

func (o OverlayInfo) lines() []string {
	return []string{
		fmt.Sprintf("rate: %.1f fps", o.AchievedRate),
		fmt.Sprintf("buffer: %.0f%%", o.Occupancy*100),
		fmt.Sprintf("target: %d fps", o.TargetRate),
	}
}

// annotateFrame decodes a JPEG frame, draws the diagnostic overlay in the
// top-left corner and re-encodes it. Any failure returns the original bytes
// untouched: the overlay is best effort and must never block ingestion.
func annotateFrame(frame []byte, info OverlayInfo) []byte {
	src, err := jpeg.Decode(bytes.NewReader(frame))
	if err != nil {
		return frame
	}
	canvas := image.NewRGBA(src.Bounds())
	draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)

	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + 2
	for i, line := range info.lines() {
		drawShadowedText(canvas, face, line, 6, 6+lineHeight*(i+1))
	}

	out := bytes.Buffer{}
	if err := jpeg.Encode(&out, canvas, &jpeg.Options{Quality: overlayJPEGQuality}); err != nil {
		return frame
	}
	return out.Bytes()
}

// drawShadowedText draws white text with a one-pixel black offset so the
// overlay stays readable on bright frames
func drawShadowedText(dst draw.Image, face font.Face, text string, x, y int) {
	shadow := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x+1, y+1),
	}
	shadow.DrawString(text)
	drawer := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
