package caster

import (
	"bytes"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/common/logger"
)

const (
	canvasWidth  = 1920
	canvasHeight = 1080
	titleScale   = 3
	titleMargin  = 24
	jpegQuality  = 90
)

var canvasSize = apitype.SizeOf(canvasWidth, canvasHeight)

// Renderer draws a photo onto a full HD canvas for casting.
type Renderer struct {
	loader         api.PhotoLoader
	showBackground bool
	showTitles     bool
}

func NewRenderer(loader api.PhotoLoader, showBackground bool, showTitles bool) *Renderer {
	return &Renderer{
		loader:         loader,
		showBackground: showBackground,
		showTitles:     showTitles,
	}
}

func (s *Renderer) Render(photo *apitype.Photo) (image.Image, error) {
	img, err := s.loader.LoadScaled(photo, canvasSize)
	if err != nil {
		return nil, err
	}
	canvas := resizedAndBlurImage(img, s.showBackground)
	if s.showTitles {
		drawTitle(canvas, photo)
	}
	return canvas, nil
}

func (s *Renderer) RenderJpeg(photo *apitype.Photo) ([]byte, error) {
	img, err := s.Render(photo)
	if err != nil {
		return nil, err
	}
	buffer := new(bytes.Buffer)
	if err := jpeg.Encode(buffer, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func resizedAndBlurImage(srcImage image.Image, blurBackground bool) *image.RGBA {
	logger.Debug.Print("Resizing to fit canvas...")
	canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	size := apitype.PointOfScaledToFit(srcImage.Bounds().Size(), canvasSize)
	if size.IsZero() {
		return canvas
	}

	if blurBackground {
		logger.Debug.Print("Blurring background...")
		// Grayscale and blurred so that the background doesn't distract
		background := imaging.Fill(srcImage, canvasWidth, canvasHeight, imaging.Center, imaging.Linear)
		background = imaging.Blur(background, 10)
		background = imaging.Grayscale(background)
		draw.Draw(canvas, canvas.Bounds(), background, image.Point{}, draw.Src)
	}

	resized := imaging.Resize(srcImage, size.Width(), size.Height(), imaging.Linear)
	offset := image.Pt((canvasWidth-size.Width())/2, (canvasHeight-size.Height())/2)
	draw.Draw(canvas, resized.Bounds().Add(offset), resized, image.Point{}, draw.Src)
	return canvas
}

// drawTitle writes the title, and the subtitle when there is one, on a
// dark band at the bottom of the canvas.
func drawTitle(canvas *image.RGBA, photo *apitype.Photo) {
	text := photo.Title()
	if photo.Subtitle() != "" {
		text += "  " + photo.Subtitle()
	}
	if text == "" {
		return
	}

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	textHeight := face.Metrics().Height.Ceil()
	label := image.NewRGBA(image.Rect(0, 0, textWidth, textHeight))
	drawer := &font.Drawer{
		Dst:  label,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(text)

	scaled := imaging.Resize(label, textWidth*titleScale, textHeight*titleScale, imaging.NearestNeighbor)
	bandHeight := scaled.Bounds().Dy() + 2*titleMargin
	band := image.Rect(0, canvasHeight-bandHeight, canvasWidth, canvasHeight)
	draw.Draw(canvas, band, &image.Uniform{C: color.RGBA{A: 160}}, image.Point{}, draw.Over)

	origin := image.Pt(titleMargin, canvasHeight-bandHeight+titleMargin)
	draw.Draw(canvas, scaled.Bounds().Add(origin), scaled, image.Point{}, draw.Over)
}
