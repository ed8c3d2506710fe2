package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

var (
	overlayColor = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 160}
	panelColor   = color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 235}
	buttonColor  = color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 255}
	pressedColor = color.NRGBA{R: 0x66, G: 0x66, B: 0x66, A: 255}
	inputColor   = color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 255}
	textColor    = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// editorUI holds the modal overlays drawn over the map. At most one is
// visible at a time.
type editorUI struct {
	ui   *ebitenui.UI
	face ebtext.Face

	picker  *tilePicker
	confirm *confirmDialog
	text    *textDialog
}

func newEditorUI(p *tilePicker) *editorUI {
	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	u := &editorUI{face: face, picker: p}

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	u.confirm = newConfirmDialog(&u.face)
	u.text = newTextDialog(&u.face)
	p.build(&u.face)

	root.AddChild(p.Overlay)
	root.AddChild(u.confirm.Overlay)
	root.AddChild(u.text.Overlay)
	u.ui = &ebitenui.UI{Container: root}
	return u
}

// Modal reports whether an overlay is taking input.
func (u *editorUI) Modal() bool {
	return visible(u.picker.Overlay) || visible(u.confirm.Overlay) || visible(u.text.Overlay)
}

func (u *editorUI) Update() { u.ui.Update() }

func (u *editorUI) Draw(screen *ebiten.Image) { u.ui.Draw(screen) }

func visible(c *widget.Container) bool {
	return c.GetWidget().Visibility == widget.Visibility_Show
}

func show(c *widget.Container) { c.GetWidget().Visibility = widget.Visibility_Show }

func hide(c *widget.Container) { c.GetWidget().Visibility = widget.Visibility_Hide }

// newOverlay returns a hidden full-screen dimmer holding panel in its centre.
func newOverlay(panel *widget.Container) *widget.Container {
	overlay := widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
				StretchHorizontal:  true,
				StretchVertical:    true,
			}),
			widget.WidgetOpts.MinSize(1, 1),
		),
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(overlayColor)),
	)
	overlay.AddChild(panel)
	hide(overlay)
	return overlay
}

func newPanel(minW, minH int) *widget.Container {
	return widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(panelColor)),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(minW, minH),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
}

func newRow() *widget.Container {
	return widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(8),
		)),
		widget.ContainerOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)
}

func newLabel(s string, face *ebtext.Face) *widget.Text {
	return widget.NewText(
		widget.TextOpts.Text(s, face, textColor),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)
}

func newButton(label string, face *ebtext.Face, onClick func()) *widget.Button {
	return widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{
			Idle:    imageui.NewNineSliceColor(buttonColor),
			Hover:   imageui.NewNineSliceColor(pressedColor),
			Pressed: imageui.NewNineSliceColor(pressedColor),
		}),
		widget.ButtonOpts.Text(label, face, &widget.ButtonTextColor{Idle: textColor}),
		widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(80, 24)),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			onClick()
		}),
	)
}

// confirmDialog asks a yes or no question.
type confirmDialog struct {
	Overlay *widget.Container

	message *widget.Text
	onYes   func()
	onNo    func()
}

func newConfirmDialog(face *ebtext.Face) *confirmDialog {
	d := &confirmDialog{}
	panel := newPanel(320, 120)
	d.message = newLabel("", face)

	buttons := newRow()
	buttons.AddChild(newButton("Yes", face, func() { d.answer(true) }))
	buttons.AddChild(newButton("No", face, func() { d.answer(false) }))

	panel.AddChild(d.message)
	panel.AddChild(buttons)
	d.Overlay = newOverlay(panel)
	return d
}

func (d *confirmDialog) Open(message string, onYes, onNo func()) {
	d.message.Label = message
	d.onYes, d.onNo = onYes, onNo
	show(d.Overlay)
}

func (d *confirmDialog) answer(yes bool) {
	hide(d.Overlay)
	fn := d.onNo
	if yes {
		fn = d.onYes
	}
	d.onYes, d.onNo = nil, nil
	if fn != nil {
		fn()
	}
}

// textDialog asks for one line of text, such as a map name or a file path.
type textDialog struct {
	Overlay *widget.Container

	title  *widget.Text
	input  *widget.TextInput
	onDone func(text string, ok bool)
}

func newTextDialog(face *ebtext.Face) *textDialog {
	d := &textDialog{}
	panel := newPanel(320, 140)

	d.input = widget.NewTextInput(
		widget.TextInputOpts.WidgetOpts(widget.WidgetOpts.MinSize(260, 28)),
		widget.TextInputOpts.Image(&widget.TextInputImage{
			Idle:     imageui.NewNineSliceColor(inputColor),
			Disabled: imageui.NewNineSliceColor(inputColor),
		}),
		widget.TextInputOpts.Color(&widget.TextInputColor{
			Idle:     color.Black,
			Disabled: color.Gray{Y: 120},
			Caret:    color.Black,
		}),
		widget.TextInputOpts.Face(face),
		widget.TextInputOpts.SubmitOnEnter(true),
		widget.TextInputOpts.SubmitHandler(func(args *widget.TextInputChangedEventArgs) {
			d.finish(args.InputText, true)
		}),
	)

	buttons := newRow()
	buttons.AddChild(newButton("OK", face, func() { d.finish(d.input.GetText(), true) }))
	buttons.AddChild(newButton("Cancel", face, func() { d.finish("", false) }))

	d.title = newLabel("", face)
	panel.AddChild(d.title)
	panel.AddChild(d.input)
	panel.AddChild(buttons)
	d.Overlay = newOverlay(panel)
	return d
}

func (d *textDialog) Open(title, current string, onDone func(text string, ok bool)) {
	d.title.Label = title
	d.onDone = onDone
	d.input.SetText(current)
	d.input.Focus(true)
	show(d.Overlay)
}

func (d *textDialog) finish(text string, ok bool) {
	if !visible(d.Overlay) {
		return
	}
	hide(d.Overlay)
	d.input.Focus(false)
	fn := d.onDone
	d.onDone = nil
	if fn != nil {
		fn(text, ok)
	}
}
