package main

import (
	"fmt"
	"image"
	"log"

	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/milk9111/tilemap/catalog"
	"github.com/milk9111/tilemap/render"
	"github.com/milk9111/tilemap/tilecache"
)

const (
	pickerColumns = 6
	pickerRows    = 4
	pickerPreview = 64
)

// tilePicker shows the catalog a page at a time. Random markers are drawn as
// the first tile of their group with a "?" badge. Previews are cached by
// catalog index since random markers of equal-sized groups share an id.
type tilePicker struct {
	Overlay *widget.Container

	cat      *catalog.Catalog
	page     int
	previews map[int]*ebiten.Image
	onPick   func(index int)
	onFile   func()

	face  *ebtext.Face
	grid  *widget.Container
	title *widget.Text
}

func newTilePicker(cat *catalog.Catalog) *tilePicker {
	return &tilePicker{cat: cat, previews: make(map[int]*ebiten.Image)}
}

func (p *tilePicker) build(face *ebtext.Face) {
	p.face = face
	panel := newPanel(pickerColumns*(pickerPreview+4), pickerRows*(pickerPreview+4))
	p.title = newLabel("", face)
	p.grid = widget.NewContainer(
		widget.ContainerOpts.Layout(
			widget.NewGridLayout(
				widget.GridLayoutOpts.Columns(pickerColumns),
				widget.GridLayoutOpts.Spacing(4, 4),
			),
		),
		widget.ContainerOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)

	nav := newRow()
	nav.AddChild(newButton("<", face, func() { p.turn(-1) }))
	nav.AddChild(newButton("Cancel", face, func() { p.finish(-1) }))
	nav.AddChild(newButton("File...", face, p.chooseFile))
	nav.AddChild(newButton(">", face, func() { p.turn(1) }))

	panel.AddChild(p.title)
	panel.AddChild(p.grid)
	panel.AddChild(nav)
	p.Overlay = newOverlay(panel)
}

// SetCatalog swaps the catalog and drops cached previews.
func (p *tilePicker) SetCatalog(cat *catalog.Catalog) {
	p.cat = cat
	for _, img := range p.previews {
		img.Deallocate()
	}
	clear(p.previews)
	p.page = 0
	if visible(p.Overlay) {
		p.fill()
	}
}

// Open shows the picker. onPick gets the chosen catalog index or -1 on
// cancel; onFile is called instead when the user asks for an image file.
func (p *tilePicker) Open(onPick func(index int), onFile func()) {
	p.onPick = onPick
	p.onFile = onFile
	p.fill()
	show(p.Overlay)
}

func (p *tilePicker) finish(index int) {
	hide(p.Overlay)
	fn := p.onPick
	p.onPick, p.onFile = nil, nil
	if fn != nil {
		fn(index)
	}
}

func (p *tilePicker) chooseFile() {
	if p.onFile == nil {
		p.finish(-1)
		return
	}
	hide(p.Overlay)
	fn := p.onFile
	p.onPick, p.onFile = nil, nil
	fn()
}

func (p *tilePicker) turn(delta int) {
	pages := pageCount(p.cat.Len(), pickerColumns*pickerRows)
	p.page = (p.page + delta + pages) % pages
	p.fill()
}

func (p *tilePicker) fill() {
	per := pickerColumns * pickerRows
	pages := pageCount(p.cat.Len(), per)
	if p.page >= pages {
		p.page = 0
	}
	p.title.Label = fmt.Sprintf("Pick a tile (%d/%d)", p.page+1, pages)
	p.grid.RemoveChildren()

	items := p.cat.Items()
	start := p.page * per
	for i := start; i < len(items) && i < start+per; i++ {
		img := p.preview(i, items[i])
		if img == nil {
			continue
		}
		idx := i
		p.grid.AddChild(widget.NewGraphic(
			widget.GraphicOpts.Image(img),
			widget.GraphicOpts.WidgetOpts(
				widget.WidgetOpts.MinSize(pickerPreview, pickerPreview),
				widget.WidgetOpts.MouseButtonClickedHandler(func(args *widget.WidgetMouseButtonClickedEventArgs) {
					p.finish(idx)
				}),
			),
		))
	}
}

func (p *tilePicker) preview(i int, it catalog.Item) *ebiten.Image {
	if img, ok := p.previews[i]; ok {
		return img
	}
	src, err := previewImage(p.cat, i, pickerPreview)
	if err != nil {
		log.Printf("picker: preview %s: %v", it.ID, err)
		return nil
	}
	img := ebiten.NewImageFromImage(src)
	p.previews[i] = img
	return img
}

// previewImage renders catalog entry i at size x size.
func previewImage(cat *catalog.Catalog, i, size int) (image.Image, error) {
	it, err := cat.Item(i)
	if err != nil {
		return nil, err
	}
	if !it.Random() {
		data, err := cat.Open(it.ID)
		if err != nil {
			return nil, err
		}
		return tilecache.Decode(data, size)
	}

	siblings, err := cat.Siblings(i)
	if err != nil {
		return nil, err
	}
	var base image.Image
	for _, s := range siblings {
		data, err := cat.Open(s.ID)
		if err != nil {
			continue
		}
		if img, err := tilecache.Decode(data, size); err == nil {
			base = img
			break
		}
	}
	return render.RandomBadge(base, size), nil
}

func pageCount(n, per int) int {
	if n <= 0 {
		return 1
	}
	return (n + per - 1) / per
}
