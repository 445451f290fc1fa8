package renderer

import (
	"cmp"
	"slices"

	"glscene/materials"
	"glscene/scene"
)

// RenderItem is one draw of one object with one material.
type RenderItem struct {
	ID          uint32
	Object      *scene.Node
	Geometry    *scene.Geometry
	Material    *materials.Material
	ProgramID   int
	Z           float32
	RenderOrder int
	// Group is the geometry range of a multi-material draw, nil otherwise.
	Group *scene.Group
}

// RenderList partitions a frame's items into opaque and transparent queues.
// Items are recycled between frames.
type RenderList struct {
	Opaque      []*RenderItem
	Transparent []*RenderItem

	// ProgramID reports the program a material currently uses, 0 if none.
	ProgramID func(m *materials.Material) int

	items  []*RenderItem
	cursor int
}

// Init starts a new frame.
func (l *RenderList) Init() {
	l.cursor = 0
	l.Opaque = l.Opaque[:0]
	l.Transparent = l.Transparent[:0]
}

// Push queues object for drawing; the partition follows Material.Transparent.
func (l *RenderList) Push(object *scene.Node, geometry *scene.Geometry, material *materials.Material, z float32, group *scene.Group) {
	var item *RenderItem
	if l.cursor < len(l.items) {
		item = l.items[l.cursor]
	} else {
		item = &RenderItem{}
		l.items = append(l.items, item)
	}
	l.cursor++

	programID := 0
	if l.ProgramID != nil {
		programID = l.ProgramID(material)
	}
	*item = RenderItem{
		ID:          object.ID,
		Object:      object,
		Geometry:    geometry,
		Material:    material,
		ProgramID:   programID,
		Z:           z,
		RenderOrder: object.RenderOrder,
		Group:       group,
	}

	if material.Transparent {
		l.Transparent = append(l.Transparent, item)
	} else {
		l.Opaque = append(l.Opaque, item)
	}
}

// Finish drops references held by recycled items past this frame's cursor.
func (l *RenderList) Finish() {
	for i := l.cursor; i < len(l.items); i++ {
		if l.items[i].Object == nil {
			break
		}
		*l.items[i] = RenderItem{}
	}
}

// Sort orders opaque items front to back grouped by program and material,
// and transparent items back to front.
func (l *RenderList) Sort() {
	slices.SortStableFunc(l.Opaque, painterSortStable)
	slices.SortStableFunc(l.Transparent, reversePainterSortStable)
}

func (l *RenderList) Len() int { return len(l.Opaque) + len(l.Transparent) }

func painterSortStable(a, b *RenderItem) int {
	return cmp.Or(
		cmp.Compare(a.RenderOrder, b.RenderOrder),
		cmp.Compare(a.ProgramID, b.ProgramID),
		cmp.Compare(a.Material.ID, b.Material.ID),
		cmp.Compare(a.Z, b.Z),
		cmp.Compare(a.ID, b.ID),
	)
}

func reversePainterSortStable(a, b *RenderItem) int {
	return cmp.Or(
		cmp.Compare(a.RenderOrder, b.RenderOrder),
		cmp.Compare(b.Z, a.Z),
		cmp.Compare(a.ID, b.ID),
	)
}
