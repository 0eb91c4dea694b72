package chart

// Tooltip placement relative to the pointer, and the opacity of the
// hovered element.
const (
	TooltipOffsetX = 15
	TooltipOffsetY = -45
	HoverOpacity   = 0.8
)

// Selection is the payload emitted when a segment or a row label is
// clicked. AgentIDs carries the clicked series entry id and CallTypeIDs the
// record id.
type Selection struct {
	AgentIDs    []ID `json:"agentIds"`
	CallTypeIDs []ID `json:"callTypeIds"`
}

// SegmentSelection returns the selection for a click on row's key segment.
// It reports false when the row has no entry for key.
func SegmentSelection(row Row, key string) (Selection, bool) {
	e, ok := row.Entry(key)
	if !ok {
		return Selection{}, false
	}
	return Selection{AgentIDs: []ID{e.ID}, CallTypeIDs: []ID{row.ID}}, true
}

// RowSelection returns the selection for a click on a row label.
func RowSelection(row Row) Selection {
	return Selection{AgentIDs: []ID{}, CallTypeIDs: []ID{row.ID}}
}

// Tooltip is the floating label shown on hover: a bold title line followed
// by "Label: Value".
type Tooltip struct {
	Title string `json:"title"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Text returns the tooltip as two plain text lines.
func (t Tooltip) Text() string {
	return t.Title + "\n" + t.Label + ": " + t.Value
}

// SegmentTooltip returns the tooltip for row's key segment.
func SegmentTooltip(row Row, key string) (Tooltip, bool) {
	e, ok := row.Entry(key)
	if !ok {
		return Tooltip{}, false
	}
	return Tooltip{Title: row.Name, Label: e.Name, Value: e.Value.String()}, true
}

// RowTooltip returns the tooltip for a row label.
func RowTooltip(row Row) Tooltip {
	return Tooltip{Title: row.Name, Label: "Total", Value: row.Value.String()}
}
