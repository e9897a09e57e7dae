package block

// Breadcrumb is one step in a SectionHeader's path from the document root
// (spec §3, §4.5): its level, title, and a stable hash of the title used
// as a content-addressable key by downstream graph rendering.
type Breadcrumb struct {
	Level int
	Title string
	Hash  string
}

// TextPayload backs Text, Line, Span, Footnote, PageHeader, PageFooter,
// Caption and any other block whose content is a plain text run
// (ListItem and Reference blocks carry their own payload types below).
type TextPayload struct {
	Content string
}

func (TextPayload) payload() {}

// Text returns the text run.
func (p *TextPayload) Text() string { return p.Content }

// SectionHeaderPayload backs SectionHeader blocks (spec §3).
type SectionHeaderPayload struct {
	Content    string
	Level      int
	Breadcrumb []Breadcrumb
	FontSize   float64
	Bold       bool
	Numbering  string // raw numbering prefix, e.g. "1.2.", "Appendix A"
}

func (SectionHeaderPayload) payload() {}

// Text returns the header title.
func (p *SectionHeaderPayload) Text() string { return p.Content }

// TableCellPayload backs TableCell blocks (spec §3).
type TableCellPayload struct {
	RowIndex int
	ColIndex int
	RowSpan  int
	ColSpan  int
	Content  string
}

func (TableCellPayload) payload() {}

// Text returns the cell's text.
func (p *TableCellPayload) Text() string { return p.Content }

// ExtractionMethodKind is the closed set of table recovery strategies
// (spec §3, §4.7).
type ExtractionMethodKind string

const (
	ExtractionLayoutModel ExtractionMethodKind = "layout_model"
	ExtractionHeuristicA  ExtractionMethodKind = "heuristic_a"
	ExtractionHeuristicB  ExtractionMethodKind = "heuristic_b"
	ExtractionLLMTable    ExtractionMethodKind = "llm"
)

// QualityBreakdown is the weighted component scores behind a Table's
// combined quality_score (spec §4.7.2).
type QualityBreakdown struct {
	Structure  float64
	Content    float64
	Alignment  float64
	Whitespace float64
}

// MergeInfo records that a Table was synthesized from adjacent originals
// (spec §4.7.5).
type MergeInfo struct {
	WasMerged       bool
	Reason          string
	OriginalTableIDs []string
}

// TablePayload backs Table blocks (spec §3).
type TablePayload struct {
	Rows             int
	Cols             int
	Cells            []TableCellPayload
	ExtractionMethod ExtractionMethodKind
	QualityScore     float64
	QualityBreakdown QualityBreakdown
	Merge            MergeInfo
	Degraded         bool
	RawText          string // fallback text when no candidate reached the minimum viable score
	ParameterRecord  map[string]any
}

func (TablePayload) payload() {}

// Text returns the table's RawText whether or not the table is degraded
// (renderers project actual cells from Cells).
func (p *TablePayload) Text() string { return p.RawText }

// CodePayload backs Code blocks (spec §3, §4.6).
type CodePayload struct {
	Content             string
	Language            *string
	LanguageConfidence  float64
}

func (CodePayload) payload() {}

// Text returns the code block's source text.
func (p *CodePayload) Text() string { return p.Content }

// EquationPayload backs Equation blocks (spec §4.8).
type EquationPayload struct {
	Content string // content inside the delimiters, e.g. without the surrounding \[ \]
}

func (EquationPayload) payload() {}

// Text returns the equation's raw content.
func (p *EquationPayload) Text() string { return p.Content }

// ListItemPayload backs ListItem blocks (spec §4.8).
type ListItemPayload struct {
	Content string
	Ordinal string // detected glyph/number, e.g. "1.", "-", "a)"
}

func (ListItemPayload) payload() {}

// Text returns the list item's text.
func (p *ListItemPayload) Text() string { return p.Content }

// ReferencePayload backs Reference blocks (spec §4.8).
type ReferencePayload struct {
	Content string
	Key     string // e.g. "12" from a "[12]" style token
}

func (ReferencePayload) payload() {}

// Text returns the reference's text.
func (p *ReferencePayload) Text() string { return p.Content }

// FigurePayload backs Figure/Picture blocks.
type FigurePayload struct {
	Caption   string
	ImageRef  string // opaque reference to rasterized image data, owned externally
}

func (FigurePayload) payload() {}

// Text returns the figure's caption.
func (p *FigurePayload) Text() string { return p.Caption }
