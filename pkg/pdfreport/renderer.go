// Package pdfreport lays out a BAPP report as an A4 PDF.
//
// The layout is fixed: title block, five numbered sections and two signature
// blocks, positioned with an explicit cursor. Rendering depends only on its
// inputs and Options, so equal inputs give equal output.
package pdfreport

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"bapp/pkg/bapp"

	"github.com/goodsign/monday"
	"github.com/jung-kurt/gofpdf"
)

const (
	margin = 50.0

	titleSize   = 16.0
	bodySize    = 10.0
	tableSize   = 9.0
	lineSpacing = 1.2

	sigImageWidth  = 80.0
	sigImageHeight = 55.0
	sigImageOffset = 20.0 // below the caption
	sigNameOffset  = 80.0 // below the caption
	sigBlockHeight = 100.0

	reportTitle         = "BERITA ACARA PEMERIKSAAN PEKERJAAN (BAPP)"
	notesPlaceholder    = "Tidak ada catatan tambahan."
	approverPlaceholder = "Direksi Pekerjaan (Belum Ditunjuk)"
)

var (
	tableHeaders = []string{"Item Pekerjaan", "Deskripsi", "Progress Rencana (%)", "Progress Aktual (%)", "Unit", "Kualitas"}
	tableAligns  = []string{"L", "L", "C", "C", "C", "C"}
	tableRatios  = []float64{0.22, 0.30, 0.14, 0.14, 0.08, 0.12}
)

// Options control everything about a render that is not in the report.
type Options struct {
	// Locale for month names in dates.
	Locale monday.Locale
	// CreationDate is written into the PDF metadata. Zero means render time.
	CreationDate time.Time
	Compress     bool
	// FontRegular and FontBold are TrueType files embedded for full Unicode
	// text. Without FontRegular the core Helvetica font is used, which only
	// covers cp1252; other characters print as ".". FontBold defaults to
	// FontRegular.
	FontRegular string
	FontBold    string
}

// DefaultOptions renders Indonesian dates with compressed streams.
func DefaultOptions() Options {
	return Options{Locale: monday.LocaleIdID, Compress: true}
}

// Renderer turns a report aggregate into PDF bytes.
type Renderer struct {
	opts Options
}

func New(opts Options) *Renderer {
	if opts.Locale == "" {
		opts.Locale = monday.LocaleIdID
	}
	return &Renderer{opts: opts}
}

// layout is the state of a single render.
type layout struct {
	pdf    *gofpdf.Fpdf
	family string
	utf8   bool
	tr     func(string) string
	cur    *cursor
	opts   Options
}

// Render writes the PDF for r to w. Image decode failures and write errors
// return an error matching bapp.ErrRender; whatever was written to w by then
// must be discarded.
func (rd *Renderer) Render(r *bapp.Report, sigs bapp.Signatures, w io.Writer) error {
	if r == nil {
		return bapp.NewError(bapp.ErrRender, "no report to render", nil)
	}
	l, err := rd.newLayout()
	if err != nil {
		return bapp.NewError(bapp.ErrRender, "error loading PDF font", err)
	}

	l.title(r)
	l.workInfo(r)
	l.vendorDetail(r)
	l.inspectionTable(r.WorkItems)
	l.notes(r.Notes)
	if err := l.approval(r, sigs); err != nil {
		return err
	}

	if err := l.pdf.Error(); err != nil {
		return bapp.NewError(bapp.ErrRender, "error laying out PDF", err)
	}
	if err := l.pdf.Output(w); err != nil {
		return bapp.NewError(bapp.ErrRender, "error writing PDF", err)
	}
	return nil
}

func (rd *Renderer) newLayout() (*layout, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		SizeStr:        "A4",
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetCompression(rd.opts.Compress)
	pdf.SetCatalogSort(true)
	created := rd.opts.CreationDate
	if created.IsZero() {
		created = time.Now()
	}
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCreator("bapp", false)
	pdf.SetTitle(reportTitle, false)

	l := &layout{
		pdf:    pdf,
		family: "Helvetica",
		opts:   rd.opts,
	}
	if rd.opts.FontRegular != "" {
		bold := rd.opts.FontBold
		if bold == "" {
			bold = rd.opts.FontRegular
		}
		l.family, l.utf8, l.tr = "body", true, basicPlane
		pdf.AddUTF8Font(l.family, "", rd.opts.FontRegular)
		pdf.AddUTF8Font(l.family, "B", bold)
		if err := pdf.Error(); err != nil {
			return nil, err
		}
	} else {
		l.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AddPage()

	w, h := pdf.GetPageSize()
	l.cur = newCursor(w, h, margin, tableRatios)
	return l, nil
}

// basicPlane replaces runes beyond U+FFFF, which the embedded font width
// table cannot index.
func basicPlane(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return '?'
		}
		return r
	}, s)
}

func lineHeight(size float64) float64 { return size * lineSpacing }

// ensure starts a new page when h more points do not fit.
func (l *layout) ensure(h float64) bool {
	if l.cur.fits(h) {
		return false
	}
	l.pdf.AddPage()
	l.cur.newPage()
	return true
}

// text writes a paragraph across the content width, wrapping as needed.
func (l *layout) text(s, style string, size float64, align string) {
	l.pdf.SetFont(l.family, style, size)
	lh := lineHeight(size)
	for _, line := range l.split(s, l.cur.width) {
		l.ensure(lh)
		l.pdf.SetXY(l.cur.left, l.cur.y)
		l.pdf.CellFormat(l.cur.width, lh, line, "", 0, align, false, 0, "")
		l.cur.down(lh)
	}
}

// split wraps s for width w using the current font. It always returns at
// least one line.
func (l *layout) split(s string, w float64) []string {
	if l.utf8 {
		lines := l.pdf.SplitText(l.tr(s), w)
		if len(lines) == 0 {
			return []string{""}
		}
		return lines
	}
	raw := l.pdf.SplitLines([]byte(l.tr(s)), w)
	if len(raw) == 0 {
		return []string{""}
	}
	out := make([]string, len(raw))
	for i, b := range raw {
		out[i] = string(b)
	}
	return out
}

// moveDown advances by n lines of the given font size.
func (l *layout) moveDown(n, size float64) {
	l.cur.down(n * lineHeight(size))
}

func (l *layout) heading(s string) {
	l.text(s, "BU", bodySize, "L")
	l.moveDown(0.5, bodySize)
}

func (l *layout) title(r *bapp.Report) {
	l.text(reportTitle, "B", titleSize, "C")
	l.moveDown(0.5, titleSize)
	l.text("Nomor BAPP: "+r.BAPPNumber, "", bodySize, "C")
	l.moveDown(1.5, bodySize)
}

func (l *layout) workInfo(r *bapp.Report) {
	l.heading("I. INFORMASI PEKERJAAN")
	l.text("Nomor Kontrak/SPK: "+r.ContractNumber, "", bodySize, "L")
	l.text("Nama Proyek: "+r.ProjectName, "", bodySize, "L")
	l.text("Lokasi Proyek: "+r.ProjectLocation, "", bodySize, "L")
	l.text(fmt.Sprintf("Periode Pekerjaan: %s s/d %s",
		formatDate(r.StartDate, l.opts.Locale), formatDate(r.EndDate, l.opts.Locale)), "", bodySize, "L")
	l.text("Tanggal Penyelesaian: "+formatDate(r.CompletionDate, l.opts.Locale), "", bodySize, "L")
	l.moveDown(1, bodySize)
}

func (l *layout) vendorDetail(r *bapp.Report) {
	l.heading("II. DETAIL REKANAN")
	l.text("Nama Rekanan (Vendor): "+r.Vendor.Name, "", bodySize, "L")
	l.text("Perusahaan: "+r.Vendor.Company, "", bodySize, "L")
	l.moveDown(1, bodySize)
}

func (l *layout) inspectionTable(items []bapp.WorkItem) {
	l.heading("III. HASIL PEMERIKSAAN PEKERJAAN")
	l.tableHeader()
	for _, it := range items {
		l.tableRow([]string{
			it.Name,
			Truncate(it.Description, DescriptionBudget),
			formatPercent(it.PlannedProgress),
			formatPercent(it.ActualProgress),
			it.Unit,
			it.Quality,
		})
	}
}

func (l *layout) tableHeader() {
	l.pdf.SetFont(l.family, "B", tableSize)
	h := l.cellsHeight(tableHeaders)
	if l.ensure(h + 4) {
		l.pdf.SetFont(l.family, "B", tableSize)
	}
	l.pdf.Rect(l.cur.left, l.cur.y-2, l.cur.width, h+4, "D")
	l.drawCells(tableHeaders)
	l.cur.down(h + 4)
	l.pdf.SetFont(l.family, "", tableSize)
}

func (l *layout) tableRow(cells []string) {
	l.pdf.SetFont(l.family, "", tableSize)
	h := l.cellsHeight(cells)
	if l.ensure(h) {
		l.tableHeader()
	}
	l.drawCells(cells)
	l.cur.down(h + lineHeight(tableSize)*0.3)
}

func (l *layout) cellsHeight(cells []string) float64 {
	lines := 1
	for i, c := range cells {
		if n := len(l.split(c, l.cur.cols[i])); n > lines {
			lines = n
		}
	}
	return float64(lines) * lineHeight(tableSize)
}

func (l *layout) drawCells(cells []string) {
	lh := lineHeight(tableSize)
	for i, c := range cells {
		x := l.cur.colX(i)
		for j, line := range l.split(c, l.cur.cols[i]) {
			l.pdf.SetXY(x, l.cur.y+float64(j)*lh)
			l.pdf.CellFormat(l.cur.cols[i], lh, line, "", 0, tableAligns[i], false, 0, "")
		}
	}
}

func (l *layout) notes(notes *string) {
	l.moveDown(1, bodySize)
	l.heading("IV. CATATAN")
	text := notesPlaceholder
	if notes != nil && strings.TrimSpace(*notes) != "" {
		text = *notes
	}
	l.text(text, "", bodySize, "L")
	l.moveDown(2, bodySize)
}

func (l *layout) approval(r *bapp.Report, sigs bapp.Signatures) error {
	l.ensure(3*lineHeight(bodySize) + sigBlockHeight)
	l.heading("V. PERSETUJUAN DOKUMEN")
	l.text("Status Akhir: "+strings.ToUpper(string(r.Status)), "", bodySize, "L")
	l.moveDown(1, bodySize)

	approverName := approverPlaceholder
	if r.Approver != nil && r.Approver.Name != "" {
		approverName = r.Approver.Name
	}
	sigY := l.cur.y
	half := l.cur.width / 2
	rightX := l.cur.left + l.cur.width*0.6

	if err := l.signatureBlock("vendor", l.cur.left, sigY, half, "Dibuat oleh Vendor,", sigs.Vendor, r.Vendor.Name); err != nil {
		return err
	}
	if err := l.signatureBlock("approver", rightX, sigY, l.cur.left+l.cur.width-rightX, "Disetujui oleh Direksi Pekerjaan,", sigs.Approver, approverName); err != nil {
		return err
	}
	l.cur.y = sigY + sigBlockHeight
	return nil
}

func (l *layout) signatureBlock(role string, x, y, w float64, caption, imagePath, name string) error {
	lh := lineHeight(bodySize)
	l.pdf.SetFont(l.family, "", bodySize)
	l.pdf.SetXY(x, y)
	l.pdf.CellFormat(w, lh, l.tr(caption), "", 0, "L", false, 0, "")

	if imagePath != "" {
		data, size, err := loadSignature(imagePath)
		if err != nil {
			return bapp.NewError(bapp.ErrRender, fmt.Sprintf("cannot decode %s signature", role), err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		imgName := "signature-" + role
		if info := l.pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(data)); info == nil {
			return bapp.NewError(bapp.ErrRender, fmt.Sprintf("cannot embed %s signature", role), l.pdf.Error())
		}
		iw, ih := fitBox(size, sigImageWidth, sigImageHeight)
		l.pdf.ImageOptions(imgName, x+20, y+sigImageOffset, iw, ih, false, opts, 0, "")
	}

	l.pdf.SetXY(x, y+sigNameOffset)
	l.pdf.CellFormat(w, lh, l.tr("("+name+")"), "", 0, "L", false, 0, "")
	return nil
}
