package pdfreport

// cursor is the explicit layout position. Everything is in points with the
// origin at the top-left corner of the page. Lines always start at left, so
// only the vertical position moves.
type cursor struct {
	y      float64
	left   float64
	top    float64
	width  float64 // page width minus both margins
	bottom float64 // lowest y content may reach
	cols   []float64
}

func newCursor(pageW, pageH, margin float64, ratios []float64) *cursor {
	c := &cursor{
		y:      margin,
		left:   margin,
		top:    margin,
		width:  pageW - 2*margin,
		bottom: pageH - margin,
	}
	c.cols = make([]float64, len(ratios))
	for i, r := range ratios {
		c.cols[i] = c.width * r
	}
	return c
}

func (c *cursor) down(h float64) { c.y += h }

// fits reports whether h more points fit on the current page.
func (c *cursor) fits(h float64) bool { return c.y+h <= c.bottom }

func (c *cursor) newPage() {
	c.y = c.top
}

// colX is the left edge of column i.
func (c *cursor) colX(i int) float64 {
	x := c.left
	for j := 0; j < i; j++ {
		x += c.cols[j]
	}
	return x
}
