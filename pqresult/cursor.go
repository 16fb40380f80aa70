package pqresult

// Cursor is a forward-only row cursor over a Result, matching spec.md §3's
// "lazily constructed Header... forward cursor" phrasing. It never rewinds;
// callers needing random access use Result.Get directly.
type Cursor struct {
	r   *Result
	row int
}

// NewCursor returns a Cursor positioned before the first row.
func (r *Result) NewCursor() *Cursor {
	return &Cursor{r: r, row: -1}
}

// Next advances the cursor, returning false once exhausted.
func (c *Cursor) Next() bool {
	c.row++
	return c.row < c.r.RowCount()
}

// Field borrows the value at the cursor's current row and the given column.
func (c *Cursor) Field(col int) FieldView {
	return c.r.Get(c.row, col)
}

// FieldByName resolves name via the Result's Header before borrowing.
func (c *Cursor) FieldByName(name string) (FieldView, error) {
	col, err := c.r.ColumnIndex(name)
	if err != nil {
		return FieldView{}, err
	}
	return c.r.Get(c.row, col), nil
}
