package pqresult

// NewFieldView builds a FieldView directly, for codecs and tests that need
// to exercise Decode-style logic without a live libpq result backing it.
func NewFieldView(data []byte, format FormatCode, null bool) FieldView {
	return FieldView{data: data, format: format, null: null}
}
