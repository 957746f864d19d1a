package term

// maxResponseBytes bounds how many bytes CursorPosition reads while looking
// for a report. Keys typed during the query count against it.
const maxResponseBytes = 256

// maxCoordDigits rejects absurd coordinates instead of overflowing.
const maxCoordDigits = 5

type dsrState int

const (
	dsrIdle dsrState = iota
	dsrAfterEsc
	dsrAfterCSI
	dsrRow
	dsrAfterSemicolon
	dsrCol
)

// dsrParser recognises a cursor position report, ESC [ row ; col R, inside
// an arbitrary byte stream. Bytes that do not continue a report reset it.
type dsrParser struct {
	state  dsrState
	row    int
	col    int
	digits int
}

func (p *dsrParser) reset(b byte) {
	p.row, p.col, p.digits = 0, 0, 0
	if b == 0x1b {
		p.state = dsrAfterEsc
		return
	}
	p.state = dsrIdle
}

func (p *dsrParser) addDigit(v *int, b byte) bool {
	if p.digits == maxCoordDigits {
		return false
	}
	p.digits++
	*v = *v*10 + int(b-'0')
	return true
}

// feed advances the parser by one byte and reports whether a complete
// report has just been read.
func (p *dsrParser) feed(b byte) bool {
	isDigit := b >= '0' && b <= '9'

	switch p.state {
	case dsrAfterEsc:
		if b == '[' {
			p.state = dsrAfterCSI
			return false
		}
	case dsrAfterCSI:
		if isDigit && p.addDigit(&p.row, b) {
			p.state = dsrRow
			return false
		}
	case dsrRow:
		if isDigit && p.addDigit(&p.row, b) {
			return false
		}
		if b == ';' {
			p.digits = 0
			p.state = dsrAfterSemicolon
			return false
		}
	case dsrAfterSemicolon:
		if isDigit && p.addDigit(&p.col, b) {
			p.state = dsrCol
			return false
		}
	case dsrCol:
		if isDigit && p.addDigit(&p.col, b) {
			return false
		}
		if b == 'R' {
			p.state = dsrIdle
			return true
		}
	}
	p.reset(b)
	return false
}

func (p *dsrParser) position() Position {
	return Position{Row: p.row, Col: p.col}
}
