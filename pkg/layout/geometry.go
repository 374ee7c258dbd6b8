package layout

// NumKeys is the number of physical keys on the board.
const NumKeys = 34

// Physical positions are numbered row-major: rows 0..2 hold ten keys each
// (columns 0..9, left hand 0..4), row 3 holds the four thumb keys at
// positions 30..33 (30 and 31 on the left hand).
const (
	NumRows    = 4
	NumCols    = 10
	ThumbRow   = 3
	FirstThumb = 30
)

// Row returns the row of a position.
func Row(pos int) int { return pos / NumCols }

// Col returns the column of a position. Thumb keys use columns 0..3.
func Col(pos int) int { return pos % NumCols }

// IsThumb reports whether a position is on the thumb row.
func IsThumb(pos int) bool { return pos >= FirstThumb }

// Hand is the hand used to press a key.
type Hand uint8

const (
	Left Hand = iota
	Right
)

// Finger identifies a finger independent of hand.
type Finger uint8

const (
	Pinky Finger = iota
	Ring
	Middle
	Index
	Thumb
)

func (f Finger) String() string {
	switch f {
	case Pinky:
		return "pinky"
	case Ring:
		return "ring"
	case Middle:
		return "middle"
	case Index:
		return "index"
	default:
		return "thumb"
	}
}

// Digit is a specific finger on a specific hand, numbered left pinky (0)
// through left thumb (4), then right pinky (5) through right thumb (9).
type Digit uint8

// NumDigits is the number of distinct digits.
const NumDigits = 10

const (
	LeftPinky Digit = iota
	LeftRing
	LeftMiddle
	LeftIndex
	LeftThumb
	RightPinky
	RightRing
	RightMiddle
	RightIndex
	RightThumb
)

// NewDigit combines a hand and finger.
func NewDigit(h Hand, f Finger) Digit {
	return Digit(uint8(h)*5 + uint8(f))
}

// Hand returns the hand of the digit.
func (d Digit) Hand() Hand {
	if d >= RightPinky {
		return Right
	}
	return Left
}

// Finger returns the finger of the digit.
func (d Digit) Finger() Finger { return Finger(d % 5) }

func (d Digit) String() string {
	if d.Hand() == Left {
		return "left " + d.Finger().String()
	}
	return "right " + d.Finger().String()
}

// DigitFor returns the digit that presses the key at pos.
func DigitFor(pos int) Digit {
	col := Col(pos)
	if IsThumb(pos) {
		if col < 2 {
			return LeftThumb
		}
		return RightThumb
	}
	switch col {
	case 0:
		return LeftPinky
	case 1:
		return LeftRing
	case 2:
		return LeftMiddle
	case 3, 4:
		return LeftIndex
	case 5, 6:
		return RightIndex
	case 7:
		return RightMiddle
	case 8:
		return RightRing
	default:
		return RightPinky
	}
}
