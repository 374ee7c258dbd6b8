package layout

// Numbers are the digit characters in the order used by NumLayouts.
var Numbers = [10]Char{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9'}

// NumLayouts enumerates the permitted placements of the ten digits.
// Row i gives the position of digit 0..9 on the digit layer. The optimiser
// moves digits only by switching between these rows.
var NumLayouts = [...][10]int{
	// numpad
	{10, 11, 12, 13, 21, 22, 23, 1, 2, 3},
	{14, 11, 12, 13, 21, 22, 23, 1, 2, 3},
	{19, 16, 17, 18, 26, 27, 28, 6, 7, 8},
	{15, 16, 17, 18, 26, 27, 28, 6, 7, 8},
	// inverted numpad
	{20, 21, 22, 23, 11, 12, 13, 1, 2, 3},
	{10, 21, 22, 23, 11, 12, 13, 1, 2, 3},
	{14, 21, 22, 23, 11, 12, 13, 1, 2, 3},
	{29, 26, 27, 28, 16, 17, 18, 6, 7, 8},
	{19, 26, 27, 28, 16, 17, 18, 6, 7, 8},
	{15, 26, 27, 28, 16, 17, 18, 6, 7, 8},
	// single row
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{9, 0, 1, 2, 3, 4, 5, 6, 7, 8},
	{10, 11, 12, 13, 14, 15, 16, 17, 18, 19},
	{19, 10, 11, 12, 13, 14, 15, 16, 17, 18},
	{20, 21, 22, 23, 24, 25, 26, 27, 28, 29},
	{29, 20, 21, 22, 23, 24, 25, 26, 27, 28},
	// split across hands
	{10, 11, 12, 13, 23, 26, 16, 17, 18, 19},
	{10, 11, 12, 13, 3, 6, 16, 17, 18, 19},
	// two rows, one hand
	{0, 1, 2, 3, 4, 10, 11, 12, 13, 14},
	{10, 11, 12, 13, 14, 20, 21, 22, 23, 24},
	{5, 6, 7, 8, 9, 15, 16, 17, 18, 19},
	{15, 16, 17, 18, 19, 25, 26, 27, 28, 29},
}

// NumNumLayouts is the number of digit placements.
const NumNumLayouts = len(NumLayouts)

// IsNumber reports whether c is a decimal digit.
func IsNumber(c Char) bool { return c >= '0' && c <= '9' }
