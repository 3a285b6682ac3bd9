package input

// Layer is one page of the on-screen keyboard.
type Layer int

// Keyboard layers.
const (
	LayerAlpha Layer = iota
	LayerNumeric
)

var layers = [...][][]rune{
	LayerAlpha: {
		[]rune("QWERTYUIOP"),
		[]rune("ASDFGHJKL"),
		[]rune("ZXCVBNM"),
	},
	LayerNumeric: {
		[]rune("1234567890"),
		[]rune("+-.,/:=?("),
		[]rune(`)"'@!&`),
	},
}

// Keyboard is the on-screen keyboard: the current layer and a selected key.
// The selection row past the last character row is the layer toggle.
type Keyboard struct {
	layer Layer
	row   int
	col   int
}

// Layer returns the layer being shown.
func (k *Keyboard) Layer() Layer {
	return k.layer
}

// Rows returns the character rows of the current layer.
func (k *Keyboard) Rows() [][]rune {
	return layers[k.layer]
}

// ToggleLabel is the caption of the toggle key.
func (k *Keyboard) ToggleLabel() string {
	if k.layer == LayerAlpha {
		return "123"
	}
	return "ABC"
}

// Selected returns the selected row and column. A row equal to len(Rows())
// means the toggle key.
func (k *Keyboard) Selected() (row, col int) {
	return k.row, k.col
}

// OnToggle reports whether the toggle key is selected.
func (k *Keyboard) OnToggle() bool {
	return k.row == len(k.Rows())
}

// Toggle flips between the alphabetic and numeric layers.
func (k *Keyboard) Toggle() {
	if k.layer == LayerAlpha {
		k.layer = LayerNumeric
	} else {
		k.layer = LayerAlpha
	}
	k.clamp()
}

// Move shifts the selection, wrapping at the edges.
func (k *Keyboard) Move(dRow, dCol int) {
	rows := len(k.Rows()) + 1
	k.row = ((k.row+dRow)%rows + rows) % rows
	if k.OnToggle() {
		k.col = 0
		return
	}
	width := len(k.Rows()[k.row])
	if k.col >= width {
		k.col = width - 1
	}
	k.col = ((k.col+dCol)%width + width) % width
}

// Activate presses the selected key. It returns the character, or ok=false
// when the toggle key was pressed and the layer changed.
func (k *Keyboard) Activate() (r rune, ok bool) {
	if k.OnToggle() {
		k.Toggle()
		return 0, false
	}
	return k.Rows()[k.row][k.col], true
}

func (k *Keyboard) clamp() {
	rows := k.Rows()
	if k.row > len(rows) {
		k.row = len(rows)
	}
	if k.row < len(rows) && k.col >= len(rows[k.row]) {
		k.col = len(rows[k.row]) - 1
	}
}
