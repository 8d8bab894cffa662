package market

// Window is a fixed-capacity FIFO of observed prices. Pushing beyond
// capacity evicts the oldest entry. The trailing average is only defined
// once the window holds exactly its capacity.
type Window struct {
	values []float64
	size   int
	index  int
	filled bool
}

func NewWindow(size int) *Window {
	return &Window{
		values: make([]float64, size),
		size:   size,
	}
}

// Push appends price, evicting the oldest entry when the window is at
// capacity, and returns the resulting view. View.Average is populated
// only when View.Full is true.
func (w *Window) Push(price float64) View {
	w.values[w.index] = price
	w.index = (w.index + 1) % w.size
	if w.index == 0 {
		w.filled = true
	}
	view := View{Length: w.Len(), Full: w.filled}
	if view.Full {
		sum := 0.0
		for _, v := range w.values {
			sum += v
		}
		view.Average = sum / float64(w.size)
	}
	return view
}

type View struct {
	Length  int
	Average float64
	Full    bool
}

func (w *Window) Len() int {
	if w.filled {
		return w.size
	}
	return w.index
}

// Values returns the window contents oldest first.
func (w *Window) Values() []float64 {
	length := w.Len()
	result := make([]float64, 0, length)
	if length == 0 {
		return result
	}
	if w.filled {
		result = append(result, w.values[w.index:]...)
	}
	result = append(result, w.values[:w.index]...)
	return result
}
