package domain

type Candle struct {
	OpenTime int64   `json:"open_time"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

// Window is a fixed-size sliding window of candles ordered by OpenTime.
// Appending beyond capacity drops the oldest entry. Candles are immutable
// once appended.
type Window struct {
	capacity int
	candles  []Candle
}

func NewWindow(capacity int) *Window {
	return &Window{
		capacity: capacity,
		candles:  make([]Candle, 0, capacity),
	}
}

func (w *Window) Append(c Candle) {
	if len(w.candles) == w.capacity {
		copy(w.candles, w.candles[1:])
		w.candles[len(w.candles)-1] = c
		return
	}
	w.candles = append(w.candles, c)
}

// Replace swaps the last candle in the window. Used when the feed re-sends
// the still-open candle with updated close/volume.
func (w *Window) Replace(c Candle) {
	if len(w.candles) == 0 {
		w.candles = append(w.candles, c)
		return
	}
	w.candles[len(w.candles)-1] = c
}

func (w *Window) Len() int      { return len(w.candles) }
func (w *Window) Capacity() int { return w.capacity }

func (w *Window) Last() Candle {
	return w.candles[len(w.candles)-1]
}

// Candles returns a copy so callers cannot mutate the window.
func (w *Window) Candles() []Candle {
	out := make([]Candle, len(w.candles))
	copy(out, w.candles)
	return out
}

func (w *Window) Highs() []float64 {
	out := make([]float64, len(w.candles))
	for i, c := range w.candles {
		out[i] = c.High
	}
	return out
}

func (w *Window) Lows() []float64 {
	out := make([]float64, len(w.candles))
	for i, c := range w.candles {
		out[i] = c.Low
	}
	return out
}

func (w *Window) Closes() []float64 {
	out := make([]float64, len(w.candles))
	for i, c := range w.candles {
		out[i] = c.Close
	}
	return out
}

func (w *Window) Volumes() []float64 {
	out := make([]float64, len(w.candles))
	for i, c := range w.candles {
		out[i] = c.Volume
	}
	return out
}
