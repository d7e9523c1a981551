package lob

// FillEvent records that a resting order's remaining size was reduced
// by Qty at Price during a sweep.
type FillEvent struct {
	OrderID OrderID
	Price   int64
	Qty     int64
}

// PriceLevel is a FIFO queue of resting orders sharing one price.
// Volume always equals the sum of the queued orders' remaining sizes.
type PriceLevel struct {
	Price  int64
	Volume int64

	orders []*RestingOrder
}

func newPriceLevel(price int64) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		orders: make([]*RestingOrder, 0, 16),
	}
}

// Make appends the order to the back of the queue, preserving arrival
// order.
func (pl *PriceLevel) Make(o *RestingOrder) {
	pl.Volume += o.Remaining
	pl.orders = append(pl.orders, o)
}

// Take consumes up to qty from the level, oldest order first, and
// returns the fill events in time-priority order together with the
// portion of qty the level could not satisfy. Fully consumed orders
// are drained from the front of the queue once the scan completes; a
// partially filled order stays at the front for future consumption.
func (pl *PriceLevel) Take(qty int64) ([]FillEvent, int64) {
	var (
		fills   []FillEvent
		drainTo int
	)
	remaining := qty

	for _, o := range pl.orders {
		filled, left, unmet := o.take(remaining)
		if filled == 0 {
			// Zero-size order at the front: the level has nothing
			// more to give on this scan.
			break
		}

		remaining = unmet
		pl.Volume -= filled
		fills = append(fills, FillEvent{OrderID: o.ID, Price: pl.Price, Qty: filled})

		if left == 0 {
			drainTo++
		}
		if remaining == 0 {
			break
		}
	}

	pl.orders = pl.orders[drainTo:]
	return fills, remaining
}

// Len returns the number of orders queued at this level.
func (pl *PriceLevel) Len() int {
	return len(pl.orders)
}
