package telemetry

// Counters tallies colony events.
type Counters struct {
	Bites      int `csv:"bites"`
	Deliveries int `csv:"deliveries"`
	Moves      int `csv:"moves"`
	Stays      int `csv:"stays"`
}

// Add returns the component-wise sum of c and o.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		Bites:      c.Bites + o.Bites,
		Deliveries: c.Deliveries + o.Deliveries,
		Moves:      c.Moves + o.Moves,
		Stays:      c.Stays + o.Stays,
	}
}

// Collector accumulates events within windows and over the whole run.
type Collector struct {
	window Counters
	total  Counters
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordBite records an ant taking a bite.
func (c *Collector) RecordBite() {
	c.window.Bites++
}

// RecordDelivery records an ant dropping food at home.
func (c *Collector) RecordDelivery() {
	c.window.Deliveries++
}

// RecordMove records an ant moving to a different cell.
func (c *Collector) RecordMove() {
	c.window.Moves++
}

// RecordStay records an ant staying on its cell.
func (c *Collector) RecordStay() {
	c.window.Stays++
}

// Window returns the counts since the previous call and starts a new window.
func (c *Collector) Window() Counters {
	w := c.window
	c.total = c.total.Add(w)
	c.window = Counters{}
	return w
}

// Total returns the counts over the whole run, including the open window.
func (c *Collector) Total() Counters {
	return c.total.Add(c.window)
}
