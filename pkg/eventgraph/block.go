package eventgraph

// Block is a unit of work with start and done callbacks, used to hand a
// piece of presentation (a dialog, a cutscene, a whole graph) to whoever
// drives it and to hear back when it ends.
//
// Callbacks are plugged by the consumer before Invoke and unplugged when
// it is done listening. The producer calls OnStart and OnDone.
type Block struct {
	invoke  func()
	onStart func()
	onDone  func()
}

// NewBlock creates a block that runs invoke when Invoke is called.
func NewBlock(invoke func()) *Block {
	return &Block{invoke: invoke}
}

// PlugCallbacks sets the start and done callbacks. Either may be nil.
func (b *Block) PlugCallbacks(onStart, onDone func()) {
	b.onStart = onStart
	b.onDone = onDone
}

// UnplugCallbacks clears both callbacks.
// Unplug from inside the done callback to prevent repeated calls.
func (b *Block) UnplugCallbacks() {
	b.onStart = nil
	b.onDone = nil
}

// Invoke runs the block.
func (b *Block) Invoke() {
	if b.invoke != nil {
		b.invoke()
	}
}

// OnStart fires the start callback.
func (b *Block) OnStart() {
	if b.onStart != nil {
		b.onStart()
	}
}

// OnDone fires the done callback.
func (b *Block) OnDone() {
	if b.onDone != nil {
		b.onDone()
	}
}
