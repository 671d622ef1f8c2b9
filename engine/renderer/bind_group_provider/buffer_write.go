package bind_group_provider

// BufferWrite describes one queued write into the buffer bound at Binding on Provider,
// starting Offset bytes into the buffer. The renderer submits a batch of them through WriteBuffers.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
