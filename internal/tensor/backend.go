package tensor

// Backend defines the interface that compute backends must implement.
//
// The operation set is exactly what a feed-forward convolutional classifier
// performs: broadcasting elementwise arithmetic, matrix multiplication,
// (grouped) 2D convolution, global average pooling, batch normalization and
// the clamp/sigmoid primitives the activations are built from.
//
// All operations panic on shape contract violations; there is no recovery
// path for a malformed computation graph.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul performs 2D matrix multiplication: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// Conv2D performs grouped 2D convolution.
	// input [N, C_in, H, W], kernel [C_out, C_in/groups, K_h, K_w].
	// groups=1 is a dense convolution; groups=C_in with C_out=C_in is
	// a depthwise convolution.
	Conv2D(input, kernel *RawTensor, stride, padding, groups int) *RawTensor

	// GlobalAvgPool2D reduces [N, C, H, W] to [N, C, 1, 1] by averaging
	// over the spatial dimensions.
	GlobalAvgPool2D(input *RawTensor) *RawTensor

	// BatchNorm2D normalizes [N, C, H, W] per channel.
	// In training mode batch statistics are used and the running buffers are
	// updated in place: running = (1-momentum)*running + momentum*batch.
	// In eval mode the running buffers are used unchanged.
	BatchNorm2D(x, gamma, beta, runningMean, runningVar *RawTensor, momentum, eps float32, training bool) *RawTensor

	// Element-wise nonlinearities.
	ReLU(x *RawTensor) *RawTensor
	Clamp(x *RawTensor, lo, hi float64) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar).
	MulScalar(x *RawTensor, scalar any) *RawTensor
	AddScalar(x *RawTensor, scalar any) *RawTensor
	SubScalar(x *RawTensor, scalar any) *RawTensor
	DivScalar(x *RawTensor, scalar any) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
