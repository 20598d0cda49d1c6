package cpu

import (
	"fmt"
	"sync"

	"github.com/micronet-ml/micronet/internal/tensor"
)

// Conv2D performs grouped 2D convolution using the im2col algorithm.
//
// Input shape:  [N, C_in, H, W]
// Kernel shape: [C_out, C_in/groups, K_h, K_w]
// Output shape: [N, C_out, H_out, W_out]
//
// Where:
//
//	out_h = (H + 2*padding - K_h) / stride + 1
//	out_w = (W + 2*padding - K_w) / stride + 1
//
// groups=1 is a dense convolution. groups=C_in with C_out=C_in is a
// depthwise convolution (each output channel sees one input channel).
//
// Each (sample, group) pair is independent; the pairs are distributed over
// the backend's worker pool. Within a pair the group's input channels are
// unrolled into columns (im2col) and reduced against the group's kernel
// slice as a matrix product.
func (c *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding, groups int) *tensor.RawTensor {
	inShape, kShape := input.Shape(), kernel.Shape()

	if len(inShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inShape)))
	}
	if len(kShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in/g,K_h,K_w], got %dD", len(kShape)))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}
	if input.DType() != tensor.Float32 || kernel.DType() != tensor.Float32 {
		panic(fmt.Sprintf("conv2d: unsupported dtype %s (convolution is float32 only)", input.DType()))
	}

	n, cIn, h, w := inShape[0], inShape[1], inShape[2], inShape[3]
	cOut, cInPerGroup, kh, kw := kShape[0], kShape[1], kShape[2], kShape[3]

	if groups <= 0 || cIn%groups != 0 || cOut%groups != 0 {
		panic(fmt.Sprintf("conv2d: groups=%d must divide in_channels=%d and out_channels=%d", groups, cIn, cOut))
	}
	if cIn/groups != cInPerGroup {
		panic(fmt.Sprintf("conv2d: kernel expects %d channels per group, input has %d", cInPerGroup, cIn/groups))
	}

	hOut := (h+2*padding-kh)/stride + 1
	wOut := (w+2*padding-kw)/stride + 1
	if hOut <= 0 || wOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions out_h=%d, out_w=%d (check input size vs kernel/stride/padding)", hOut, wOut))
	}

	output, err := tensor.NewRaw(tensor.Shape{n, cOut, hOut, wOut}, tensor.Float32, c.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d: %v", err))
	}

	inData := input.AsFloat32()
	kData := kernel.AsFloat32()
	outData := output.AsFloat32()
	cOutPerGroup := cOut / groups

	type task struct{ sample, group int }
	tasks := make(chan task)
	var wg sync.WaitGroup

	workers := c.workers
	if workers > n*groups {
		workers = n * groups
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			colBuf := make([]float32, hOut*wOut*cInPerGroup*kh*kw)
			for t := range tasks {
				convGroupFloat32(outData, inData, kData, colBuf, t.sample, t.group,
					cIn, h, w, cOut, cInPerGroup, cOutPerGroup, kh, kw, hOut, wOut, stride, padding)
			}
		}()
	}

	for s := 0; s < n; s++ {
		for g := 0; g < groups; g++ {
			tasks <- task{s, g}
		}
	}
	close(tasks)
	wg.Wait()

	return output
}

// convGroupFloat32 convolves one (sample, group) pair.
//
// colBuf is a scratch im2col buffer of size [hOut*wOut, cInPerGroup*kh*kw],
// reused across tasks by the owning worker.
func convGroupFloat32(outData, inData, kData, colBuf []float32,
	sample, group, cIn, h, w, cOut, cInPerGroup, cOutPerGroup, kh, kw, hOut, wOut, stride, padding int,
) {
	colWidth := cInPerGroup * kh * kw
	inBase := sample * cIn * h * w
	cStart := group * cInPerGroup

	// im2col: one row per output position, one column per kernel weight.
	row := 0
	for oh := 0; oh < hOut; oh++ {
		for ow := 0; ow < wOut; ow++ {
			hStart := oh*stride - padding
			wStart := ow*stride - padding
			buf := colBuf[row*colWidth:]
			idx := 0
			for ci := 0; ci < cInPerGroup; ci++ {
				chBase := inBase + (cStart+ci)*h*w
				for dh := 0; dh < kh; dh++ {
					ih := hStart + dh
					for dw := 0; dw < kw; dw++ {
						iw := wStart + dw
						if ih >= 0 && ih < h && iw >= 0 && iw < w {
							buf[idx] = inData[chBase+ih*w+iw]
						} else {
							buf[idx] = 0 // zero padding
						}
						idx++
					}
				}
			}
			row++
		}
	}

	// Kernel slice for this group is contiguous: rows [group*cOutPerGroup,
	// (group+1)*cOutPerGroup) of the [cOut, colWidth] kernel matrix.
	spatial := hOut * wOut
	for oc := 0; oc < cOutPerGroup; oc++ {
		kRow := kData[(group*cOutPerGroup+oc)*colWidth:][:colWidth]
		outBase := sample*cOut*spatial + (group*cOutPerGroup+oc)*spatial
		for pos := 0; pos < spatial; pos++ {
			colRow := colBuf[pos*colWidth:][:colWidth]
			sum := float32(0)
			for k := range kRow {
				sum += kRow[k] * colRow[k]
			}
			outData[outBase+pos] = sum
		}
	}
}
