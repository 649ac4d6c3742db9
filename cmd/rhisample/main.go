// Command rhisample renders a textured, tinted triangle offscreen through
// the RHI and optionally saves the last frame as a PNG.
package main

import (
	"flag"
	"image"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rhi"
	_ "github.com/gogpu/rhi/dx12"
	_ "github.com/gogpu/rhi/vulkan"
)

// imageSize is the edge length of the sampled texture built from -image.
const imageSize = 256

func main() {
	var (
		width    = flag.Int("w", 1024, "target width")
		height   = flag.Int("h", 768, "target height")
		backend  = flag.String("rhi", "", "backend variant (Vulkan, DirectX12); empty picks the default")
		frames   = flag.Int("frames", 60, "number of frames to render")
		input    = flag.String("image", "", "PNG sampled by the triangle")
		output   = flag.String("o", "", "write the last frame to this PNG")
		headless = flag.Bool("headless", false, "run on the noop execution backend")
		verbose  = flag.Bool("v", false, "verbose RHI logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	rhi.SetLogger(logger)

	typ, err := selectType(*backend)
	if err != nil {
		log.Fatalf("Failed to select backend: %v", err)
	}

	var img *image.RGBA
	if *input != "" {
		if img, err = loadImage(*input, imageSize); err != nil {
			log.Fatalf("Failed to load image: %v", err)
		}
	}

	var exec hal.Backend
	if *headless {
		exec = noop.API{}
	}

	r, err := newRenderer(config{
		typ:    typ,
		hal:    exec,
		width:  uint32(*width),
		height: uint32(*height),
		image:  img,
		logger: logger,
	})
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.destroy()

	start := time.Now()
	for i := 0; i < *frames; i++ {
		if err := r.render(i, *frames); err != nil {
			r.destroy()
			log.Fatalf("Failed to render frame %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)
	if *frames > 0 {
		log.Printf("%s: %d frames in %v (%v/frame)\n", typ, *frames, elapsed, elapsed/time.Duration(*frames))
	}

	if *output != "" {
		pixels, err := r.readPixels()
		if err != nil {
			r.destroy()
			log.Fatalf("Failed to read pixels: %v", err)
		}
		if err := savePNG(pixels, *output); err != nil {
			r.destroy()
			log.Fatalf("Failed to save: %v", err)
		}
		log.Printf("Frame saved to %s (%dx%d)\n", *output, *width, *height)
	}
}

// selectType parses name, or picks the preferred registered variant when
// name is empty.
func selectType(name string) (rhi.RHIType, error) {
	if name == "" {
		return rhi.DefaultRHIType()
	}
	return rhi.ParseRHIType(name)
}
