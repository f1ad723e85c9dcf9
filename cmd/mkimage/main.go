// mkimage is the host-side build utility for the kernel core, playing the same role as a
// cross-compilation packaging step in a real embedded build: it locates the freshly built kernel
// binary for a target board and assembles it into a bootable image layout under dist/.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build-virt-image":
		os.Exit(buildImage("virt", "dist/kernel-virt.img"))
	case "build-rpi-image":
		os.Exit(buildImage("rpi", "dist/kernel-rpi.img"))
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: mkimage <command>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  build-virt-image   Package the kerneldemo binary for the virt board")
	fmt.Fprintln(os.Stderr, "  build-rpi-image    Package the kerneldemo binary for the Raspberry Pi board")
}

// buildImage copies the already-built kerneldemo binary (the analogue of a cross-compiled kernel
// ELF) into dist/ under the name an emulator or SD-card flasher expects for the named board. It
// does not itself invoke the Go toolchain: callers are expected to have already run
// `go build -o bin/kerneldemo ./cmd/kerneldemo`.
func buildImage(board, imagePath string) int {
	kernelPath := "bin/kerneldemo"

	src, err := os.Open(kernelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: kernel binary not found at %s\n", kernelPath)
		fmt.Fprintln(os.Stderr, "Run: go build -o bin/kerneldemo ./cmd/kerneldemo")

		return 1
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(imagePath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating dist/: %s\n", err)
		return 1
	}

	dst, err := os.Create(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating %s: %s\n", imagePath, err)
		return 1
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		fmt.Fprintf(os.Stderr, "Error: writing %s: %s\n", imagePath, err)
		return 1
	}

	fmt.Printf("[mkimage] wrote %s (board=%s)\n", imagePath, board)

	return 0
}
