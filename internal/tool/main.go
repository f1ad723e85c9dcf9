// Package tool defines very naive scripts for development tasks. These are not
// intended to be portable but instead simply replace rote commands with tasks.
// Think of them as executable screenplays. Just like shell, it is a miracle
// these scripts work at all.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	path "path/filepath"
	"time"

	"github.com/nyxkernel/nyx/internal/platform"
)

// boards is the build matrix: every board kerneldemo and mkimage know how to target. Adding a
// board here is enough to pull it into "go run internal/tool boards" and "go run internal/tool
// images" without touching either command's logic.
var boards = []string{platform.Virt.Name, platform.RPi.Name}

var usage = `go run internal/tool <COMMAND>

Commands:

- deps    installs development dependencies: golangci-lint
- lint    check style with golangci-lint
- boards  builds bin/kerneldemo-<board> for every board in the matrix
- images  runs mkimage to package dist/kernel-<board>.img for every board in the matrix
`

func main() {
	args := os.Args

	if err := projectWorkingDirectory(); err != nil {
		log.Fatal(err)
	}

	switch {
	case len(args) == 2 && os.Args[1] == "deps":
		if err := installDeps(); err != nil {
			log.Fatal(err)
		}
	case len(args) == 2 && os.Args[1] == "lint":
		if err := golangciLint(); err != nil {
			log.Fatal(err)
		}
	case len(args) == 2 && os.Args[1] == "boards":
		if err := buildBoards(); err != nil {
			log.Fatal(err)
		}
	case len(args) == 2 && os.Args[1] == "images":
		if err := buildImages(); err != nil {
			log.Fatal(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
	}
}

// projectWorkingDirectory finds the project directory and changes the working directory to it. The
// project directory is the working directory or its ancestor with a go.mod file. If a project
// directory is not found or, to prevent inadvertent catastrophes, it is found to be a root
// directory, an error is returned.
func projectWorkingDirectory() error {
	dir, err := os.Getwd()

	if err != nil {
		log.Fatal(err)
	}

	for {
		file := path.Join(dir, "go.mod")

		if _, err := os.Stat(file); err == nil {
			break
		} else if os.IsNotExist(err) {
			if path.Dir(dir) == dir {
				return errors.New("project directory not found")
			}

			dir = path.Dir(dir)
		} else {
			return err
		}
	}

	if dir == path.Dir(dir) {
		return errors.New("project directory is root directory")
	}

	if err := os.Chdir(dir); err != nil {
		return err
	}

	return nil
}

func installDeps() error {
	var goCmd string

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if path, err := exec.LookPath("go"); err != nil {
		return fmt.Errorf("go (required): %w", err)
	} else {
		goCmd = path

		println("go (required):", goCmd)

		if err := runDep(ctx, goCmd, "version"); err != nil {
			return err
		}
	}

	if linter, err := exec.LookPath("golangci-lint"); err != nil {
		println("installing golangci-lint")

		var installBin string

		if installBinEnv, ok := os.LookupEnv("INSTALLBIN"); ok {
			installBin = installBinEnv
		} else if goBin, ok := os.LookupEnv("GOBIN"); ok {
			installBin = goBin
		} else if goPath, ok := os.LookupEnv("GOPATH"); ok {
			installBin = path.Join(goPath, "bin")
		} else {
			println("golangci-lint: install dir not found. Set INSTALLBIN in your environment")
			return fmt.Errorf("golangci-lint: unknown install path")
		}

		err = runDep(ctx, "sh", "-c",
			"curl -sSfL https://raw.githubusercontent.com/golangci/golangci-lint/master/install.sh "+
				"| sh -s -- -b '"+installBin+"' v1.55.2")
		if err != nil {
			return err
		}

		return nil
	} else {
		println("golangci-lint (optional):", linter)
		err = runDep(ctx, linter, "version")
		if err != nil {
			return err
		}
	}

	return nil
}

func runDep(ctx context.Context, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	out, err := c.CombinedOutput()

	println(string(out))

	if err != nil {
		return err
	}

	return nil
}

// buildBoards builds bin/kerneldemo-<board> for every board in the matrix with the go toolchain's
// current target settings. Every board gets the same binary: kerneldemo picks its board at run
// time with -board.
func buildBoards() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	goCmd, err := exec.LookPath("go")
	if err != nil {
		return fmt.Errorf("go (required): %w", err)
	}

	if err := os.MkdirAll("bin", 0o755); err != nil {
		return fmt.Errorf("bin: %w", err)
	}

	for _, board := range boards {
		out := path.Join("bin", "kerneldemo-"+board)

		println("building", out)

		build := exec.CommandContext(ctx, goCmd, "build", "-o", out, "./cmd/kerneldemo")
		output, err := build.CombinedOutput()

		println(string(output))

		if err != nil {
			return fmt.Errorf("build %s: %w", board, err)
		}
	}

	return nil
}

// buildImages runs mkimage against each board's binary from buildBoards, assembling
// dist/kernel-<board>.img the way an embedded project packages a bootable image per target.
func buildImages() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	goCmd, err := exec.LookPath("go")
	if err != nil {
		return fmt.Errorf("go (required): %w", err)
	}

	for _, board := range boards {
		kernelBin := path.Join("bin", "kerneldemo-"+board)

		if _, err := os.Stat(kernelBin); err != nil {
			return fmt.Errorf("%s: %w (run \"tool boards\" first)", kernelBin, err)
		}

		// mkimage expects bin/kerneldemo; stage the board's binary there before packaging it.
		if err := copyFile(kernelBin, path.Join("bin", "kerneldemo")); err != nil {
			return fmt.Errorf("stage %s: %w", board, err)
		}

		build := exec.CommandContext(ctx, goCmd, "run", "./cmd/mkimage", "build-"+board+"-image")
		output, err := build.CombinedOutput()

		println(string(output))

		if err != nil {
			return fmt.Errorf("images %s: %w", board, err)
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)

	return err
}

func golangciLint() error {
	linter := exec.Command("golangci-lint", "run")
	out, err := linter.StdoutPipe()

	if err != nil {
		return fmt.Errorf("golangci-lint: pipe: %w", err)
	}

	if err = linter.Start(); err != nil {
		return fmt.Errorf("golangci-lint: run: %w", err)
	}

	fmt.Println("golangci-lint:")

	for {
		copied, err := io.Copy(os.Stdout, out)
		if err != nil {
			return fmt.Errorf("golangci-lint: io: %w", err)
		}

		if copied == 0 {
			break
		}
	}

	if err = linter.Wait(); err != nil {
		return fmt.Errorf("golangci-lint: wait: %w", err)
	}

	return nil
}
